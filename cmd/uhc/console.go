package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cfoust/uhc/pkg/commands"
	"github.com/cfoust/uhc/pkg/headless"
	"github.com/cfoust/uhc/pkg/match"

	"github.com/rs/zerolog/log"
)

// Console reads administrative commands one line at a time. Match commands
// go to the session; the rest drive the in-memory players.
type Console struct {
	session *match.Session
	players *commands.CommandGroup[match.Admin]
	admin   match.Admin
}

func NewConsole(session *match.Session, players *headless.Players, scenarios *headless.Scenarios) *Console {
	console := &Console{
		session: session,
		admin: match.Admin{
			Name: "console",
			Reply: func(message string) {
				fmt.Println(message)
			},
		},
	}

	console.players = commands.NewCommandGroup[match.Admin]("players", func(admin match.Admin, message string) {
		admin.Reply(message)
	})

	for _, command := range []commands.Command{
		{
			Name:        "join",
			ArgFormat:   "[name] [team]",
			Description: "adds a player to a team",
			Callback: func(name, team string) {
				players.Join(name, team)
			},
		},
		{
			Name:        "leave",
			ArgFormat:   "[name]",
			Description: "removes a player",
			Callback: func(name string) {
				players.Leave(name)
			},
		},
		{
			Name:        "ready",
			ArgFormat:   "[name] [yes|no]",
			Description: "marks a player as ready to start",
			Callback: func(name string, ready *bool) error {
				return players.SetReady(name, ready == nil || *ready)
			},
		},
		{
			Name:        "kill",
			ArgFormat:   "[killer] [killed]",
			Description: "records a kill",
			Callback: func(killer, killed string) error {
				if err := players.Kill(killed); err != nil {
					return err
				}
				session.PlayerKilled(killer, killed)
				return nil
			},
		},
		{
			Name:        "revive",
			ArgFormat:   "[name]",
			Description: "brings a player back to life",
			Callback: func(name string) error {
				return players.Revive(name)
			},
		},
		{
			Name:        "vote",
			ArgFormat:   "[player] [scenario]",
			Description: "votes for a scenario",
			Callback: func(player, scenario string) error {
				return scenarios.Vote(player, scenario)
			},
		},
		{
			Name:        "teams",
			Description: "lists the teams still alive",
			Callback: func(admin match.Admin) {
				console.players.Reply(admin, strings.Join(players.Teams(), ", "))
			},
		},
	} {
		if err := console.players.Register(command); err != nil {
			log.Fatal().Err(err).Msgf("failed to register %s command", command.Name)
		}
	}

	return console
}

func (c *Console) Handle(line string) error {
	args := strings.Fields(line)
	if len(args) == 0 {
		return nil
	}

	if args[0] == "help" {
		c.admin.Reply(c.session.Commands.Help())
		c.admin.Reply(c.players.Help())
		return nil
	}

	if c.session.Commands.CanHandle(args) {
		return c.session.Commands.Handle(c.admin, args)
	}

	return c.players.Handle(c.admin, args)
}

func (c *Console) Run(ctx context.Context, in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		if err := c.Handle(scanner.Text()); err != nil {
			log.Warn().Err(err).Msg("command failed")
		}
	}

	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msg("could not read commands")
	}
}
