package match

import (
	"fmt"

	"github.com/cfoust/uhc/pkg/commands"
)

func (s *Session) registerCommands() error {
	for _, command := range []commands.Command{
		{
			Name:        "start",
			Description: "starts the match",
			Callback: func() error {
				return s.StartGame()
			},
		},
		{
			Name:        "deathmatch",
			Aliases:     []string{"dm"},
			Description: "starts the deathmatch right away",
			Callback: func() error {
				return s.StartDeathmatch()
			},
		},
		{
			Name:        "end",
			Description: "ends the match",
			Callback: func() error {
				if !s.EndGame() {
					return fmt.Errorf("the match is not being played")
				}
				return nil
			},
		},
		{
			Name:        "status",
			Description: "describes the match",
			Callback: func(admin Admin) {
				s.Commands.Reply(admin, s.Summary())
			},
		},
		{
			Name:        "scenario",
			ArgFormat:   "[name]",
			Description: "reports whether a scenario is active",
			Callback: func(admin Admin, name string) {
				state := "inactive"
				if s.scenarios.IsActivated(name) {
					state = "active"
				}
				s.Commands.Reply(admin, fmt.Sprintf("%s is %s", name, state))
			},
		},
		{
			Name:        "pvp",
			ArgFormat:   "[on|off]",
			Description: "shows or changes whether players can hurt each other",
			Callback: func(admin Admin, enabled *bool) error {
				if enabled == nil {
					s.Commands.Reply(admin, fmt.Sprintf("pvp=%t", s.PvP()))
					return nil
				}
				return s.SetPvP(*enabled)
			},
		},
	} {
		if err := s.Commands.Register(command); err != nil {
			return fmt.Errorf("could not register %s command: %w", command.Name, err)
		}
	}
	return nil
}
