package main

import (
	"fmt"
	"os"
	"time"

	"github.com/cfoust/uhc/pkg/version"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var CLI struct {
	Version bool `help:"Print version information and exit." short:"v"`
	Debug   bool `help:"Whether to enable debug logging."`

	Serve struct {
		Configs []string `arg:"" optional:"" name:"configs" help:"Configuration files for the match." type:"existingfile"`
	} `cmd:"" default:"withargs" help:"Run a match, reading admin commands from standard input."`

	Config struct {
		Configs []string `arg:"" optional:"" name:"configs" help:"Configuration files to merge over the defaults." type:"existingfile"`
	} `cmd:"" help:"Print the configuration a match would run with."`

	Status struct {
		Configs []string `arg:"" optional:"" name:"configs" help:"Configuration files naming the server and its Redis instance." type:"existingfile"`
	} `cmd:"" help:"Print the presentation status a running match last published to Redis."`
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx := kong.Parse(&CLI,
		kong.Name("uhc"),
		kong.Description("Runs a last survivor match from the lobby to the final kill."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	if CLI.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Debug().Msg("debug logging enabled")
	}

	if CLI.Version {
		fmt.Printf("uhc %s (commit %s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
		return
	}

	var err error
	switch ctx.Command() {
	case "serve", "serve <configs>":
		err = serveCommand(CLI.Serve.Configs)
	case "config", "config <configs>":
		err = configCommand(CLI.Config.Configs, os.Stdout)
	case "status", "status <configs>":
		err = statusCommand(CLI.Status.Configs, os.Stdout)
	}
	ctx.FatalIfErrorf(err)
}
