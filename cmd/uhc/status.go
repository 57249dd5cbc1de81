package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cfoust/uhc/pkg/config"
	"github.com/cfoust/uhc/pkg/status"

	"github.com/go-redis/redis/v9"
	"gopkg.in/yaml.v3"
)

const statusTimeout = 5 * time.Second

type statusReader interface {
	Status(ctx context.Context) (string, error)
}

// configCommand writes the merged configuration as YAML.
func configCommand(configs []string, out io.Writer) error {
	cfg, err := config.Process(configs)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(cfg)
}

func statusCommand(configs []string, out io.Writer) error {
	cfg, err := config.Process(configs)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.Server.Redis.Address == "" {
		return fmt.Errorf("no redis address configured for %s", cfg.Server.Name)
	}

	client := status.NewRedis(cfg.Server.Name, cfg.Server.Redis)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), statusTimeout)
	defer cancel()

	return printStatus(ctx, cfg.Server.Name, client, out)
}

func printStatus(ctx context.Context, server string, reader statusReader, out io.Writer) error {
	text, err := reader.Status(ctx)
	if errors.Is(err, redis.Nil) {
		fmt.Fprintf(out, "%s: no status published\n", server)
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not read status of %s: %w", server, err)
	}

	fmt.Fprintf(out, "%s: %s\n", server, text)
	return nil
}
