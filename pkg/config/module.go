package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DEFAULT []byte

func readFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	extension := filepath.Ext(path)
	switch extension {
	case ".json":
		return json.Unmarshal(data, config)
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, config)
	}

	return fmt.Errorf(
		"not in a valid format",
	)
}

// Process reads the default configuration and then overlays the provided
// configuration files in order, followed by any UHC_* environment
// variables. Values missing from a file keep whatever was set before it.
func Process(configPaths []string) (*Config, error) {
	config := Config{}

	err := yaml.Unmarshal(DEFAULT, &config)
	if err != nil {
		return nil, fmt.Errorf(
			"invalid default config file: %v",
			err,
		)
	}

	for _, path := range configPaths {
		err := readFile(path, &config)
		if err != nil {
			return nil, fmt.Errorf(
				"could not process config file %s: %w",
				path,
				err,
			)
		}
	}

	err = env.Parse(&config)
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Loader returns a function that processes configPaths each time it is
// called, so a match can reload its configuration from disk.
func Loader(configPaths []string) func() (*Config, error) {
	return func() (*Config, error) {
		return Process(configPaths)
	}
}
