package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/pdrpinto/symsearch"
)

// Config is the CLI configuration file. Flags override it.
type Config struct {
	Backend string    `yaml:"backend" validate:"oneof=explicit bdd"`
	Log     LogConfig `yaml:"log"`
	Merge   struct {
		MaxSets  int `yaml:"max_sets" validate:"gte=0"`
		MaxNodes int `yaml:"max_nodes" validate:"gte=0"`
	} `yaml:"merge"`
	BDD struct {
		NodeSize  int `yaml:"node_size" validate:"gte=0"`
		CacheSize int `yaml:"cache_size" validate:"gte=0"`
	} `yaml:"bdd"`
}

// LogConfig selects the log level and format.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

func defaultConfig() Config {
	var c Config
	c.Backend = "bdd"
	c.Log = LogConfig{Level: "warn", Format: "text"}
	c.Merge.MaxSets = symsearch.DefaultMergeMaxSets
	c.Merge.MaxNodes = symsearch.DefaultMergeMaxNodes
	c.BDD.NodeSize = 10000
	c.BDD.CacheSize = 3000
	return c
}

// loadConfig reads path over the defaults. An empty path yields the defaults.
func loadConfig(path string) (Config, error) {
	c := defaultConfig()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

func (c Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c Config) logger() (*symsearch.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return nil, err
	}
	if c.Log.Format == "json" {
		return symsearch.NewJSONLogger(os.Stderr, level), nil
	}
	return symsearch.NewTextLogger(os.Stderr, level), nil
}
