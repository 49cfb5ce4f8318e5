package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the matbench configuration file
// (~/.config/matbench/config.yaml). Pointer fields distinguish "not set"
// from zero values.
type Config struct {
	BlockSize *int     `yaml:"block_size"`
	Workers   *int     `yaml:"workers"`
	Kernels   []string `yaml:"kernels"`
	Allocator string   `yaml:"allocator"`
	Format    string   `yaml:"format"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`
	MaxSize       *int   `yaml:"max_size"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "matbench", "config.yaml")
}

// LoadConfig reads the config file at path, or the default location when
// path is empty. A missing default file yields a zero Config; a missing
// explicit file is an error.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = configPath()
		if path == "" {
			return Config{}, nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// applyConfig copies config file values into s for every flag that was not
// set explicitly on the command line.
func applyConfig(c *cli.Command, cfg Config, s *settings) {
	if cfg.BlockSize != nil && !c.IsSet("block-size") {
		s.blockSize = *cfg.BlockSize
	}
	if cfg.Workers != nil && !c.IsSet("workers") {
		s.workers = *cfg.Workers
	}
	if len(cfg.Kernels) > 0 && !c.IsSet("kernels") {
		s.kernels = cfg.Kernels
	}
	if cfg.Allocator != "" && !c.IsSet("allocator") {
		s.allocator = cfg.Allocator
	}
	if cfg.Format != "" && !c.IsSet("format") {
		s.format = cfg.Format
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		s.logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		s.logFormat = cfg.LogFormat
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string, maxSize *int) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.MaxSize != nil && !c.IsSet("max-size") {
		*maxSize = *cfg.MaxSize
	}
}
