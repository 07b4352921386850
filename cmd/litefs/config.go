/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 */

package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/fingon/go-litefs/storage"
)

// Config is the on-disk (YAML) configuration for the litefs backend.
// Command line flags registered in main.go override whatever a config
// file sets.
type Config struct {
	Backend          string `yaml:"backend"`
	Path             string `yaml:"path"`
	BlockSize        int    `yaml:"block_size"`
	BlockCount       int    `yaml:"block_count"`
	ProgramBlockSize int    `yaml:"program_block_size"`
	Debug            bool   `yaml:"debug"`
}

func defaultConfig() Config {
	return Config{
		Backend:          "file",
		Path:             "litefs.img",
		BlockSize:        4096,
		BlockCount:       1024,
		ProgramBlockSize: 4096,
	}
}

// LoadConfig reads a YAML configuration file if path is non-empty,
// layering it on top of defaultConfig(); a missing path simply returns
// the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

func newLogger(debug bool) *zap.Logger {
	if debug {
		l, _ := zap.NewDevelopment()
		return l
	}
	l, _ := zap.NewProduction()
	return l
}

// openDevice opens the storage.Device named by cfg.Backend. The
// returned closer is nil for backends with nothing to flush (mem).
func openDevice(cfg Config) (storage.Device, func() error, error) {
	switch cfg.Backend {
	case "mem":
		dev := storage.MemDevice{}.Init(cfg.BlockSize, cfg.BlockCount)
		return dev, nil, nil
	case "file":
		dev, err := storage.OpenFileDevice(cfg.Path, cfg.BlockSize, cfg.BlockCount)
		if err != nil {
			return nil, nil, err
		}
		return dev, dev.Close, nil
	case "bolt":
		dev, err := storage.OpenBoltDevice(cfg.Path, cfg.BlockSize, cfg.BlockCount)
		if err != nil {
			return nil, nil, err
		}
		return dev, dev.Close, nil
	case "badger":
		dev, err := storage.OpenBadgerDevice(cfg.Path, cfg.BlockSize, cfg.BlockCount)
		if err != nil {
			return nil, nil, err
		}
		return dev, dev.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q (want mem, file, bolt or badger)", cfg.Backend)
	}
}
