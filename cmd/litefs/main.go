/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 */

// Command litefs formats, checks and mounts littlefs-compatible
// filesystem images against one of several pluggable block storage
// backends.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	backend    string
	devPath    string
	blockSize  int
	blockCount int
	progBlock  int
	debug      bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "litefs",
	Short:         "littlefs-compatible filesystem tool",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(configPath)
		if err != nil {
			return err
		}
		applyFlagOverrides(cmd, &cfg)
		currentConfig = cfg
		logger = newLogger(cfg.Debug)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logger != nil {
			return logger.Sync()
		}
		return nil
	},
}

// currentConfig is the fully resolved (file + flag overrides)
// configuration, set up by rootCmd's PersistentPreRunE before any
// subcommand's RunE runs.
var currentConfig Config

func applyFlagOverrides(cmd *cobra.Command, cfg *Config) {
	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = backend
	}
	if flags.Changed("path") {
		cfg.Path = devPath
	}
	if flags.Changed("block-size") {
		cfg.BlockSize = blockSize
	}
	if flags.Changed("block-count") {
		cfg.BlockCount = blockCount
	}
	if flags.Changed("program-block-size") {
		cfg.ProgramBlockSize = progBlock
	}
	if flags.Changed("debug") {
		cfg.Debug = debug
	}
	if cfg.ProgramBlockSize == 0 {
		cfg.ProgramBlockSize = cfg.BlockSize
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	pf.StringVar(&backend, "backend", "", "storage backend: mem, file, bolt or badger")
	pf.StringVar(&devPath, "path", "", "backend path (file/db path, ignored for mem)")
	pf.IntVar(&blockSize, "block-size", 0, "block size in bytes")
	pf.IntVar(&blockCount, "block-count", 0, "number of blocks")
	pf.IntVar(&progBlock, "program-block-size", 0, "program (commit padding) granularity in bytes")
	pf.BoolVar(&debug, "debug", false, "enable verbose logging")

	rootCmd.AddCommand(formatCmd, fsckCmd, mountCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
