/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 */

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fingon/go-litefs/fs"
)

var fsckCmd = &cobra.Command{
	Use:   "fsck",
	Short: "Scan the configured backend and report block liveness",
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, closer, err := openDevice(currentConfig)
		if err != nil {
			return err
		}
		if closer != nil {
			defer closer()
		}
		fsys, err := fs.Connect(dev, currentConfig.ProgramBlockSize)
		if err != nil {
			return err
		}
		report := fsys.Fsck()
		logger.Info("fsck",
			zap.Int("block_count", report.BlockCount),
			zap.Int("live_blocks", report.LiveBlocks),
			zap.Int("free_blocks", report.FreeBlocks),
		)
		fmt.Printf("blocks: %d total, %d live, %d free\n", report.BlockCount, report.LiveBlocks, report.FreeBlocks)
		return nil
	},
}
