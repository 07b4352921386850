/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 */

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fingon/go-litefs/fs"
)

var formatCmd = &cobra.Command{
	Use:   "format",
	Short: "Write a fresh filesystem image to the configured backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, closer, err := openDevice(currentConfig)
		if err != nil {
			return err
		}
		if closer != nil {
			defer closer()
		}
		fsys, err := fs.Format(dev, currentConfig.ProgramBlockSize)
		if err != nil {
			return err
		}
		info := fsys.Info()
		logger.Info("formatted",
			zapFields(currentConfig, info)...,
		)
		fmt.Printf("formatted %s: %d blocks of %d bytes\n", currentConfig.Backend, info.BlockCount, info.BlockSize)
		return nil
	},
}
