/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 */

package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	fusefs "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/fingon/go-litefs/fs"
	"github.com/fingon/go-litefs/fuseops"
)

var mountCmd = &cobra.Command{
	Use:   "mount MOUNTPOINT",
	Short: "Mount the configured backend's filesystem image over FUSE",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mountpoint := args[0]

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

		seconds := time.Second
		rawFS := fusefs.NewNodeFS(fuseops.Root(fsys), &fusefs.Options{
			AttrTimeout:     &seconds,
			EntryTimeout:    &seconds,
			NullPermissions: true,
		})
		mountOpts := &fuse.MountOptions{
			AllowOther: true,
			FsName:     "litefs",
			Debug:      currentConfig.Debug,
		}
		server, err := fuse.NewServer(rawFS, mountpoint, mountOpts)
		if err != nil {
			return err
		}

		logger.Info("mounted", zap.String("mountpoint", mountpoint), zap.String("backend", currentConfig.Backend))
		server.Serve()
		return nil
	},
}
