/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 */

package main

import (
	"go.uber.org/zap"

	"github.com/fingon/go-litefs/storage"
)

func zapFields(cfg Config, sb storage.Superblock) []zap.Field {
	return []zap.Field{
		zap.String("backend", cfg.Backend),
		zap.String("path", cfg.Path),
		zap.Uint32("block_size", sb.BlockSize),
		zap.Uint32("block_count", sb.BlockCount),
	}
}
