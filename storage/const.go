/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 */

// storage package implements the on-disk metadata format and the
// block allocator of a littlefs-compatible filesystem: tags, entries,
// commits, metadata blocks, metadata pairs, CTZ skip-list files, and
// reachability-based block allocation. It knows nothing about paths
// or directory trees; see the fs package for that.
package storage

// BlockAddr is a physical block index on the underlying Device.
type BlockAddr uint32

// Pair is the pair of physical addresses backing one logical metadata
// block. The two halves alternate which one is "current" across
// writes; both addresses are fixed for the pair's lifetime.
type Pair [2]BlockAddr

// RootPair is the fixed location of the root directory's metadata
// pair.
var RootPair = Pair{0, 1}

const (
	// NoID marks a tag that does not belong to any entity id.
	NoID uint16 = 0x3ff

	// NoLength marks a reserved/absent tag length.
	NoLength uint16 = 0x3ff

	// tagXORSeed is the initial chain value the first tag of a
	// metadata block is XORed against; every later tag, including the
	// first tag of each later commit, chains from the tag before it.
	tagXORSeed uint32 = 0xffffffff
)

// Struct entry subtypes (the tag "chunk" of a STRUCT entry), matching
// the reference littlefs on-disk encoding.
const (
	StructInline uint8 = 0x01
	StructCTZ    uint8 = 0x02
	StructDir    uint8 = 0x03
)

// Name entry subtypes: a NAME tag's chunk records whether the id it
// names is a regular value or a sub-directory, so `list` can answer
// (name, kind) without a second lookup.
const (
	NameKindFile uint8 = 0x01
	NameKindDir  uint8 = 0x02
)

// MagicName is the payload of the NAME entry at id 0 of the root
// pair.
const MagicName = "littlefs"

// InlineThresholdDivisor: a file larger than block_size/divisor is
// stored as a CTZ skip-list instead of inline in its directory entry.
const InlineThresholdDivisor = 4
