package storage

import "errors"

var (
	// ErrCorrupt is returned when a metadata pair has no block with
	// even a single valid (CRC-verified) commit.
	ErrCorrupt = errors.New("storage: corrupt metadata pair")

	// ErrNoSpace is returned by the allocator when a refill finds no
	// free block in the half of the device its current scan bias
	// covers.
	ErrNoSpace = errors.New("storage: no space left on device")

	// ErrTooLarge names a single commit that cannot fit in a block
	// even alone, after compaction. No operation in this package
	// returns it.
	ErrTooLarge = errors.New("storage: entry too large for one block")
)
