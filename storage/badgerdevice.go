package storage

import (
	"github.com/dgraph-io/badger"

	"github.com/fingon/go-litefs/mlog"
)

// BadgerDevice stores every block as a key/value pair in a badger
// database, keyed the same way BoltDevice is (big-endian uint64 block
// index), grounded on the teacher's badgerBackend (storage/badger)
// which used badger as an on-disk KV store for content-addressed
// blocks; here it backs positionally-addressed ones. A log-structured
// KV engine makes a plausible "emulated flash" backing store when the
// block count is large enough that one file-per-image isn't
// appealing.
type BadgerDevice struct {
	db         *badger.DB
	blockSize  int
	blockCount int
}

var _ Device = &BadgerDevice{}

func OpenBadgerDevice(dir string, blockSize, blockCount int) (*BadgerDevice, error) {
	opts := badger.DefaultOptions(dir)
	opts.ValueDir = dir
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerDevice{db: db, blockSize: blockSize, blockCount: blockCount}, nil
}

func (self *BadgerDevice) ReadBlock(addr BlockAddr, buf []byte) error {
	mlog.Printf2("storage/badgerdevice", "ReadBlock %d", addr)
	err := self.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(blockKey(addr))
		if err == badger.ErrKeyNotFound {
			for i := range buf {
				buf[i] = 0xff
			}
			return nil
		}
		if err != nil {
			return err
		}
		v, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		copy(buf, v)
		return nil
	})
	return err
}

func (self *BadgerDevice) ProgramBlock(addr BlockAddr, data []byte) error {
	mlog.Printf2("storage/badgerdevice", "ProgramBlock %d (%d b)", addr, len(data))
	return self.db.Update(func(txn *badger.Txn) error {
		return txn.Set(blockKey(addr), data)
	})
}

func (self *BadgerDevice) BlockCount() int { return self.blockCount }
func (self *BadgerDevice) BlockSize() int  { return self.blockSize }

func (self *BadgerDevice) Close() error { return self.db.Close() }
