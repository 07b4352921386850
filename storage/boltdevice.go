package storage

import (
	"encoding/binary"

	bolt "go.etcd.io/bbolt"

	"github.com/fingon/go-litefs/mlog"
)

var blocksBucket = []byte("blocks")

// BoltDevice stores every block as a value in a single bbolt bucket,
// keyed by its big-endian uint64 block index, the same single-bucket
// shape the teacher's BoltBlockBackend uses for its dataKey bucket
// (there keyed by content-hash block id; here by block index, since
// littlefs addresses blocks positionally rather than by hash).
type BoltDevice struct {
	db         *bolt.DB
	blockSize  int
	blockCount int
}

var _ Device = &BoltDevice{}

func OpenBoltDevice(path string, blockSize, blockCount int) (*BoltDevice, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(blocksBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltDevice{db: db, blockSize: blockSize, blockCount: blockCount}, nil
}

func blockKey(addr BlockAddr) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], uint64(addr))
	return k[:]
}

func (self *BoltDevice) ReadBlock(addr BlockAddr, buf []byte) error {
	mlog.Printf2("storage/boltdevice", "ReadBlock %d", addr)
	return self.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(blocksBucket).Get(blockKey(addr))
		if v == nil {
			for i := range buf {
				buf[i] = 0xff
			}
			return nil
		}
		copy(buf, v)
		return nil
	})
}

func (self *BoltDevice) ProgramBlock(addr BlockAddr, data []byte) error {
	mlog.Printf2("storage/boltdevice", "ProgramBlock %d (%d b)", addr, len(data))
	return self.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(blocksBucket).Put(blockKey(addr), data)
	})
}

func (self *BoltDevice) BlockCount() int { return self.blockCount }
func (self *BoltDevice) BlockSize() int  { return self.blockSize }

func (self *BoltDevice) Close() error { return self.db.Close() }
