package storage

import (
	"os"

	"github.com/fingon/go-litefs/mlog"
)

// FileDevice stores every block as a fixed-size slot inside one flat
// pre-sized file, addressed by ReadAt/WriteAt offset rather than the
// teacher's per-block-file hierarchy (FileBlockBackend) — littlefs
// blocks are fixed-size and index-addressed, so one contiguous file
// is the natural on-disk shape instead of a directory tree keyed by
// content hash.
type FileDevice struct {
	f          *os.File
	blockSize  int
	blockCount int
}

var _ Device = &FileDevice{}

// OpenFileDevice opens (creating and erasing if necessary) a flat
// image file sized for blockCount blocks of blockSize bytes each.
func OpenFileDevice(path string, blockSize, blockCount int) (*FileDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, err
	}
	self := &FileDevice{f: f, blockSize: blockSize, blockCount: blockCount}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	want := int64(blockSize) * int64(blockCount)
	if fi.Size() != want {
		if err := self.format(want); err != nil {
			f.Close()
			return nil, err
		}
	}
	return self, nil
}

func (self *FileDevice) format(size int64) error {
	if err := self.f.Truncate(size); err != nil {
		return err
	}
	erased := make([]byte, self.blockSize)
	for i := range erased {
		erased[i] = 0xff
	}
	for i := 0; i < self.blockCount; i++ {
		if _, err := self.f.WriteAt(erased, int64(i)*int64(self.blockSize)); err != nil {
			return err
		}
	}
	return nil
}

func (self *FileDevice) ReadBlock(addr BlockAddr, buf []byte) error {
	mlog.Printf2("storage/filedevice", "ReadBlock %d", addr)
	_, err := self.f.ReadAt(buf, int64(addr)*int64(self.blockSize))
	return err
}

func (self *FileDevice) ProgramBlock(addr BlockAddr, data []byte) error {
	mlog.Printf2("storage/filedevice", "ProgramBlock %d (%d b)", addr, len(data))
	_, err := self.f.WriteAt(data, int64(addr)*int64(self.blockSize))
	return err
}

func (self *FileDevice) BlockCount() int { return self.blockCount }
func (self *FileDevice) BlockSize() int  { return self.blockSize }

func (self *FileDevice) Close() error { return self.f.Close() }
