package storage

// MemDevice is an in-memory Device; every block is always available
// and is just stored in a map, mirroring the teacher's
// InMemoryBlockBackend for the always-available, no-IO-errors case.
type MemDevice struct {
	blockSize  int
	blockCount int
	blocks     map[BlockAddr][]byte
}

var _ Device = &MemDevice{}

// Init makes the instance actually useful. Blocks are stored only once
// programmed; an unwritten block reads back as the erased-flash value
// (0xff), the same content OpenFileDevice writes into a freshly sized
// file.
func (self MemDevice) Init(blockSize, blockCount int) *MemDevice {
	self.blockSize = blockSize
	self.blockCount = blockCount
	self.blocks = make(map[BlockAddr][]byte, blockCount)
	return &self
}

func (self *MemDevice) ReadBlock(addr BlockAddr, buf []byte) error {
	data := self.blocks[addr]
	if data == nil {
		for i := range buf {
			buf[i] = 0xff
		}
		return nil
	}
	copy(buf, data)
	return nil
}

func (self *MemDevice) ProgramBlock(addr BlockAddr, data []byte) error {
	cp := make([]byte, self.blockSize)
	copy(cp, data)
	self.blocks[addr] = cp
	return nil
}

func (self *MemDevice) BlockCount() int { return self.blockCount }
func (self *MemDevice) BlockSize() int  { return self.blockSize }
