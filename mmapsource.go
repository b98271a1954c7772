package cbor

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// MmapByteSource is a ByteSource backed by a memory-mapped file, for
// decoding large CBOR documents without copying the whole file into the
// process heap up front (spec.md §9 "Streaming sources").
type MmapByteSource struct {
	f    *os.File
	data mmap.MMap
}

// OpenMmapByteSource memory-maps name read-only.
func OpenMmapByteSource(name string) (*MmapByteSource, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &MmapByteSource{f: f, data: data}, nil
}

// ReadAll returns the mapped region directly; no copy is made.
func (m *MmapByteSource) ReadAll() ([]byte, error) {
	return m.data, nil
}

// Close unmaps the region and closes the underlying file.
func (m *MmapByteSource) Close() error {
	if err := m.data.Unmap(); err != nil {
		m.f.Close()
		return err
	}
	return m.f.Close()
}
