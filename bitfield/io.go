package bitfield

import (
	"encoding/binary"
	"fmt"
	"io"
)

// WriteTo writes the stream form: LgSize (uint32) followed by the used
// byte range of the backing word store, ceil(8^LgSize / 64) words.
func (f *Field) WriteTo(w io.Writer) (int64, error) {
	var n int64
	if err := binary.Write(w, binary.LittleEndian, uint32(f.lgSize)); err != nil {
		return n, fmt.Errorf("bitfield: write lgSize: %w", err)
	}
	n += 4
	used := f.words[:wordCount(f.lgSize)]
	if err := binary.Write(w, binary.LittleEndian, used); err != nil {
		return n, fmt.Errorf("bitfield: write words: %w", err)
	}
	n += int64(len(used)) * 8
	return n, nil
}

// ReadFrom reads the stream form written by WriteTo, replacing f's
// contents in place.
func (f *Field) ReadFrom(r io.Reader) (int64, error) {
	var lgSize uint32
	if err := binary.Read(r, binary.LittleEndian, &lgSize); err != nil {
		return 0, fmt.Errorf("bitfield: read lgSize: %w", err)
	}
	var n int64 = 4

	f.lgSize = uint(lgSize)
	f.words = make([]uint64, wordCount(f.lgSize))
	if err := binary.Read(r, binary.LittleEndian, f.words); err != nil {
		return n, fmt.Errorf("bitfield: read words: %w", err)
	}
	n += int64(len(f.words)) * 8
	return n, nil
}
