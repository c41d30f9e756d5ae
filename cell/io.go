package cell

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/papaver/nkhive/bitfield"
)

// BitField returns the cell's underlying bitfield, for callers that
// persist it as a dataset of its own rather than inline in a single
// WriteTo stream (a hierarchical-group writer, per spec.md §6.2).
func (c *Cell[T]) BitField() *bitfield.Field { return c.bits }

// WriteTo writes flags, the bitfield, default and fill values, the data
// size, and the payload — omitting the payload when Filled. The on-disk
// form is always compressed: a non-compressed cell is compressed into a
// scratch copy before writing so ReadFrom always sees packed payload.
func (c *Cell[T]) WriteTo(w io.Writer, encodeValue func(io.Writer, T) error) (int64, error) {
	var n int64

	src := c
	if !c.IsCompressed() && !c.IsFilled() {
		tmp := *c
		tmpData := make([]T, len(c.data))
		copy(tmpData, c.data)
		tmp.data = tmpData
		if err := tmp.Compress(); err != nil {
			return 0, err
		}
		src = &tmp
	}

	if err := binary.Write(w, binary.LittleEndian, src.flags); err != nil {
		return n, fmt.Errorf("cell: write flags: %w", err)
	}
	n++

	bn, err := src.bits.WriteTo(w)
	n += bn
	if err != nil {
		return n, fmt.Errorf("cell: write bitfield: %w", err)
	}

	if err := encodeValue(w, src.defaultValue); err != nil {
		return n, fmt.Errorf("cell: write default value: %w", err)
	}
	if err := encodeValue(w, src.fillValue); err != nil {
		return n, fmt.Errorf("cell: write fill value: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(len(src.data))); err != nil {
		return n, fmt.Errorf("cell: write data size: %w", err)
	}
	n += 4

	if src.IsFilled() {
		return n, nil
	}
	for _, v := range src.data {
		if err := encodeValue(w, v); err != nil {
			return n, fmt.Errorf("cell: write payload: %w", err)
		}
	}
	return n, nil
}

// WriteVoxelData writes just the payload values, omitting the flags,
// bitfield, and default/fill values WriteTo also writes inline — for a
// writer that persists those separately as a leaf group's own
// attributes (spec.md §6.2). Like WriteTo, the payload written is
// always the compressed form, and nothing is written when Filled. It
// returns the element count, for the caller to record as the
// VoxelData dataset's dims.
func (c *Cell[T]) WriteVoxelData(w io.Writer, encodeValue func(io.Writer, T) error) (int, error) {
	src := c
	if !c.IsCompressed() && !c.IsFilled() {
		tmp := *c
		tmpData := make([]T, len(c.data))
		copy(tmpData, c.data)
		tmp.data = tmpData
		if err := tmp.Compress(); err != nil {
			return 0, err
		}
		src = &tmp
	}

	if src.IsFilled() {
		return 0, nil
	}
	for _, v := range src.data {
		if err := encodeValue(w, v); err != nil {
			return 0, fmt.Errorf("cell: write voxel data: %w", err)
		}
	}
	return len(src.data), nil
}

// FromParts reconstructs a Cell directly from components read back
// individually (flags, bitfield, default/fill values, and — unless
// Filled — a voxel payload of the given count), matching ReadFrom's
// uncompress-unless-Filled tail logic for a reader that stores a
// cell's pieces as separate leaf-group attributes/datasets rather than
// one serialized stream (spec.md §6.2).
func FromParts[T comparable](lgCellDim uint, flags uint8, bits *bitfield.Field, defaultValue, fillValue T, r io.Reader, dataSize int, decodeValue func(io.Reader) (T, error)) (*Cell[T], error) {
	c := &Cell[T]{
		lgCellDim:    lgCellDim,
		bits:         bits,
		defaultValue: defaultValue,
		fillValue:    fillValue,
		flags:        flags,
	}

	if c.IsFilled() {
		return c, nil
	}

	c.data = make([]T, dataSize)
	for i := range c.data {
		v, err := decodeValue(r)
		if err != nil {
			return nil, fmt.Errorf("cell: read voxel data: %w", err)
		}
		c.data[i] = v
	}
	if c.IsCompressed() {
		if err := c.Uncompress(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ReadFrom reads the stream form written by WriteTo. The on-disk form is
// always compressed; ReadFrom uncompresses it unless the saved flags
// indicate the cell is Filled, matching §4.2's "on read, uncompress if
// the saved form wasn't [already] compressed" rule restated the other
// way: the wire form IS compressed, so we uncompress unless the reader
// wants to keep it packed (callers needing Compressed call Compress
// again explicitly).
func ReadFrom[T comparable](r io.Reader, lgCellDim uint, decodeValue func(io.Reader) (T, error)) (*Cell[T], int64, error) {
	var n int64

	var flags uint8
	if err := binary.Read(r, binary.LittleEndian, &flags); err != nil {
		return nil, n, fmt.Errorf("cell: read flags: %w", err)
	}
	n++

	c := &Cell[T]{lgCellDim: lgCellDim, bits: bitfield.New(lgCellDim), flags: flags}
	bn, err := c.bits.ReadFrom(r)
	n += bn
	if err != nil {
		return nil, n, fmt.Errorf("cell: read bitfield: %w", err)
	}

	c.defaultValue, err = decodeValue(r)
	if err != nil {
		return nil, n, fmt.Errorf("cell: read default value: %w", err)
	}
	c.fillValue, err = decodeValue(r)
	if err != nil {
		return nil, n, fmt.Errorf("cell: read fill value: %w", err)
	}

	var dataSize uint32
	if err := binary.Read(r, binary.LittleEndian, &dataSize); err != nil {
		return nil, n, fmt.Errorf("cell: read data size: %w", err)
	}
	n += 4

	if c.IsFilled() {
		return c, n, nil
	}

	c.data = make([]T, dataSize)
	for i := range c.data {
		c.data[i], err = decodeValue(r)
		if err != nil {
			return nil, n, fmt.Errorf("cell: read payload: %w", err)
		}
	}
	if c.IsCompressed() {
		if err := c.Uncompress(); err != nil {
			return nil, n, err
		}
	}
	return c, n, nil
}
