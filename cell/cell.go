// Package cell implements Cell, the leaf block of a hive tree: a bitfield
// of set voxels plus a three-state payload (Filled, Expanded, Compressed)
// with transparent coercion between states.
//
// Grounded on bart/internal/sparse/array256.go's bitset+Items coupling
// (InsertAt/DeleteAt shape informs Set/Unset's allocate-on-divergence
// logic) and bart/internal/nodes/litenode.go's single-struct,
// internal-state-flag pattern. Three-state semantics (Filled/Expanded/
// Compressed, jump-table const iterator) come from the original nkhive
// C++ Cell.hpp/Cell.h.
package cell

import (
	"errors"
	"fmt"

	"github.com/papaver/nkhive/bitfield"
	"github.com/papaver/nkhive/bitops"
	"github.com/papaver/nkhive/bounds"
	"github.com/papaver/nkhive/stamp"
)

// Flags bitmask, per spec.md §3: flags ∈ {COMPRESSED, FILLED}.
const (
	FlagCompressed uint8 = 1 << 0
	FlagFilled     uint8 = 1 << 1
)

// ErrModifyCompressed is returned by any mutator called on a Compressed
// cell; compression is an explicit, reversible state, never mutated
// in place.
var ErrModifyCompressed = errors.New("cell: cannot modify a compressed cell")

// Cell is a leaf of side 2^LgCellDim voxels per axis, generic over the
// scalar value type T.
type Cell[T comparable] struct {
	lgCellDim    uint
	bits         *bitfield.Field
	defaultValue T
	fillValue    T
	flags        uint8
	data         []T
}

// New creates an empty Filled cell: bitfield empty, fill value equal to
// the default, no payload allocated.
func New[T comparable](lgCellDim uint, defaultValue T) *Cell[T] {
	return &Cell[T]{
		lgCellDim:    lgCellDim,
		bits:         bitfield.New(lgCellDim),
		defaultValue: defaultValue,
		fillValue:    defaultValue,
		flags:        FlagFilled,
	}
}

// NewFilled creates a Filled cell with a full bitfield: every voxel is
// set to fillValue.
func NewFilled[T comparable](lgCellDim uint, defaultValue, fillValue T) *Cell[T] {
	c := &Cell[T]{
		lgCellDim:    lgCellDim,
		bits:         bitfield.New(lgCellDim),
		defaultValue: defaultValue,
		fillValue:    fillValue,
		flags:        FlagFilled,
	}
	c.bits.SetAll()
	return c
}

// LgCellDim returns the cell's size exponent.
func (c *Cell[T]) LgCellDim() uint { return c.lgCellDim }

// Side returns 2^LgCellDim.
func (c *Cell[T]) Side() uint32 { return uint32(1) << c.lgCellDim }

// IsFilled reports whether the cell is in the Filled representation.
func (c *Cell[T]) IsFilled() bool { return c.flags&FlagFilled != 0 }

// IsCompressed reports whether the cell is in the Compressed
// representation.
func (c *Cell[T]) IsCompressed() bool { return c.flags&FlagCompressed != 0 }

// IsExpanded reports whether the cell is in the Expanded representation
// (neither flag set).
func (c *Cell[T]) IsExpanded() bool { return c.flags == 0 }

// IsEmpty reports whether no voxel is set.
func (c *Cell[T]) IsEmpty() bool { return c.bits.IsEmpty() }

// Flags returns the raw flags bitmask (for IO).
func (c *Cell[T]) Flags() uint8 { return c.flags }

// DefaultValue returns the value observed at unset positions.
func (c *Cell[T]) DefaultValue() T { return c.defaultValue }

// FillValue returns the fill value (meaningful when Filled).
func (c *Cell[T]) FillValue() T { return c.fillValue }

// DataSize returns len(data): 0 (Filled), 8^LgCellDim (Expanded), or
// popcount (Compressed).
func (c *Cell[T]) DataSize() int { return len(c.data) }

func (c *Cell[T]) cubeVolume() int { return int(bitops.CubeVolume(c.lgCellDim)) }

func (c *Cell[T]) linear(i, j, k uint32) uint64 {
	return bitops.LinearIndex(i, j, k, c.lgCellDim)
}

// Get returns the value at cube-local coordinate (i,j,k).
func (c *Cell[T]) Get(i, j, k uint32) T {
	return c.GetLinear(c.linear(i, j, k))
}

// GetLinear returns the value at linear index idx: if the bit is clear,
// DefaultValue; else if Filled, FillValue; else if Compressed, the
// popcount-prefix-indexed payload slot; else the dense data slot.
func (c *Cell[T]) GetLinear(idx uint64) T {
	if !c.bits.Test(idx) {
		return c.defaultValue
	}
	if c.IsFilled() {
		return c.fillValue
	}
	if c.IsCompressed() {
		return c.data[c.bits.PopCountPrefix(idx+1)-1]
	}
	return c.data[idx]
}

// initializeSet allocates a dense array of cube volume slots, seeded with
// defaultValue everywhere, then overwrites every currently-set position
// with fillValue.
func (c *Cell[T]) initializeSet(fillValue T) []T {
	data := make([]T, c.cubeVolume())
	for i := range data {
		data[i] = c.defaultValue
	}
	for it := c.bits.SetIterator(); it.Next(); {
		data[it.Index()] = fillValue
	}
	return data
}

// Set writes v at linear index idx, per the transition table in §4.2.
func (c *Cell[T]) Set(idx uint64, v T) error {
	if c.IsCompressed() {
		return ErrModifyCompressed
	}

	switch {
	case c.bits.IsEmpty():
		// Empty -> empty-Filled, no allocation.
		c.data = nil
		c.flags = FlagFilled
		c.fillValue = v
		c.bits.Set(idx)

	case c.IsFilled() && v == c.fillValue:
		c.bits.Set(idx)

	case c.IsFilled() && c.bits.SingleBitSetAt(idx):
		// Rewriting the only previously-set voxel: stays Filled.
		c.fillValue = v

	case c.IsFilled():
		// Many bits set, new value differs: promote to Expanded.
		c.data = c.initializeSet(c.fillValue)
		c.flags = 0
		c.bits.Set(idx)
		c.data[idx] = v

	default:
		// Already Expanded.
		c.bits.Set(idx)
		c.data[idx] = v
	}
	return nil
}

// Unset clears the bit at linear index idx.
func (c *Cell[T]) Unset(idx uint64) error {
	if c.IsCompressed() {
		return ErrModifyCompressed
	}
	c.bits.Clear(idx)
	if c.IsExpanded() {
		c.data[idx] = c.defaultValue
	}
	return nil
}

// Update computes op(Get(idx), v) and writes it with Set.
func (c *Cell[T]) Update(idx uint64, v T, op func(old, v T) T) error {
	newV := op(c.GetLinear(idx), v)
	return c.Set(idx, newV)
}

// Fill drops any payload and collapses the cell to Filled with every
// voxel set to v.
func (c *Cell[T]) Fill(v T) error {
	if c.IsCompressed() {
		return ErrModifyCompressed
	}
	c.data = nil
	c.flags = FlagFilled
	c.fillValue = v
	c.bits.SetAll()
	return nil
}

// Clear drops any payload and collapses the cell to an empty Filled
// cell; DefaultValue is preserved.
func (c *Cell[T]) Clear() error {
	if c.IsCompressed() {
		return ErrModifyCompressed
	}
	c.data = nil
	c.flags = FlagFilled
	c.bits.ClearAll()
	return nil
}

// Compress packs the cell's set values into a dense popcount-sized
// payload. No-op if already Compressed or Filled (Filled+Compress is the
// identity — it sets the flag only, no allocation).
func (c *Cell[T]) Compress() error {
	if c.IsCompressed() || c.IsFilled() {
		c.flags |= FlagCompressed
		return nil
	}
	packed := make([]T, c.bits.PopCount())
	i := 0
	for it := c.bits.SetIterator(); it.Next(); {
		packed[i] = c.data[it.Index()]
		i++
	}
	c.data = packed
	c.flags |= FlagCompressed
	return nil
}

// Uncompress expands a Compressed cell back to Expanded. No-op if not
// Compressed; a Filled+Compressed cell only has the flag cleared.
func (c *Cell[T]) Uncompress() error {
	if !c.IsCompressed() {
		return nil
	}
	if c.IsFilled() {
		c.flags &^= FlagCompressed
		return nil
	}
	data := make([]T, c.cubeVolume())
	for i := range data {
		data[i] = c.defaultValue
	}
	i := 0
	for it := c.bits.SetIterator(); it.Next(); {
		data[it.Index()] = c.data[i]
		i++
	}
	c.data = data
	c.flags &^= FlagCompressed
	return nil
}

// SetBlock sets every voxel in the cubic sub-window of side `side`
// anchored at min to v. If the window covers the whole cell, it
// delegates to Fill.
func (c *Cell[T]) SetBlock(min bounds.Vec3, side uint32, v T) error {
	if c.IsCompressed() {
		return ErrModifyCompressed
	}
	if side >= c.Side() {
		return c.Fill(v)
	}
	anchor := c.linear(min.X, min.Y, min.Z)
	for it := c.bits.WindowIterator(anchor, side); it.Next(); {
		if err := c.Set(it.Index(), v); err != nil {
			return err
		}
	}
	return nil
}

// UnsetBlock clears every voxel in the cubic sub-window of side `side`
// anchored at min.
func (c *Cell[T]) UnsetBlock(min bounds.Vec3, side uint32) error {
	if c.IsCompressed() {
		return ErrModifyCompressed
	}
	anchor := c.linear(min.X, min.Y, min.Z)
	for it := c.bits.WindowIterator(anchor, side); it.Next(); {
		if err := c.Unset(it.Index()); err != nil {
			return err
		}
	}
	return nil
}

// Stamp applies src over cellBounds (cube-local coordinates), sampling
// src at srcBounds.Min + step*transform, where transform reflects the
// source across the octant diagonal. The outer loop runs k, middle j,
// inner i for cache coherence.
func (c *Cell[T]) Stamp(src stamp.Source[T], srcBounds bounds.SignedBox, cellBounds bounds.Box, transform [3]int32) error {
	// If an axis walks negative, swap and decrement that axis' bounds so
	// the loop's starting sample point is the reflected range's true
	// first element: [min,max) becomes a descending walk starting at
	// max-1, ending at min-1.
	adjSrcBounds := srcBounds
	if transform[0] < 0 {
		adjSrcBounds.Min.X, adjSrcBounds.Max.X = srcBounds.Max.X-1, srcBounds.Min.X-1
	}
	if transform[1] < 0 {
		adjSrcBounds.Min.Y, adjSrcBounds.Max.Y = srcBounds.Max.Y-1, srcBounds.Min.Y-1
	}
	if transform[2] < 0 {
		adjSrcBounds.Min.Z, adjSrcBounds.Max.Z = srcBounds.Max.Z-1, srcBounds.Min.Z-1
	}

	for k := cellBounds.Min.Z; k < cellBounds.Max.Z; k++ {
		sk := adjSrcBounds.Min.Z + int32(k-cellBounds.Min.Z)*transform[2]
		for j := cellBounds.Min.Y; j < cellBounds.Max.Y; j++ {
			sj := adjSrcBounds.Min.Y + int32(j-cellBounds.Min.Y)*transform[1]
			for i := cellBounds.Min.X; i < cellBounds.Max.X; i++ {
				si := adjSrcBounds.Min.X + int32(i-cellBounds.Min.X)*transform[0]
				v := src.Get(si, sj, sk)
				if err := c.Set(c.linear(i, j, k), v); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// WalkSet calls fn for every set voxel's cube-local coordinate and value,
// in bitfield iteration order.
func (c *Cell[T]) WalkSet(fn func(i, j, k uint32, v T)) {
	for it := c.bits.SetIterator(); it.Next(); {
		i, j, k := it.Coords()
		fn(i, j, k, c.GetLinear(it.Index()))
	}
}

// ComputeSetBounds returns the tight half-open box covering every set
// voxel, and whether any voxel is set at all.
func (c *Cell[T]) ComputeSetBounds() (bounds.Box, bool) {
	side := c.Side()
	if c.bits.IsFull() {
		return bounds.Box{Min: bounds.Vec3{}, Max: bounds.Vec3{X: side, Y: side, Z: side}}, true
	}
	if c.bits.IsEmpty() {
		return bounds.Box{}, false
	}
	out := bounds.Box{Min: bounds.Vec3{X: side, Y: side, Z: side}, Max: bounds.Vec3{}}
	for it := c.bits.SetIterator(); it.Next(); {
		i, j, k := it.Coords()
		if i < out.Min.X {
			out.Min.X = i
		}
		if j < out.Min.Y {
			out.Min.Y = j
		}
		if k < out.Min.Z {
			out.Min.Z = k
		}
		if i+1 > out.Max.X {
			out.Max.X = i + 1
		}
		if j+1 > out.Max.Y {
			out.Max.Y = j + 1
		}
		if k+1 > out.Max.Z {
			out.Max.Z = k + 1
		}
	}
	return out, true
}

func (c *Cell[T]) String() string {
	switch {
	case c.IsCompressed():
		return fmt.Sprintf("Cell{compressed, %d voxels}", c.bits.PopCount())
	case c.IsFilled():
		return fmt.Sprintf("Cell{filled=%v, %d/%d voxels}", c.fillValue, c.bits.PopCount(), c.bits.Len())
	default:
		return fmt.Sprintf("Cell{expanded, %d/%d voxels}", c.bits.PopCount(), c.bits.Len())
	}
}
