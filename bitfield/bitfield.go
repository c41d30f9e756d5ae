// Package bitfield implements BitField3D: a packed 1D bit array logically
// addressed as a cube of side 2^lgSize.
//
// Generalized from bart/internal/bitset/bitset256.go's fixed 256-bit word
// layout (popcount via math/bits, Rank0 via a precomputed rank mask,
// FirstSet/NextSet via bits.TrailingZeros64) to a runtime-sized []uint64,
// since a BART stride is always 8 bits wide but a hive cube's lgSize is a
// construction parameter.
package bitfield

import (
	"fmt"
	"math/bits"

	"github.com/papaver/nkhive/bitops"
)

const wordBits = 64

// Field is a packed bit array addressed as a cube of side 2^LgSize.
type Field struct {
	lgSize uint
	words  []uint64
}

// New allocates a zero-initialized Field for a cube of side 2^lgSize.
func New(lgSize uint) *Field {
	return &Field{
		lgSize: lgSize,
		words:  make([]uint64, wordCount(lgSize)),
	}
}

func wordCount(lgSize uint) int {
	n := bitops.CubeVolume(lgSize)
	return int((n + wordBits - 1) / wordBits)
}

// LgSize returns the cube's size exponent.
func (f *Field) LgSize() uint { return f.lgSize }

// Len returns the number of addressable bits, 8^LgSize.
func (f *Field) Len() uint64 { return bitops.CubeVolume(f.lgSize) }

func (f *Field) checkRange(idx uint64) {
	if idx >= f.Len() {
		panic(fmt.Sprintf("bitfield: index %d out of range [0,%d)", idx, f.Len()))
	}
}

// Test reports whether the bit at linear index idx is set.
func (f *Field) Test(idx uint64) bool {
	f.checkRange(idx)
	return f.words[idx/wordBits]&(1<<(idx%wordBits)) != 0
}

// TestCoord reports whether the bit at cube coordinate (i,j,k) is set.
func (f *Field) TestCoord(i, j, k uint32) bool {
	return f.Test(bitops.LinearIndex(i, j, k, f.lgSize))
}

// Set sets the bit at linear index idx.
func (f *Field) Set(idx uint64) {
	f.checkRange(idx)
	f.words[idx/wordBits] |= 1 << (idx % wordBits)
}

// SetCoord sets the bit at cube coordinate (i,j,k).
func (f *Field) SetCoord(i, j, k uint32) {
	f.Set(bitops.LinearIndex(i, j, k, f.lgSize))
}

// Clear clears the bit at linear index idx.
func (f *Field) Clear(idx uint64) {
	f.checkRange(idx)
	f.words[idx/wordBits] &^= 1 << (idx % wordBits)
}

// ClearCoord clears the bit at cube coordinate (i,j,k).
func (f *Field) ClearCoord(i, j, k uint32) {
	f.Clear(bitops.LinearIndex(i, j, k, f.lgSize))
}

// SetAll sets every bit in the field.
func (f *Field) SetAll() {
	for i := range f.words {
		f.words[i] = ^uint64(0)
	}
	f.clearTailBits()
}

// ClearAll clears every bit in the field.
func (f *Field) ClearAll() {
	for i := range f.words {
		f.words[i] = 0
	}
}

// Invert flips every bit in the field.
func (f *Field) Invert() {
	for i := range f.words {
		f.words[i] = ^f.words[i]
	}
	f.clearTailBits()
}

// clearTailBits masks off bits beyond Len() in the last word so popcount
// and iteration never observe spurious high bits set by SetAll/Invert.
func (f *Field) clearTailBits() {
	n := f.Len()
	if n%wordBits == 0 || len(f.words) == 0 {
		return
	}
	last := len(f.words) - 1
	validBits := n - uint64(last)*wordBits
	mask := (uint64(1) << validBits) - 1
	f.words[last] &= mask
}

// PopCount returns the total number of set bits.
func (f *Field) PopCount() int {
	cnt := 0
	for _, w := range f.words {
		cnt += bitops.PopCount(w)
	}
	return cnt
}

// PopCountPrefix returns the number of set bits strictly below linear
// index n.
func (f *Field) PopCountPrefix(n uint64) int {
	if n > f.Len() {
		n = f.Len()
	}
	fullWords := int(n / wordBits)
	cnt := 0
	for i := 0; i < fullWords; i++ {
		cnt += bitops.PopCount(f.words[i])
	}
	if rem := n % wordBits; rem != 0 {
		mask := (uint64(1) << rem) - 1
		cnt += bitops.PopCount(f.words[fullWords] & mask)
	}
	return cnt
}

// IsFull reports whether every addressable bit is set.
func (f *Field) IsFull() bool {
	return f.PopCount() == int(f.Len())
}

// IsEmpty reports whether no bit is set.
func (f *Field) IsEmpty() bool {
	for _, w := range f.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// SingleBitSetAt reports whether exactly one bit is set in the whole field
// and it is located at idx.
func (f *Field) SingleBitSetAt(idx uint64) bool {
	if !f.Test(idx) {
		return false
	}
	return f.PopCount() == 1
}

// LinearIndexOfNthSet returns the linear index of the (n+1)-th set bit.
func (f *Field) LinearIndexOfNthSet(n int) (idx uint64, ok bool) {
	remaining := n
	for w, word := range f.words {
		c := bitops.PopCount(word)
		if remaining < c {
			for word != 0 {
				bit := bits.TrailingZeros64(word)
				if remaining == 0 {
					return uint64(w)*wordBits + uint64(bit), true
				}
				word &= word - 1
				remaining--
			}
		}
		remaining -= c
	}
	return 0, false
}

// Resize preserves set voxels by 3D coordinate: every set coordinate that
// still fits inside the new cube is re-set at its coordinate in the
// resized field; voxels outside the new cube are dropped. If the existing
// backing store has enough words for the new size, the relabel happens
// in place; otherwise a fresh backing store is allocated and swapped in.
func (f *Field) Resize(newLgSize uint) {
	oldLgSize := f.lgSize
	if newLgSize == oldLgSize {
		return
	}

	newWordCount := wordCount(newLgSize)

	// Collect set coordinates under the OLD geometry first: decoding with
	// the old lgSize must happen before words are mutated in place.
	type coord struct{ i, j, k uint32 }
	var set []coord
	for it := f.SetIterator(); it.Next(); {
		i, j, k := it.Coords()
		set = append(set, coord{i, j, k})
	}

	if len(f.words) >= newWordCount {
		for i := range f.words {
			f.words[i] = 0
		}
	} else {
		f.words = make([]uint64, newWordCount)
	}
	f.lgSize = newLgSize

	newSide := uint32(1) << newLgSize
	for _, c := range set {
		if c.i >= newSide || c.j >= newSide || c.k >= newSide {
			continue
		}
		f.SetCoord(c.i, c.j, c.k)
	}
	_ = oldLgSize
}
