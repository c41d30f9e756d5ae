// Package bitops provides the bit-fiddling primitives shared by bitfield,
// cell, node and tree: popcount, first/last set bit, power-of-two rounding,
// and the linear-index <-> (i,j,k) packing used throughout the hive.
//
// Studied bart/internal/art/base_index.go and bart/internal/bitset inside
// out and generalized the same inverse-function style to runtime-sized
// cubes instead of bart's fixed 8-bit strides.
package bitops

import "math/bits"

// PopCount returns the number of set bits in w.
func PopCount(w uint64) int {
	return bits.OnesCount64(w)
}

// FirstSet returns the index of the least significant set bit in w, and
// whether any bit is set at all.
func FirstSet(w uint64) (idx int, ok bool) {
	if w == 0 {
		return 0, false
	}
	return bits.TrailingZeros64(w), true
}

// LastSet returns the index of the most significant set bit in w, and
// whether any bit is set at all.
func LastSet(w uint64) (idx int, ok bool) {
	if w == 0 {
		return 0, false
	}
	return 63 - bits.LeadingZeros64(w), true
}

// IsPow2 reports whether n is an exact power of two.
func IsPow2(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// CeilPow2 rounds n up to the next power of two (n itself if already one).
func CeilPow2(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len64(n-1)
}

// Log2Ceil returns ceil(log2(n)) for n >= 1.
func Log2Ceil(n uint64) uint {
	if n <= 1 {
		return 0
	}
	return uint(bits.Len64(n - 1))
}

// LinearIndex packs cube-local coordinates (i,j,k), each in [0, 2^lgSize),
// into the linear index i + j*2^lgSize + k*4^lgSize.
func LinearIndex(i, j, k uint32, lgSize uint) uint64 {
	s := uint64(lgSize)
	return uint64(i) | uint64(j)<<s | uint64(k)<<(2*s)
}

// Coords unpacks a linear index produced by LinearIndex back into (i,j,k).
func Coords(linear uint64, lgSize uint) (i, j, k uint32) {
	s := uint64(lgSize)
	mask := (uint64(1) << s) - 1
	i = uint32(linear & mask)
	j = uint32((linear >> s) & mask)
	k = uint32((linear >> (2 * s)) & mask)
	return
}

// CubeVolume returns 8^lgSize, the number of voxels in a cube of side 2^lgSize.
func CubeVolume(lgSize uint) uint64 {
	return uint64(1) << (3 * lgSize)
}

// SignBit extracts the sign bit (0 = non-negative, 1 = negative) of a signed
// 32-bit coordinate, used to build the 3-bit quadrant code q =
// (signBit(i)<<2)|(signBit(j)<<1)|signBit(k).
func SignBit(v int32) uint8 {
	if v < 0 {
		return 1
	}
	return 0
}

// Quadrant computes the 3-bit octant code for a signed coordinate triple.
func Quadrant(i, j, k int32) uint8 {
	return SignBit(i)<<2 | SignBit(j)<<1 | SignBit(k)
}

// QuadrantSigns returns the per-axis sign multiplier (+1/-1) implied by a
// quadrant code, i.e. the inverse of Quadrant's sign-bit extraction.
func QuadrantSigns(q uint8) (si, sj, sk int32) {
	sign := func(bit uint8) int32 {
		if q&bit != 0 {
			return -1
		}
		return 1
	}
	return sign(4), sign(2), sign(1)
}

// ToOctantLocal converts a signed coordinate to its unsigned octant-local
// equivalent: the positive octant uses offset 0, negated axes subtract 1
// after taking the absolute value so that -1 maps to local 0.
func ToOctantLocal(v int32) uint32 {
	if v < 0 {
		return uint32(-v - 1)
	}
	return uint32(v)
}

// FromOctantLocal is the inverse of ToOctantLocal for a given sign.
func FromOctantLocal(local uint32, negative bool) int32 {
	if negative {
		return -int32(local) - 1
	}
	return int32(local)
}
