// Package tree implements Tree: eight independently-growing Node roots,
// one per signed octant, giving the hive unbounded signed-coordinate
// extent without ever touching the seven roots a write doesn't need.
//
// Grounded on bart/barttable.go's root-level dispatch (one routing layer
// over a fixed small set of roots, each grown or replaced independently)
// and the original nkhive C++ Tree.hpp/Tree.cpp for the octant math
// (quadrant code, quadrant_split, growth-by-reparenting) which is
// language-neutral and carried here unchanged in meaning.
package tree

import (
	"iter"

	"github.com/papaver/nkhive/bitops"
	"github.com/papaver/nkhive/bounds"
	"github.com/papaver/nkhive/node"
	"github.com/papaver/nkhive/stamp"
)

// Tree holds the eight octant roots. root[q] is never nil; an empty
// octant is a level-1 empty branching node.
type Tree[T comparable] struct {
	lgBranching  uint
	lgCellDim    uint
	defaultValue T
	roots        [8]*node.Node[T]
	maxDim       [8]uint32
}

// New constructs a Tree with eight fresh level-1 empty branching roots.
func New[T comparable](lgBranching, lgCellDim uint, defaultValue T) *Tree[T] {
	t := &Tree[T]{lgBranching: lgBranching, lgCellDim: lgCellDim, defaultValue: defaultValue}
	for q := 0; q < 8; q++ {
		t.roots[q] = node.New[T](1, lgBranching, lgCellDim, defaultValue, false)
		t.maxDim[q] = t.roots[q].MaxDim()
	}
	return t
}

// LgBranching returns the branching factor exponent shared by every root.
func (t *Tree[T]) LgBranching() uint { return t.lgBranching }

// LgCellDim returns the leaf cell size exponent shared by every root.
func (t *Tree[T]) LgCellDim() uint { return t.lgCellDim }

// DefaultValue returns the tree-wide default value for unset voxels.
func (t *Tree[T]) DefaultValue() T { return t.defaultValue }

// local converts a signed coordinate triple to its quadrant code and
// unsigned octant-local coordinates.
func local(i, j, k int32) (q uint8, li, lj, lk uint32) {
	q = bitops.Quadrant(i, j, k)
	return q, bitops.ToOctantLocal(i), bitops.ToOctantLocal(j), bitops.ToOctantLocal(k)
}

// Get returns the value at signed coordinate (i,j,k).
func (t *Tree[T]) Get(i, j, k int32) T {
	q, li, lj, lk := local(i, j, k)
	if li >= t.maxDim[q] || lj >= t.maxDim[q] || lk >= t.maxDim[q] {
		return t.defaultValue
	}
	return t.roots[q].Get(li, lj, lk)
}

// grow repeatedly deepens root[q] until it covers (lx,ly,lz); growth never
// copies the surviving subtree's voxels, only reparents it as branch 0 of
// a taller root.
func (t *Tree[T]) grow(q uint8, lx, ly, lz uint32) {
	for lx >= t.maxDim[q] || ly >= t.maxDim[q] || lz >= t.maxDim[q] {
		old := t.roots[q]
		taller := node.New[T](old.Level()+1, t.lgBranching, t.lgCellDim, t.defaultValue, false)
		if !old.IsEmpty() {
			taller.SetSubtree(old)
		}
		t.roots[q] = taller
		t.maxDim[q] = taller.MaxDim()
	}
}

// growToCover grows root[q] until maxCoord (inclusive) lies inside it.
func (t *Tree[T]) growToCover(q uint8, maxCoord uint32) {
	t.grow(q, maxCoord, maxCoord, maxCoord)
}

// Update computes op(Get(i,j,k), v) and writes the result, growing the
// owning root first if needed.
func (t *Tree[T]) Update(i, j, k int32, v T, op func(old, v T) T) error {
	q, li, lj, lk := local(i, j, k)
	t.grow(q, li, lj, lk)
	return t.roots[q].Update(li, lj, lk, v, op)
}

// Set writes v at signed coordinate (i,j,k).
func (t *Tree[T]) Set(i, j, k int32, v T) error {
	return t.Update(i, j, k, v, func(_, v T) T { return v })
}

// Unset clears the voxel at (i,j,k), reparenting default within the
// touched subtree (Node.Unset handles this; Tree's own default_value
// is unaffected).
func (t *Tree[T]) Unset(i, j, k int32) error {
	q, li, lj, lk := local(i, j, k)
	if li >= t.maxDim[q] || lj >= t.maxDim[q] || lk >= t.maxDim[q] {
		return nil
	}
	return t.roots[q].Unset(li, lj, lk, t.defaultValue)
}

// ComputeSetBounds iterates the non-empty octants and returns the tight
// signed box covering every set voxel, and whether any voxel is set.
func (t *Tree[T]) ComputeSetBounds() (bounds.SignedBox, bool) {
	var out bounds.SignedBox
	any := false
	for q := uint8(0); q < 8; q++ {
		rootBounds, ok := t.roots[q].ComputeSetBounds()
		if !ok {
			continue
		}
		si, sj, sk := bitops.QuadrantSigns(q)
		signed := quadrantBoxToSigned(rootBounds, si, sj, sk)
		if !any {
			out = signed
			any = true
		} else {
			out = out.Union(signed)
		}
	}
	return out, any
}

// quadrantBoxToSigned converts an octant-local unsigned box to signed
// index space by flipping each axis whose sign multiplier is negative:
// FromOctantLocal(local-1, true) for the far corner, FromOctantLocal(0..)
// for the near one, preserving the half-open [min,max) convention.
func quadrantBoxToSigned(b bounds.Box, si, sj, sk int32) bounds.SignedBox {
	axis := func(minV, maxV uint32, sign int32) (int32, int32) {
		if sign > 0 {
			return int32(minV), int32(maxV)
		}
		// Local coordinates negate: local l maps to signed -(l+1), so
		// the half-open [minV,maxV) covers signed [-maxV, -minV-1],
		// i.e. the half-open range [-maxV, -minV).
		return -int32(maxV), -int32(minV)
	}
	minX, maxX := axis(b.Min.X, b.Max.X, si)
	minY, maxY := axis(b.Min.Y, b.Max.Y, sj)
	minZ, maxZ := axis(b.Min.Z, b.Max.Z, sk)
	return bounds.SignedBox{
		Min: bounds.SignedVec3{X: minX, Y: minY, Z: minZ},
		Max: bounds.SignedVec3{X: maxX, Y: maxY, Z: maxZ},
	}
}

// quadrantSplit partitions a signed box across the (up to 8) octants it
// overlaps. It returns a bitmask of touched quadrants and, per quadrant,
// the clamped signed sub-box. The algorithm walks the box's 8 corners,
// classifies each by quadrant, and clamps a per-quadrant accumulator at
// that corner using Bounds' 8-corner clamp table; translating max by -1
// before classification (and +1 back after) avoids a corner exactly on a
// quadrant boundary plane being misclassified into the wrong quadrant.
func quadrantSplit(b bounds.SignedBox) (mask uint8, quads [8]bounds.SignedBox) {
	adj := bounds.SignedBox{Min: b.Min, Max: bounds.SignedVec3{X: b.Max.X - 1, Y: b.Max.Y - 1, Z: b.Max.Z - 1}}

	visited := [8]bool{}
	for code := uint8(0); code < 8; code++ {
		corner := adj.Corner(code)
		q := bitops.Quadrant(corner.X, corner.Y, corner.Z)
		if !visited[q] {
			quads[q] = quadrantOrigin(q)
			visited[q] = true
			mask |= 1 << q
		}
		quads[q].SetCorner(code, corner)
	}

	for q := uint8(0); q < 8; q++ {
		if visited[q] {
			quads[q].Max.X++
			quads[q].Max.Y++
			quads[q].Max.Z++
		}
	}
	return mask, quads
}

// quadrantOrigin returns the widest possible signed box for quadrant q,
// used as the starting accumulator for quadrantSplit's per-corner clamp.
func quadrantOrigin(q uint8) bounds.SignedBox {
	axis := func(negative bool) (int32, int32) {
		if negative {
			return -(1 << 30), -1
		}
		return 0, 1 << 30
	}
	minX, maxX := axis(q&4 != 0)
	minY, maxY := axis(q&2 != 0)
	minZ, maxZ := axis(q&1 != 0)
	return bounds.SignedBox{
		Min: bounds.SignedVec3{X: minX, Y: minY, Z: minZ},
		Max: bounds.SignedVec3{X: maxX, Y: maxY, Z: maxZ},
	}
}

// Stamp applies src at position pos, splitting the write across whichever
// octants the translated source bounds overlap.
func (t *Tree[T]) Stamp(src stamp.Source[T], pos bounds.SignedVec3) error {
	b := src.Bounds().TranslateSigned(pos)
	mask, quads := quadrantSplit(b)

	for q := uint8(0); q < 8; q++ {
		if mask&(1<<q) == 0 {
			continue
		}
		si, sj, sk := bitops.QuadrantSigns(q)
		qb := quads[q]
		unsignedBounds := signedQuadrantBoxToLocal(qb, si, sj, sk)

		maxCoord := maxU32(unsignedBounds.Max.X, maxU32(unsignedBounds.Max.Y, unsignedBounds.Max.Z))
		if maxCoord > 0 {
			t.growToCover(q, maxCoord-1)
		}

		transform := [3]int32{si, sj, sk}
		// stamp_bounds starts as the octant-local unsigned bounds, then
		// translates by -(pos*transform): unlike qb (signed quadrant-space
		// coordinates), this stays in the same unsigned-local coordinate
		// system that node/cell recursion works in, so the offset carries
		// forward correctly through Node.Stamp's stamp_offset threading.
		stampBounds := bounds.SignedBox{
			Min: bounds.SignedVec3{
				X: int32(unsignedBounds.Min.X) - pos.X*transform[0],
				Y: int32(unsignedBounds.Min.Y) - pos.Y*transform[1],
				Z: int32(unsignedBounds.Min.Z) - pos.Z*transform[2],
			},
			Max: bounds.SignedVec3{
				X: int32(unsignedBounds.Max.X) - pos.X*transform[0],
				Y: int32(unsignedBounds.Max.Y) - pos.Y*transform[1],
				Z: int32(unsignedBounds.Max.Z) - pos.Z*transform[2],
			},
		}
		if err := t.roots[q].Stamp(src, stampBounds, unsignedBounds, transform); err != nil {
			return err
		}
	}
	return nil
}

// signedQuadrantBoxToLocal converts a quadrant's signed sub-box back to
// unsigned octant-local coordinates, the inverse of quadrantBoxToSigned.
func signedQuadrantBoxToLocal(b bounds.SignedBox, si, sj, sk int32) bounds.Box {
	axis := func(minV, maxV int32, sign int32) (uint32, uint32) {
		if sign > 0 {
			return uint32(minV), uint32(maxV)
		}
		return uint32(-maxV), uint32(-minV)
	}
	minX, maxX := axis(b.Min.X, b.Max.X, si)
	minY, maxY := axis(b.Min.Y, b.Max.Y, sj)
	minZ, maxZ := axis(b.Min.Z, b.Max.Z, sk)
	return bounds.Box{
		Min: bounds.Vec3{X: minX, Y: minY, Z: minZ},
		Max: bounds.Vec3{X: maxX, Y: maxY, Z: maxZ},
	}
}

// SetIterator yields every set voxel as a signed coordinate and its
// value, visiting octants in numeric order 0..7 and, within each
// octant, in the node-branch-then-cell-linear order Node.WalkSet
// already walks (spec.md §5's ordering guarantee).
func (t *Tree[T]) SetIterator() iter.Seq2[bounds.SignedVec3, T] {
	return func(yield func(bounds.SignedVec3, T) bool) {
		for q := uint8(0); q < 8; q++ {
			si, sj, sk := bitops.QuadrantSigns(q)
			stop := false
			t.roots[q].WalkSet(func(i, j, k uint32, v T) {
				if stop {
					return
				}
				p := bounds.SignedVec3{
					X: bitops.FromOctantLocal(i, si < 0),
					Y: bitops.FromOctantLocal(j, sj < 0),
					Z: bitops.FromOctantLocal(k, sk < 0),
				}
				if !yield(p, v) {
					stop = true
				}
			})
			if stop {
				return
			}
		}
	}
}

func maxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
