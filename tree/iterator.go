package tree

import "github.com/papaver/nkhive/bitops"

type setItem[T comparable] struct {
	i, j, k int32
	v       T
}

// SetIterator is a forward iterator over every set voxel across all 8
// octants, visited in quadrant order 0..7 (within a quadrant, in the
// node-branch-then-cell-linear order Node.WalkSet produces). A Fill root
// contributes one entry per coordinate in its bounds, matching §4.4's
// "bounded-region iterator yielding the fill value" wording; a Branching
// root contributes only its actually-set voxels.
type SetIterator[T comparable] struct {
	items []setItem[T]
	idx   int
}

// SetCursor constructs the union iterator as a *SetIterator cursor (the
// range-over-func form is Tree.SetIterator). It materializes eagerly: for
// a deeply filled tree this trades memory for a simple, verifiably
// correct traversal order.
func (t *Tree[T]) SetCursor() *SetIterator[T] {
	it := &SetIterator[T]{idx: -1}
	for q := uint8(0); q < 8; q++ {
		root := t.roots[q]
		if root.IsEmpty() {
			continue
		}
		si, sj, sk := bitops.QuadrantSigns(q)
		root.WalkSet(func(i, j, k uint32, v T) {
			it.items = append(it.items, setItem[T]{
				i: bitops.FromOctantLocal(i, si < 0),
				j: bitops.FromOctantLocal(j, sj < 0),
				k: bitops.FromOctantLocal(k, sk < 0),
				v: v,
			})
		})
	}
	return it
}

// Next advances the iterator; it returns false once exhausted.
func (it *SetIterator[T]) Next() bool {
	if it.idx+1 >= len(it.items) {
		return false
	}
	it.idx++
	return true
}

// Coords returns the current position's signed index coordinates.
func (it *SetIterator[T]) Coords() (i, j, k int32) {
	cur := it.items[it.idx]
	return cur.i, cur.j, cur.k
}

// Value returns the current position's value.
func (it *SetIterator[T]) Value() T {
	return it.items[it.idx].v
}
