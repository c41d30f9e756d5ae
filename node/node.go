// Package node implements Node, the interior subdivided cube of a hive
// tree: a dense, bitset-guarded array of child branches (to Cells or to
// sub-Nodes), or a collapsed Fill representation covering its whole
// subtree in O(1) storage.
//
// Grounded directly on bart/internal/sparse/array256.go (the Array256
// bitset+Items coupling is exactly Node's branches array) and
// bart/bartnode.go's recursive get/insert/delete shape, generalized from
// a fixed 256-way byte stride to a configurable 2^lgBranching-way stride
// per axis (2^(3*lgBranching) slots total) and from bart's leaf values to
// a child union of Cell (level 1) or Node (level > 1), per the original
// nkhive C++ Node.hpp/Node.h.
package node

import (
	"github.com/papaver/nkhive/bitfield"
	"github.com/papaver/nkhive/bitops"
	"github.com/papaver/nkhive/bounds"
	"github.com/papaver/nkhive/cell"
	"github.com/papaver/nkhive/stamp"
)

// Node is an interior node of a hive tree. Exactly one of cellBranches
// (level == 1) or nodeBranches (level > 1) is populated when the node is
// in the Branching representation; both are nil when Fill.
type Node[T comparable] struct {
	level       uint
	lgBranching uint
	lgCellDim   uint
	value       T // default value (Branching) or fill value (Fill)
	bits        *bitfield.Field

	cellBranches []*cell.Cell[T]
	nodeBranches []*Node[T]
}

// New constructs a Node. asFill selects the collapsed Fill representation
// (value is the fill value, O(1) storage); otherwise the node starts
// empty-Branching (value is the default for unset voxels).
func New[T comparable](level, lgBranching, lgCellDim uint, value T, asFill bool) *Node[T] {
	if level < 1 {
		panic("node: level must be >= 1")
	}
	n := &Node[T]{
		level:       level,
		lgBranching: lgBranching,
		lgCellDim:   lgCellDim,
		value:       value,
		bits:        bitfield.New(lgBranching),
	}
	if asFill {
		n.bits.SetAll()
		return n
	}
	n.allocateBranches()
	return n
}

func (n *Node[T]) allocateBranches() {
	slots := int(bitops.CubeVolume(n.lgBranching))
	if n.level == 1 {
		n.cellBranches = make([]*cell.Cell[T], slots)
	} else {
		n.nodeBranches = make([]*Node[T], slots)
	}
}

// Level returns the node's level (1 for a node parenting Cells).
func (n *Node[T]) Level() uint { return n.level }

// LgBranching returns the branching factor exponent per axis.
func (n *Node[T]) LgBranching() uint { return n.lgBranching }

// LgCellDim returns the leaf cell size exponent.
func (n *Node[T]) LgCellDim() uint { return n.lgCellDim }

// LgChildDivisions returns log2 of the voxels spanned by one branch along
// one axis: (level-1)*lgBranching + lgCellDim.
func (n *Node[T]) LgChildDivisions() uint {
	return (n.level-1)*n.lgBranching + n.lgCellDim
}

// MaxDim returns the side of the entire node's subtree, 2^(lgCellDim +
// level*lgBranching).
func (n *Node[T]) MaxDim() uint32 {
	return uint32(1) << (n.lgCellDim + n.level*n.lgBranching)
}

// IsFill reports whether the node is collapsed into the Fill
// representation.
func (n *Node[T]) IsFill() bool {
	return n.cellBranches == nil && n.nodeBranches == nil
}

// DefaultValue returns the node's default value for unset voxels
// (Branching) or its fill value for the whole subtree (Fill) — the same
// underlying field serves both roles, selected by representation.
func (n *Node[T]) DefaultValue() T { return n.value }

// FillValue returns the fill value; only meaningful when IsFill.
func (n *Node[T]) FillValue() T { return n.value }

func (n *Node[T]) branchIndex(i, j, k uint32) uint64 {
	d := n.LgChildDivisions()
	return bitops.LinearIndex(i>>d, j>>d, k>>d, n.lgBranching)
}

func (n *Node[T]) childLocal(i, j, k uint32) (uint32, uint32, uint32) {
	d := n.LgChildDivisions()
	mask := (uint32(1) << d) - 1
	return i & mask, j & mask, k & mask
}

// Get returns the value at node-local coordinate (i,j,k).
func (n *Node[T]) Get(i, j, k uint32) T {
	if n.IsFill() {
		return n.value
	}
	branch := n.branchIndex(i, j, k)
	if !n.bits.Test(branch) {
		return n.value
	}
	li, lj, lk := n.childLocal(i, j, k)
	if n.level == 1 {
		return n.cellBranches[branch].Get(li, lj, lk)
	}
	return n.nodeBranches[branch].Get(li, lj, lk)
}

// materializeFill promotes a Fill node into Branching, preloading every
// slot with a child that is itself a fill (Cell constructed with both
// default and fill values at level 1; Node constructed with asFill=true
// at level > 1). newDefault becomes the materialized node's default for
// voxels logically outside any one child's purview — here it is simply
// recorded as the node's own default going forward.
func (n *Node[T]) materializeFill(newDefault T) {
	fillValue := n.value
	n.allocateBranches()
	n.bits.SetAll()
	slots := int(bitops.CubeVolume(n.lgBranching))
	if n.level == 1 {
		for s := 0; s < slots; s++ {
			n.cellBranches[s] = cell.NewFilled(n.lgCellDim, newDefault, fillValue)
		}
	} else {
		for s := 0; s < slots; s++ {
			n.nodeBranches[s] = New[T](n.level-1, n.lgBranching, n.lgCellDim, fillValue, true)
		}
	}
	n.value = newDefault
}

// Set writes v at node-local coordinate (i,j,k).
func (n *Node[T]) Set(i, j, k uint32, v T) error {
	if n.IsFill() {
		if v == n.value {
			return nil
		}
		n.materializeFill(n.value)
	}

	branch := n.branchIndex(i, j, k)
	li, lj, lk := n.childLocal(i, j, k)

	wasSet := n.bits.Test(branch)
	n.bits.Set(branch)

	if n.level == 1 {
		if !wasSet {
			n.cellBranches[branch] = cell.New(n.lgCellDim, n.value)
		}
		return n.cellBranches[branch].Set(bitops.LinearIndex(li, lj, lk, n.lgCellDim), v)
	}

	if !wasSet {
		n.nodeBranches[branch] = New[T](n.level-1, n.lgBranching, n.lgCellDim, n.value, false)
	}
	return n.nodeBranches[branch].Set(li, lj, lk, v)
}

// Update computes op(Get(i,j,k), v) and writes the result, descending
// lazily: a Fill node applies op directly to its fill value and delegates
// to Set (which only materializes if the result differs); a Branching
// node ensures the branch exists and recurses.
func (n *Node[T]) Update(i, j, k uint32, v T, op func(old, v T) T) error {
	if n.IsFill() {
		return n.Set(i, j, k, op(n.value, v))
	}

	branch := n.branchIndex(i, j, k)
	li, lj, lk := n.childLocal(i, j, k)

	if n.level == 1 {
		if !n.bits.Test(branch) {
			n.bits.Set(branch)
			n.cellBranches[branch] = cell.New(n.lgCellDim, n.value)
		}
		linear := bitops.LinearIndex(li, lj, lk, n.lgCellDim)
		return n.cellBranches[branch].Update(linear, v, op)
	}

	if !n.bits.Test(branch) {
		n.bits.Set(branch)
		n.nodeBranches[branch] = New[T](n.level-1, n.lgBranching, n.lgCellDim, n.value, false)
	}
	return n.nodeBranches[branch].Update(li, lj, lk, v, op)
}

// Unset clears the voxel at (i,j,k), reparenting default to d for any
// subtree materialized by this call. After the recursive unset, if the
// touched child becomes empty it is deallocated and its branch bit
// cleared.
func (n *Node[T]) Unset(i, j, k uint32, d T) error {
	if n.IsFill() {
		n.materializeFill(d)
	}
	n.value = d

	branch := n.branchIndex(i, j, k)
	if !n.bits.Test(branch) {
		return nil
	}
	li, lj, lk := n.childLocal(i, j, k)

	if n.level == 1 {
		c := n.cellBranches[branch]
		if err := c.Unset(bitops.LinearIndex(li, lj, lk, n.lgCellDim)); err != nil {
			return err
		}
		if c.IsEmpty() {
			n.cellBranches[branch] = nil
			n.bits.Clear(branch)
		}
		return nil
	}

	child := n.nodeBranches[branch]
	if err := child.Unset(li, lj, lk, d); err != nil {
		return err
	}
	if child.IsEmpty() {
		n.nodeBranches[branch] = nil
		n.bits.Clear(branch)
	}
	return nil
}

// IsEmpty reports whether the node's bitfield has no bits set. A Fill
// node is never considered empty.
func (n *Node[T]) IsEmpty() bool {
	if n.IsFill() {
		return false
	}
	return n.bits.IsEmpty()
}

// SetSubtree installs child at branch 0, used by Tree growth to reparent
// a surviving root under a new, deeper root without copying voxels.
// Precondition: n is Branching and slot 0 is empty; child is non-empty.
func (n *Node[T]) SetSubtree(child *Node[T]) {
	if n.IsFill() {
		panic("node: SetSubtree on a Fill node")
	}
	if n.bits.Test(0) {
		panic("node: SetSubtree: slot 0 already occupied")
	}
	if child.IsEmpty() {
		panic("node: SetSubtree: child must be non-empty")
	}
	n.bits.Set(0)
	n.nodeBranches[0] = child
}

// InstallCell installs a pre-built Cell leaf at the node-local origin
// offset (branch-aligned at every level walked), used when replaying a
// hierarchical-group Cell leaf. It descends level by level, allocating
// intermediate Branching nodes (materializing Fill parents first) until
// it reaches the level-1 node owning the branch, then installs c
// directly rather than merging it voxel by voxel.
func (n *Node[T]) InstallCell(offset bounds.Vec3, c *cell.Cell[T]) error {
	if n.IsFill() {
		n.materializeFill(n.value)
	}
	branch := n.branchIndex(offset.X, offset.Y, offset.Z)
	if n.level == 1 {
		n.bits.Set(branch)
		n.cellBranches[branch] = c
		return nil
	}
	li, lj, lk := n.childLocal(offset.X, offset.Y, offset.Z)
	if !n.bits.Test(branch) {
		n.bits.Set(branch)
		n.nodeBranches[branch] = New[T](n.level-1, n.lgBranching, n.lgCellDim, n.value, false)
	}
	return n.nodeBranches[branch].InstallCell(bounds.Vec3{X: li, Y: lj, Z: lk}, c)
}

// InstallFillSubtree installs a collapsed Fill subtree of the given
// level at the node-local origin offset, used when replaying a
// hierarchical-group Fill-node leaf. It descends until the branch one
// level up from the target is reached, then replaces that branch
// wholesale with a new Fill node instead of recursing into it.
// Precondition: level < n.level.
func (n *Node[T]) InstallFillSubtree(offset bounds.Vec3, level uint, fillValue T) error {
	if n.IsFill() {
		n.materializeFill(n.value)
	}
	branch := n.branchIndex(offset.X, offset.Y, offset.Z)
	if n.level-1 == level {
		n.bits.Set(branch)
		n.nodeBranches[branch] = New[T](level, n.lgBranching, n.lgCellDim, fillValue, true)
		return nil
	}
	li, lj, lk := n.childLocal(offset.X, offset.Y, offset.Z)
	if !n.bits.Test(branch) {
		n.bits.Set(branch)
		n.nodeBranches[branch] = New[T](n.level-1, n.lgBranching, n.lgCellDim, n.value, false)
	}
	return n.nodeBranches[branch].InstallFillSubtree(bounds.Vec3{X: li, Y: lj, Z: lk}, level, fillValue)
}

// WalkBranches calls fn once for every populated branch, in branch-index
// order, passing the branch's node-local coordinates and its child: a
// *cell.Cell[T] at level 1, a *Node[T] at level > 1 (the other is always
// nil). A Fill node has no populated branches and is never walked; callers
// wanting to treat a Fill subtree as one leaf should check IsFill first.
func (n *Node[T]) WalkBranches(fn func(bi, bj, bk uint32, cellChild *cell.Cell[T], nodeChild *Node[T])) {
	if n.IsFill() {
		return
	}
	for it := n.bits.SetIterator(); it.Next(); {
		bi, bj, bk := it.Coords()
		if n.level == 1 {
			fn(bi, bj, bk, n.cellBranches[it.Index()], nil)
		} else {
			fn(bi, bj, bk, nil, n.nodeBranches[it.Index()])
		}
	}
}

// WalkSet calls fn for every set voxel in the subtree, in node-local
// coordinates, with its value. A Fill node has no bitfield to consult:
// every coordinate in its MaxDim cube reads as the fill value, so it is
// enumerated directly.
func (n *Node[T]) WalkSet(fn func(i, j, k uint32, v T)) {
	if n.IsFill() {
		d := n.MaxDim()
		for k := uint32(0); k < d; k++ {
			for j := uint32(0); j < d; j++ {
				for i := uint32(0); i < d; i++ {
					fn(i, j, k, n.value)
				}
			}
		}
		return
	}

	childDim := uint32(1) << n.LgChildDivisions()
	for it := n.bits.SetIterator(); it.Next(); {
		bi, bj, bk := it.Coords()
		offI, offJ, offK := bi*childDim, bj*childDim, bk*childDim
		if n.level == 1 {
			n.cellBranches[it.Index()].WalkSet(func(i, j, k uint32, v T) {
				fn(offI+i, offJ+j, offK+k, v)
			})
		} else {
			n.nodeBranches[it.Index()].WalkSet(func(i, j, k uint32, v T) {
				fn(offI+i, offJ+j, offK+k, v)
			})
		}
	}
}

// ComputeSetBounds returns the tight half-open box (in node-local voxel
// coordinates) covering every set voxel in the subtree, and whether any
// voxel is set.
func (n *Node[T]) ComputeSetBounds() (bounds.Box, bool) {
	if n.IsFill() {
		d := n.MaxDim()
		return bounds.Box{Max: bounds.Vec3{X: d, Y: d, Z: d}}, true
	}

	childDim := uint32(1) << n.LgChildDivisions()
	var out bounds.Box
	any := false

	for it := n.bits.SetIterator(); it.Next(); {
		bi, bj, bk := it.Coords()
		var sub bounds.Box
		var ok bool
		if n.level == 1 {
			sub, ok = n.cellBranches[it.Index()].ComputeSetBounds()
		} else {
			sub, ok = n.nodeBranches[it.Index()].ComputeSetBounds()
		}
		if !ok {
			continue
		}
		offset := bounds.Vec3{X: bi * childDim, Y: bj * childDim, Z: bk * childDim}
		sub = sub.Translate(offset)
		if !any {
			out = sub
			any = true
		} else {
			out = out.Union(sub)
		}
	}
	return out, any
}

// Stamp applies src over nodeBounds (node-local voxel coordinates),
// splitting the write across whichever branches it overlaps.
func (n *Node[T]) Stamp(src stamp.Source[T], srcBounds bounds.SignedBox, nodeBounds bounds.Box, transform [3]int32) error {
	if n.IsFill() {
		n.materializeFill(n.value)
	}

	d := n.LgChildDivisions()
	childDim := uint32(1) << d

	// Branch-coordinate bounds intersecting nodeBounds, excluding the
	// half-open edge: subtract a unit from max before converting to
	// branch coordinates, then add it back.
	adjMax := bounds.Vec3{X: nodeBounds.Max.X - 1, Y: nodeBounds.Max.Y - 1, Z: nodeBounds.Max.Z - 1}
	branchMin := bounds.Vec3{X: nodeBounds.Min.X >> d, Y: nodeBounds.Min.Y >> d, Z: nodeBounds.Min.Z >> d}
	branchMax := bounds.Vec3{X: (adjMax.X >> d) + 1, Y: (adjMax.Y >> d) + 1, Z: (adjMax.Z >> d) + 1}

	// Offset between the threaded stamp bounds and this node's own bounds;
	// re-applied to each child's intersection below so stamp-space
	// coordinates accumulate correctly across recursion levels instead of
	// being recomputed from node-local bounds alone.
	stampOffset := bounds.SignedVec3{
		X: srcBounds.Min.X - int32(nodeBounds.Min.X),
		Y: srcBounds.Min.Y - int32(nodeBounds.Min.Y),
		Z: srcBounds.Min.Z - int32(nodeBounds.Min.Z),
	}

	for bk := branchMin.Z; bk < branchMax.Z; bk++ {
		for bj := branchMin.Y; bj < branchMax.Y; bj++ {
			for bi := branchMin.X; bi < branchMax.X; bi++ {
				childBounds := bounds.Box{
					Min: bounds.Vec3{X: bi * childDim, Y: bj * childDim, Z: bk * childDim},
					Max: bounds.Vec3{X: (bi + 1) * childDim, Y: (bj + 1) * childDim, Z: (bk + 1) * childDim},
				}
				stampIntersection := childBounds.Intersection(nodeBounds)
				if stampIntersection.Empty() {
					continue
				}

				branch := bitops.LinearIndex(bi, bj, bk, n.lgBranching)
				if !n.bits.Test(branch) {
					n.bits.Set(branch)
					if n.level == 1 {
						n.cellBranches[branch] = cell.New(n.lgCellDim, n.value)
					} else {
						n.nodeBranches[branch] = New[T](n.level-1, n.lgBranching, n.lgCellDim, n.value, false)
					}
				}

				localMin := bounds.Vec3{
					X: stampIntersection.Min.X - childBounds.Min.X,
					Y: stampIntersection.Min.Y - childBounds.Min.Y,
					Z: stampIntersection.Min.Z - childBounds.Min.Z,
				}
				localMax := bounds.Vec3{
					X: stampIntersection.Max.X - childBounds.Min.X,
					Y: stampIntersection.Max.Y - childBounds.Min.Y,
					Z: stampIntersection.Max.Z - childBounds.Min.Z,
				}
				localBounds := bounds.Box{Min: localMin, Max: localMax}

				// Intersection re-expressed in stamp space: the same
				// offset carried from srcBounds at this node, applied to
				// this child's node-local intersection.
				stampMin := bounds.SignedVec3{
					X: stampOffset.X + int32(stampIntersection.Min.X),
					Y: stampOffset.Y + int32(stampIntersection.Min.Y),
					Z: stampOffset.Z + int32(stampIntersection.Min.Z),
				}
				stampMax := bounds.SignedVec3{
					X: stampOffset.X + int32(stampIntersection.Max.X),
					Y: stampOffset.Y + int32(stampIntersection.Max.Y),
					Z: stampOffset.Z + int32(stampIntersection.Max.Z),
				}

				if n.level == 1 {
					// Signed stamp-bounds: multiply the stamp-space
					// intersection corners by transform and take
					// min/max.
					c0x := stampMin.X * transform[0]
					c1x := stampMax.X * transform[0]
					c0y := stampMin.Y * transform[1]
					c1y := stampMax.Y * transform[1]
					c0z := stampMin.Z * transform[2]
					c1z := stampMax.Z * transform[2]
					signedBounds := bounds.SignedBox{
						Min: bounds.SignedVec3{X: minI32(c0x, c1x), Y: minI32(c0y, c1y), Z: minI32(c0z, c1z)},
						Max: bounds.SignedVec3{X: maxI32(c0x, c1x), Y: maxI32(c0y, c1y), Z: maxI32(c0z, c1z)},
					}
					if err := n.cellBranches[branch].Stamp(src, signedBounds, localBounds, transform); err != nil {
						return err
					}
				} else {
					stampBounds := bounds.SignedBox{Min: stampMin, Max: stampMax}
					if err := n.nodeBranches[branch].Stamp(src, stampBounds, localBounds, transform); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func minI32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func maxI32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
