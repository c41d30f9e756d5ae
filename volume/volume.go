// Package volume implements Volume: the signed-index façade over Tree
// that adds voxel/local/index space conversions, an attribute
// collection, and whole-volume IO (spec.md §4.5).
//
// Grounded on bart/table.go's thin delegation style (Table barely more
// than a routing layer over its root node) and the original's
// Volume.hpp, which plays the identical role over Tree in nkhive.
package volume

import (
	"iter"

	"github.com/papaver/nkhive/attrs"
	"github.com/papaver/nkhive/bounds"
	"github.com/papaver/nkhive/stamp"
	"github.com/papaver/nkhive/tree"
	"github.com/papaver/nkhive/xform"
)

// Volume wraps a Tree with space conversions and an attribute
// collection. It exclusively owns both, plus any transient IO handles
// opened during a read/write call (spec.md §5).
type Volume[T comparable] struct {
	tree  *tree.Tree[T]
	xf    xform.Xform
	attrs *attrs.Collection
}

// New constructs an empty Volume with the given branching/cell-size
// exponents, default voxel value, and local transform.
func New[T comparable](lgBranching, lgCellDim uint, defaultValue T, res, kernelOffset xform.Vec3) *Volume[T] {
	return &Volume[T]{
		tree:  tree.New[T](lgBranching, lgCellDim, defaultValue),
		xf:    xform.New(res, kernelOffset),
		attrs: attrs.New(),
	}
}

// Tree returns the underlying Tree, for callers (such as interp) that
// only need read access.
func (v *Volume[T]) Tree() *tree.Tree[T] { return v.tree }

// Xform returns the volume's local affine transform.
func (v *Volume[T]) Xform() xform.Xform { return v.xf }

// Get returns the value at signed voxel coordinate (i,j,k).
func (v *Volume[T]) Get(i, j, k int32) T { return v.tree.Get(i, j, k) }

// Set writes value at (i,j,k).
func (v *Volume[T]) Set(i, j, k int32, value T) error { return v.tree.Set(i, j, k, value) }

// Unset clears (i,j,k) back to the tree's default value.
func (v *Volume[T]) Unset(i, j, k int32) error { return v.tree.Unset(i, j, k) }

// Update computes op(Get(i,j,k), value) and writes the result.
func (v *Volume[T]) Update(i, j, k int32, value T, op func(old, v T) T) error {
	return v.tree.Update(i, j, k, value, op)
}

// Stamp applies src at position pos.
func (v *Volume[T]) Stamp(src stamp.Source[T], pos bounds.SignedVec3) error {
	return v.tree.Stamp(src, pos)
}

// SetIterator yields every set voxel as a signed coordinate and value.
func (v *Volume[T]) SetIterator() iter.Seq2[bounds.SignedVec3, T] {
	return v.tree.SetIterator()
}

// VoxelToIndex converts a continuous voxel-space position to a signed
// index coordinate: floor(voxel - kernel_offset), per axis.
func (v *Volume[T]) VoxelToIndex(voxel xform.Vec3) xform.IndexVec3 { return v.xf.VoxelToIndex(voxel) }

// IndexToVoxel converts a signed index coordinate back to voxel space:
// index + kernel_offset.
func (v *Volume[T]) IndexToVoxel(index xform.IndexVec3) xform.Vec3 { return v.xf.IndexToVoxel(index) }

// VoxelToLocal scales a voxel-space position into local space.
func (v *Volume[T]) VoxelToLocal(voxel xform.Vec3) xform.Vec3 { return v.xf.VoxelToLocal(voxel) }

// LocalToVoxel is the inverse of VoxelToLocal.
func (v *Volume[T]) LocalToVoxel(local xform.Vec3) xform.Vec3 { return v.xf.LocalToVoxel(local) }

// ComputeSetBounds returns the tight signed index box covering every set
// voxel, and whether any voxel is set.
func (v *Volume[T]) ComputeSetBounds() (bounds.SignedBox, bool) {
	return v.tree.ComputeSetBounds()
}

// ComputeSetBoundsLocal returns the same box as ComputeSetBounds,
// converted corner-by-corner through index -> voxel -> local space.
func (v *Volume[T]) ComputeSetBoundsLocal() (min, max xform.Vec3, ok bool) {
	b, any := v.tree.ComputeSetBounds()
	if !any {
		return xform.Vec3{}, xform.Vec3{}, false
	}
	toLocal := func(idx bounds.SignedVec3) xform.Vec3 {
		return v.xf.VoxelToLocal(v.xf.IndexToVoxel(xform.IndexVec3{X: idx.X, Y: idx.Y, Z: idx.Z}))
	}
	return toLocal(b.Min), toLocal(b.Max), true
}

// Attrs returns the volume's attribute collection.
func (v *Volume[T]) Attrs() *attrs.Collection { return v.attrs }

// Name returns the mandatory `name` attribute.
func (v *Volume[T]) Name() string { return v.attrs.Name() }

// SetName sets the mandatory `name` attribute.
func (v *Volume[T]) SetName(name string) error { return v.attrs.SetName(name) }

// Description returns the mandatory `description` attribute.
func (v *Volume[T]) Description() string { return v.attrs.Description() }

// SetDescription sets the mandatory `description` attribute.
func (v *Volume[T]) SetDescription(desc string) error { return v.attrs.SetDescription(desc) }

// LgBranching returns the tree's branching factor exponent.
func (v *Volume[T]) LgBranching() uint { return v.tree.LgBranching() }

// LgCellDim returns the tree's leaf cell size exponent.
func (v *Volume[T]) LgCellDim() uint { return v.tree.LgCellDim() }

// DefaultValue returns the tree-wide default value.
func (v *Volume[T]) DefaultValue() T { return v.tree.DefaultValue() }
