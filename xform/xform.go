// Package xform implements the small local affine transform consumed by
// Volume (spec.md §4.5): a per-axis scale between voxel space and local
// space, plus a kernel offset between voxel space and signed index space.
//
// Grounded on the original's Volume.hpp voxelToIndex/indexToVoxel/
// voxelToLocal/localToVoxel free functions (LocalXform.h itself was not
// retrieved, so the scale/offset formulas here follow spec.md §4.5's
// prose directly).
package xform

import "math"

// Vec3 is a continuous 3-vector in either voxel or local space.
type Vec3 struct {
	X, Y, Z float64
}

// IndexVec3 is a signed integer 3-vector in tree-index space.
type IndexVec3 struct {
	X, Y, Z int32
}

// Xform holds the per-axis voxel-to-local scale and the voxel-to-index
// kernel offset.
type Xform struct {
	Res          Vec3
	KernelOffset Vec3
}

// New constructs an Xform with the given resolution and kernel offset.
func New(res, kernelOffset Vec3) Xform {
	return Xform{Res: res, KernelOffset: kernelOffset}
}

// VoxelToIndex floors (v - kernel_offset) per axis into signed index space.
func (x Xform) VoxelToIndex(v Vec3) IndexVec3 {
	return IndexVec3{
		X: int32(math.Floor(v.X - x.KernelOffset.X)),
		Y: int32(math.Floor(v.Y - x.KernelOffset.Y)),
		Z: int32(math.Floor(v.Z - x.KernelOffset.Z)),
	}
}

// IndexToVoxel adds the kernel offset back to an index coordinate.
func (x Xform) IndexToVoxel(i IndexVec3) Vec3 {
	return Vec3{
		X: float64(i.X) + x.KernelOffset.X,
		Y: float64(i.Y) + x.KernelOffset.Y,
		Z: float64(i.Z) + x.KernelOffset.Z,
	}
}

// VoxelToLocal scales voxel-space coordinates into local space.
func (x Xform) VoxelToLocal(v Vec3) Vec3 {
	return Vec3{X: v.X * x.Res.X, Y: v.Y * x.Res.Y, Z: v.Z * x.Res.Z}
}

// LocalToVoxel is the inverse of VoxelToLocal.
func (x Xform) LocalToVoxel(l Vec3) Vec3 {
	return Vec3{X: l.X / x.Res.X, Y: l.Y / x.Res.Y, Z: l.Z / x.Res.Z}
}

// ContinuousIndex returns v - kernel_offset without flooring, the
// continuous position interpolation samples against: interp's cubic and
// linear kernels need the fractional part VoxelToIndex discards.
func (x Xform) ContinuousIndex(v Vec3) Vec3 {
	return Vec3{X: v.X - x.KernelOffset.X, Y: v.Y - x.KernelOffset.Y, Z: v.Z - x.KernelOffset.Z}
}

// IndexToLocal composes IndexToVoxel then VoxelToLocal.
func (x Xform) IndexToLocal(i IndexVec3) Vec3 {
	return x.VoxelToLocal(x.IndexToVoxel(i))
}

// LocalToIndex composes LocalToVoxel then VoxelToIndex.
func (x Xform) LocalToIndex(l Vec3) IndexVec3 {
	return x.VoxelToIndex(x.LocalToVoxel(l))
}
