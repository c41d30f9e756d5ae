// Package interp implements linear and cubic resampling over a signed
// voxel field, reading samples through the xform-converted continuous
// index position rather than the field's own storage layout.
//
// Grounded on original's TestInterpolation.cpp: both kernels sample at
// a half-voxel-shifted continuous index (the kernel offset the test
// volumes always construct with), and the cubic kernel is a separable
// Catmull-Rom convolution applied along x, then y, then z — the
// interpolate1d coefficients there pin down the exact polynomial used
// here. Dropped from spec.md's distillation but not excluded by any
// Non-goal; a read-only client of whatever exposes Get(i,j,k int32) T.
package interp

import (
	"math"

	"github.com/papaver/nkhive/xform"
)

// Number is the set of scalar types interp can resample. Cell/Node/Tree
// are generic over any comparable T, but interpolation needs arithmetic,
// so interp narrows to the numeric subset a scalar field actually uses.
type Number interface {
	~float32 | ~float64 | ~int32 | ~int64
}

// Source is the read surface interp needs: point sampling by signed
// index coordinate. *tree.Tree[T] and Volume both satisfy it.
type Source[T any] interface {
	Get(i, j, k int32) T
}

// Linear trilinearly resamples src at a continuous index-space position
// derived from voxel via xf. The sampled cube's corners are
// floor(ci), floor(ci)+1 along each axis, where ci is the continuous
// index coordinate (xf.ContinuousIndex(voxel)).
func Linear[T Number](src Source[T], xf xform.Xform, voxel xform.Vec3) T {
	ci := xf.ContinuousIndex(voxel)

	x0, fx := floorFrac(ci.X)
	y0, fy := floorFrac(ci.Y)
	z0, fz := floorFrac(ci.Z)

	c000 := float64(src.Get(x0, y0, z0))
	c100 := float64(src.Get(x0+1, y0, z0))
	c010 := float64(src.Get(x0, y0+1, z0))
	c110 := float64(src.Get(x0+1, y0+1, z0))
	c001 := float64(src.Get(x0, y0, z0+1))
	c101 := float64(src.Get(x0+1, y0, z0+1))
	c011 := float64(src.Get(x0, y0+1, z0+1))
	c111 := float64(src.Get(x0+1, y0+1, z0+1))

	c00 := lerp(c000, c100, fx)
	c10 := lerp(c010, c110, fx)
	c01 := lerp(c001, c101, fx)
	c11 := lerp(c011, c111, fx)

	c0 := lerp(c00, c10, fy)
	c1 := lerp(c01, c11, fy)

	return T(lerp(c0, c1, fz))
}

// Cubic tricubically resamples src at voxel using a separable
// Catmull-Rom convolution: 4x4x4 neighbors contracted along x, then y,
// then z.
func Cubic[T Number](src Source[T], xf xform.Xform, voxel xform.Vec3) T {
	ci := xf.ContinuousIndex(voxel)

	minX, _, tx := cubicBounds(ci.X)
	minY, _, ty := cubicBounds(ci.Y)
	minZ, _, tz := cubicBounds(ci.Z)

	var zSlices [4]float64
	for dz := 0; dz < 4; dz++ {
		var ySlices [4]float64
		for dy := 0; dy < 4; dy++ {
			var p [4]float64
			for dx := 0; dx < 4; dx++ {
				p[dx] = float64(src.Get(minX+int32(dx), minY+int32(dy), minZ+int32(dz)))
			}
			ySlices[dy] = catmullRom(p, tx)
		}
		zSlices[dz] = catmullRom(ySlices, ty)
	}
	return T(catmullRom(zSlices, tz))
}

// cubicBounds returns the inclusive [min,max] stencil of 4 indices
// straddling c, and the local parameter t in [0,1) for the segment
// between the stencil's middle two points.
//
// Grounded on TestInterpolation.cpp's testGetIndexBounds: the stencil is
// centered on floor(c-0.5), i.e. shifted by a further half-voxel from
// the continuous index c itself, so the query always lands strictly
// inside the middle segment.
func cubicBounds(c float64) (min, max int32, t float64) {
	shifted, frac := floorFrac(c - 0.5)
	return shifted - 1, shifted + 2, frac
}

// catmullRom evaluates the uniform Catmull-Rom cubic through p at local
// parameter t in [0,1], where t=0 is p[1] and t=1 is p[2].
func catmullRom(p [4]float64, t float64) float64 {
	t2 := t * t
	t3 := t2 * t
	return 0.5 * (2*p[1] +
		(-p[0]+p[2])*t +
		(2*p[0]-5*p[1]+4*p[2]-p[3])*t2 +
		(-p[0]+3*p[1]-3*p[2]+p[3])*t3)
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

// floorFrac splits c into an integer floor and its fractional remainder
// in [0,1).
func floorFrac(c float64) (int32, float64) {
	f := math.Floor(c)
	return int32(f), c - f
}
