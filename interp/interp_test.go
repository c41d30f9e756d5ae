package interp

import (
	"testing"

	"github.com/papaver/nkhive/tree"
	"github.com/papaver/nkhive/xform"
)

// gridSource adapts a flat 1D array to Source, ignoring j,k — used to
// isolate the x-axis convolution in cubic tests against
// TestInterpolation.cpp's testCubic1d values.
type gridSource struct {
	data [4]float64
}

func (g gridSource) Get(i, j, k int32) float64 { return g.data[i] }

func TestCubicMatchesReferenceCoefficients(t *testing.T) {
	src := gridSource{data: [4]float64{0, 1, 0, 1}}
	xf := xform.New(xform.Vec3{X: 1, Y: 1, Z: 1}, xform.Vec3{})

	cases := []struct {
		voxelX float64
		want   float64
	}{
		{1.75, 0.84375},
		{1.5, 1.0},
		{2.0, 0.5},
	}
	for _, c := range cases {
		got := Cubic[float64](src, xf, xform.Vec3{X: c.voxelX, Y: 0, Z: 0})
		if diff := got - c.want; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("Cubic(x=%v) = %v, want %v", c.voxelX, got, c.want)
		}
	}
}

func TestLinearInteriorAndBoundaryPoints(t *testing.T) {
	tr := tree.New[float64](2, 2, 1)
	for _, s := range [][3]int32{{0, 1, 0}, {0, 1, 1}, {1, 1, 0}, {1, 1, 1}} {
		if err := tr.Set(s[0], s[1], s[2], 2); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	xf := xform.New(xform.Vec3{X: 1, Y: 1, Z: 1}, xform.Vec3{X: 0.5, Y: 0.5, Z: 0.5})

	cases := []struct {
		voxel xform.Vec3
		want  float64
	}{
		{xform.Vec3{X: 1, Y: 1, Z: 1}, 1.5},
		{xform.Vec3{X: 1, Y: 0, Z: 1}, 1.0},
		{xform.Vec3{X: 1, Y: 2, Z: 1}, 1.5},
		{xform.Vec3{X: 1, Y: 0.75, Z: 1}, 1.25},
		{xform.Vec3{X: 1, Y: 1.25, Z: 1}, 1.75},
	}
	for _, c := range cases {
		got := Linear[float64](tr, xf, c.voxel)
		if diff := got - c.want; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("Linear(%+v) = %v, want %v", c.voxel, got, c.want)
		}
	}
}

func TestLinearNegativeCoordinates(t *testing.T) {
	tr := tree.New[float64](2, 2, 1)
	for _, s := range [][3]int32{{-1, -2, -1}, {-1, -2, -2}, {-2, -2, -1}, {-2, -2, -2}} {
		if err := tr.Set(s[0], s[1], s[2], 2); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	xf := xform.New(xform.Vec3{X: 1, Y: 1, Z: 1}, xform.Vec3{X: 0.5, Y: 0.5, Z: 0.5})

	cases := []struct {
		voxel xform.Vec3
		want  float64
	}{
		{xform.Vec3{X: -1, Y: -1, Z: -1}, 1.5},
		{xform.Vec3{X: -1, Y: 0, Z: -1}, 1.0},
		{xform.Vec3{X: -1, Y: -2, Z: -1}, 1.5},
		{xform.Vec3{X: -1, Y: -0.75, Z: -1}, 1.25},
		{xform.Vec3{X: -1, Y: -1.25, Z: -1}, 1.75},
	}
	for _, c := range cases {
		got := Linear[float64](tr, xf, c.voxel)
		if diff := got - c.want; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("Linear(%+v) = %v, want %v", c.voxel, got, c.want)
		}
	}
}
