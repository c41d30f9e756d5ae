package xform

import (
	"bytes"
	"testing"
)

func TestVoxelIndexRoundTrip(t *testing.T) {
	x := New(Vec3{X: 1, Y: 1, Z: 1}, Vec3{X: 0.5, Y: 0.5, Z: 0.5})
	idx := x.VoxelToIndex(Vec3{X: 2.7, Y: -1.2, Z: 0.4})
	want := IndexVec3{X: 2, Y: -2, Z: -1}
	if idx != want {
		t.Fatalf("VoxelToIndex = %+v, want %+v", idx, want)
	}
	v := x.IndexToVoxel(IndexVec3{X: 3, Y: -1, Z: 0})
	wantV := Vec3{X: 3.5, Y: -0.5, Z: 0.5}
	if v != wantV {
		t.Fatalf("IndexToVoxel = %+v, want %+v", v, wantV)
	}
}

func TestVoxelLocalRoundTrip(t *testing.T) {
	x := New(Vec3{X: 2, Y: 4, Z: 0.5}, Vec3{})
	v := Vec3{X: 3, Y: 1, Z: 8}
	l := x.VoxelToLocal(v)
	back := x.LocalToVoxel(l)
	if back != v {
		t.Fatalf("LocalToVoxel(VoxelToLocal(v)) = %+v, want %+v", back, v)
	}
}

func TestXformIORoundTrip(t *testing.T) {
	x := New(Vec3{X: 1.5, Y: 2.5, Z: 3.5}, Vec3{X: -1, Y: 0, Z: 4.25})
	var buf bytes.Buffer
	if _, err := x.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	got, _, err := ReadFrom(&buf)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if got != x {
		t.Fatalf("round trip = %+v, want %+v", got, x)
	}
}
