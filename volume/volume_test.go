package volume

import (
	"bytes"
	"testing"

	"github.com/papaver/nkhive/attrs"
	"github.com/papaver/nkhive/iostream"
	"github.com/papaver/nkhive/xform"
)

func TestGetSetUnset(t *testing.T) {
	v := New[int32](2, 2, 0, xform.Vec3{X: 1, Y: 1, Z: 1}, xform.Vec3{})
	if err := v.Set(-5, 3, 10, 42); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := v.Get(-5, 3, 10); got != 42 {
		t.Fatalf("Get = %d, want 42", got)
	}
	if err := v.Unset(-5, 3, 10); err != nil {
		t.Fatalf("Unset: %v", err)
	}
	if got := v.Get(-5, 3, 10); got != 0 {
		t.Fatalf("Get after Unset = %d, want 0", got)
	}
}

func TestSpaceConversions(t *testing.T) {
	v := New[int32](1, 1, 0, xform.Vec3{X: 2, Y: 2, Z: 2}, xform.Vec3{X: 0.5, Y: 0.5, Z: 0.5})

	idx := v.VoxelToIndex(xform.Vec3{X: 1.7, Y: -0.6, Z: 3.5})
	want := xform.IndexVec3{X: 1, Y: -2, Z: 3}
	if idx != want {
		t.Fatalf("VoxelToIndex = %+v, want %+v", idx, want)
	}

	voxel := v.IndexToVoxel(xform.IndexVec3{X: 2, Y: -1, Z: 0})
	wantVoxel := xform.Vec3{X: 2.5, Y: -0.5, Z: 0.5}
	if voxel != wantVoxel {
		t.Fatalf("IndexToVoxel = %+v, want %+v", voxel, wantVoxel)
	}

	local := v.VoxelToLocal(xform.Vec3{X: 3, Y: 1, Z: 0})
	wantLocal := xform.Vec3{X: 6, Y: 2, Z: 0}
	if local != wantLocal {
		t.Fatalf("VoxelToLocal = %+v, want %+v", local, wantLocal)
	}
}

func TestComputeSetBoundsLocal(t *testing.T) {
	v := New[int32](1, 1, 0, xform.Vec3{X: 1, Y: 1, Z: 1}, xform.Vec3{})
	if _, _, ok := v.ComputeSetBoundsLocal(); ok {
		t.Fatalf("ComputeSetBoundsLocal on empty volume reported ok")
	}

	if err := v.Set(0, 0, 0, 1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := v.Set(3, 3, 3, 1); err != nil {
		t.Fatalf("Set: %v", err)
	}

	min, max, ok := v.ComputeSetBoundsLocal()
	if !ok {
		t.Fatalf("ComputeSetBoundsLocal reported no bounds")
	}
	if min != (xform.Vec3{X: 0, Y: 0, Z: 0}) {
		t.Fatalf("min = %+v, want origin", min)
	}
	if max != (xform.Vec3{X: 4, Y: 4, Z: 4}) {
		t.Fatalf("max = %+v, want (4,4,4)", max)
	}
}

func TestMandatoryAttributes(t *testing.T) {
	v := New[int32](1, 1, 0, xform.Vec3{X: 1, Y: 1, Z: 1}, xform.Vec3{})
	if v.Name() != "unknown" {
		t.Fatalf("Name() = %q, want unknown", v.Name())
	}
	if err := v.SetName("density"); err != nil {
		t.Fatalf("SetName: %v", err)
	}
	if v.Name() != "density" {
		t.Fatalf("Name() = %q, want density", v.Name())
	}
}

func TestSetIterator(t *testing.T) {
	v := New[int32](1, 1, 0, xform.Vec3{X: 1, Y: 1, Z: 1}, xform.Vec3{})
	if err := v.Set(-1, 2, 3, 9); err != nil {
		t.Fatalf("Set: %v", err)
	}
	count := 0
	for _, val := range v.SetIterator() {
		if val != 9 {
			t.Fatalf("value = %d, want 9", val)
		}
		count++
	}
	if count != 1 {
		t.Fatalf("SetIterator count = %d, want 1", count)
	}
}

func TestWriteToReadFromRoundTrip(t *testing.T) {
	v := New[int32](1, 1, 0, xform.Vec3{X: 1, Y: 2, Z: 3}, xform.Vec3{X: 0.5, Y: 0, Z: 0})
	if err := v.SetName("density"); err != nil {
		t.Fatalf("SetName: %v", err)
	}
	if err := v.Set(-1, -1, -1, 5); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := v.Set(2, 2, 2, 9); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var buf bytes.Buffer
	if _, err := v.WriteTo(&buf, iostream.TypeI32, iostream.EncodeInt32); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got, _, err := ReadFrom[int32](&buf, iostream.TypeI32, iostream.DecodeInt32, attrs.DefaultRegistry())
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if got.Name() != "density" {
		t.Fatalf("Name() = %q, want density", got.Name())
	}
	if v := got.Get(-1, -1, -1); v != 5 {
		t.Fatalf("Get(-1,-1,-1) = %d, want 5", v)
	}
	if v := got.Get(2, 2, 2); v != 9 {
		t.Fatalf("Get(2,2,2) = %d, want 9", v)
	}
	if got.Xform().Res != (xform.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Fatalf("Xform().Res = %+v, want (1,2,3)", got.Xform().Res)
	}
}

func TestReadFromTypeTagMismatch(t *testing.T) {
	v := New[int32](1, 1, 0, xform.Vec3{X: 1, Y: 1, Z: 1}, xform.Vec3{})
	var buf bytes.Buffer
	if _, err := v.WriteTo(&buf, iostream.TypeI32, iostream.EncodeInt32); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if _, _, err := ReadFrom[int32](&buf, iostream.TypeF32, iostream.DecodeInt32, attrs.DefaultRegistry()); err == nil {
		t.Fatalf("ReadFrom with mismatched type tag succeeded, want error")
	}
}
