package bitfield

import (
	"bytes"
	"testing"
)

func TestSetTestClear(t *testing.T) {
	f := New(2) // side 4, 64 voxels
	if !f.IsEmpty() {
		t.Fatal("fresh field must be empty")
	}

	f.SetCoord(1, 2, 3)
	if !f.TestCoord(1, 2, 3) {
		t.Fatal("expected bit to be set")
	}
	if f.TestCoord(0, 0, 0) {
		t.Fatal("unrelated bit must remain clear")
	}
	if f.PopCount() != 1 {
		t.Fatalf("popcount = %d, want 1", f.PopCount())
	}

	f.ClearCoord(1, 2, 3)
	if f.TestCoord(1, 2, 3) {
		t.Fatal("expected bit to be cleared")
	}
	if !f.IsEmpty() {
		t.Fatal("field must be empty again")
	}
}

func TestSetAllIsFull(t *testing.T) {
	f := New(1) // side 2, 8 voxels
	f.SetAll()
	if !f.IsFull() {
		t.Fatal("expected full field")
	}
	if f.PopCount() != 8 {
		t.Fatalf("popcount = %d, want 8", f.PopCount())
	}
	f.ClearAll()
	if !f.IsEmpty() {
		t.Fatal("expected empty field after ClearAll")
	}
}

func TestInvert(t *testing.T) {
	f := New(1)
	f.Set(0)
	f.Set(3)
	f.Invert()
	for i := uint64(0); i < f.Len(); i++ {
		want := i != 0 && i != 3
		if f.Test(i) != want {
			t.Fatalf("bit %d after invert = %v, want %v", i, f.Test(i), want)
		}
	}
}

func TestPopCountPrefix(t *testing.T) {
	f := New(2)
	f.Set(1)
	f.Set(5)
	f.Set(10)

	cases := []struct {
		n    uint64
		want int
	}{
		{0, 0},
		{2, 1},
		{6, 2},
		{11, 3},
		{64, 3},
	}
	for _, c := range cases {
		if got := f.PopCountPrefix(c.n); got != c.want {
			t.Errorf("PopCountPrefix(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}

func TestSingleBitSetAt(t *testing.T) {
	f := New(2)
	f.Set(7)
	if !f.SingleBitSetAt(7) {
		t.Fatal("expected single bit set at 7")
	}
	f.Set(9)
	if f.SingleBitSetAt(7) {
		t.Fatal("two bits set, SingleBitSetAt must be false")
	}
}

func TestLinearIndexOfNthSet(t *testing.T) {
	f := New(2)
	f.Set(3)
	f.Set(9)
	f.Set(40)

	want := []uint64{3, 9, 40}
	for n, w := range want {
		idx, ok := f.LinearIndexOfNthSet(n)
		if !ok || idx != w {
			t.Errorf("LinearIndexOfNthSet(%d) = (%d,%v), want (%d,true)", n, idx, ok, w)
		}
	}
	if _, ok := f.LinearIndexOfNthSet(3); ok {
		t.Error("expected no 4th set bit")
	}
}

func TestSetUnsetIterator(t *testing.T) {
	f := New(1) // 8 voxels
	f.Set(1)
	f.Set(4)
	f.Set(6)

	var got []uint64
	for it := f.SetIterator(); it.Next(); {
		got = append(got, it.Index())
	}
	want := []uint64{1, 4, 6}
	if len(got) != len(want) {
		t.Fatalf("set iterator yielded %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("set iterator yielded %v, want %v", got, want)
		}
	}

	var unset []uint64
	for it := f.UnsetIterator(); it.Next(); {
		unset = append(unset, it.Index())
	}
	wantUnset := []uint64{0, 2, 3, 5, 7}
	if len(unset) != len(wantUnset) {
		t.Fatalf("unset iterator yielded %v, want %v", unset, wantUnset)
	}
}

func TestWindowIterator(t *testing.T) {
	f := New(2) // side 4
	f.SetCoord(1, 1, 1)

	// window of side 2 anchored at (0,0,0) covers the 2x2x2 sub-cube.
	anchor := uint64(0)
	var hits int
	for it := f.WindowIterator(anchor, 2); it.Next(); {
		i, j, k := it.Coords()
		if f.TestCoord(i, j, k) {
			hits++
		}
	}
	if hits != 1 {
		t.Fatalf("window iterator observed %d set bits, want 1", hits)
	}
}

func TestResizePreservesByCoordinate(t *testing.T) {
	f := New(2) // side 4
	f.SetCoord(1, 2, 3)
	f.SetCoord(3, 3, 3) // will be dropped on shrink to side 2

	f.Resize(1) // side 2
	if f.TestCoord(1, 0, 1) {
		t.Fatal("coordinate that should have been dropped is set")
	}
	if f.PopCount() != 0 {
		t.Fatalf("popcount after shrink = %d, want 0 (both coords out of range)", f.PopCount())
	}

	f2 := New(1)
	f2.SetCoord(1, 0, 1)
	f2.Resize(2)
	if !f2.TestCoord(1, 0, 1) {
		t.Fatal("coordinate lost on grow")
	}
}

func TestIOStreamRoundTrip(t *testing.T) {
	f := New(3)
	f.SetCoord(2, 5, 1)
	f.SetCoord(7, 7, 7)

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	f2 := New(0)
	if _, err := f2.ReadFrom(&buf); err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}

	if f2.LgSize() != f.LgSize() {
		t.Fatalf("lgSize mismatch: got %d want %d", f2.LgSize(), f.LgSize())
	}
	if f2.PopCount() != f.PopCount() {
		t.Fatalf("popcount mismatch after round trip")
	}
	if !f2.TestCoord(2, 5, 1) || !f2.TestCoord(7, 7, 7) {
		t.Fatal("round trip lost a set voxel")
	}
}
