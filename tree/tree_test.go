package tree

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/papaver/nkhive/bitops"
	"github.com/papaver/nkhive/bounds"
	"github.com/papaver/nkhive/stamp"
)

func encodeF32(w io.Writer, v float32) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func decodeF32(r io.Reader) (float32, error) {
	var v float32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func TestOctantIsolation(t *testing.T) {
	tr := New[float32](2, 2, 1.0)
	must(t, tr.Set(-1, -2, -4, 2.0))
	must(t, tr.Set(1, 2, 4, 3.0))
	must(t, tr.Set(-1, 2, -4, 4.0))

	if got := tr.Get(-1, -2, -4); got != 2.0 {
		t.Fatalf("Get(-1,-2,-4) = %v, want 2.0", got)
	}
	if got := tr.Get(1, 2, 4); got != 3.0 {
		t.Fatalf("Get(1,2,4) = %v, want 3.0", got)
	}
	if got := tr.Get(-1, 2, -4); got != 4.0 {
		t.Fatalf("Get(-1,2,-4) = %v, want 4.0", got)
	}
	if got := tr.Get(1, 1, 1); got != 1.0 {
		t.Fatalf("Get(1,1,1) = %v, want default 1.0", got)
	}
}

func TestUnsetRestoresDefault(t *testing.T) {
	tr := New[int32](1, 1, -1)
	must(t, tr.Set(5, -3, 2, 9))
	if got := tr.Get(5, -3, 2); got != 9 {
		t.Fatalf("Get after Set = %d, want 9", got)
	}
	must(t, tr.Unset(5, -3, 2))
	if got := tr.Get(5, -3, 2); got != -1 {
		t.Fatalf("Get after Unset = %d, want -1", got)
	}
}

func TestComputeSetBounds(t *testing.T) {
	tr := New[int32](1, 1, 0)
	if _, any := tr.ComputeSetBounds(); any {
		t.Fatal("expected empty tree to report no set bounds")
	}
	must(t, tr.Set(-2, 0, 0, 1))
	must(t, tr.Set(1, 0, 0, 1))

	b, any := tr.ComputeSetBounds()
	if !any {
		t.Fatal("expected non-empty bounds")
	}
	if !b.Contains(bounds.SignedVec3{X: -2, Y: 0, Z: 0}) {
		t.Fatalf("bounds %v does not contain (-2,0,0)", b)
	}
	if !b.Contains(bounds.SignedVec3{X: 1, Y: 0, Z: 0}) {
		t.Fatalf("bounds %v does not contain (1,0,0)", b)
	}
}

func TestStampWithinSingleQuadrant(t *testing.T) {
	tr := New[int32](2, 2, 0)
	src := stamp.Func[int32]{
		Box: bounds.SignedBox{Min: bounds.SignedVec3{X: 0, Y: 0, Z: 0}, Max: bounds.SignedVec3{X: 8, Y: 8, Z: 8}},
		Fn:  func(i, j, k int32) int32 { return i*100 + j*10 + k },
	}
	if err := tr.Stamp(src, bounds.SignedVec3{}); err != nil {
		t.Fatalf("Stamp: %v", err)
	}
	for k := int32(0); k < 8; k++ {
		for j := int32(0); j < 8; j++ {
			for i := int32(0); i < 8; i++ {
				want := i*100 + j*10 + k
				if got := tr.Get(i, j, k); got != want {
					t.Fatalf("Get(%d,%d,%d) = %d, want %d", i, j, k, got, want)
				}
			}
		}
	}
	if got := tr.Get(-1, 0, 0); got != 0 {
		t.Fatalf("Get(-1,0,0) = %d, want default 0", got)
	}
}

// TestStampOffsetPositionAndSign stamps at a nonzero position straddling
// multiple octants and checks every written voxel against the testable
// property get(p) == src.get((p - pos) * transform(quadrant(p))).
func TestStampOffsetPositionAndSign(t *testing.T) {
	tr := New[int32](2, 2, 0)
	src := stamp.Func[int32]{
		Box: bounds.SignedBox{Min: bounds.SignedVec3{X: 0, Y: 0, Z: 0}, Max: bounds.SignedVec3{X: 6, Y: 6, Z: 6}},
		Fn:  func(i, j, k int32) int32 { return 1 + i*100 + j*10 + k },
	}
	pos := bounds.SignedVec3{X: -3, Y: -3, Z: -3}
	if err := tr.Stamp(src, pos); err != nil {
		t.Fatalf("Stamp: %v", err)
	}

	for i := int32(-3); i < 3; i++ {
		for j := int32(-3); j < 3; j++ {
			for k := int32(-3); k < 3; k++ {
				q := bitops.Quadrant(i, j, k)
				si, sj, sk := bitops.QuadrantSigns(q)
				wantSrc := src.Get((i-pos.X)*si, (j-pos.Y)*sj, (k-pos.Z)*sk)
				if got := tr.Get(i, j, k); got != wantSrc {
					t.Fatalf("Get(%d,%d,%d) = %d, want %d", i, j, k, got, wantSrc)
				}
			}
		}
	}
}

func TestSetIteratorVisitsEverySetVoxel(t *testing.T) {
	tr := New[int32](1, 1, 0)
	must(t, tr.Set(-1, -1, -1, 5))
	must(t, tr.Set(2, 2, 2, 7))

	seen := map[[3]int32]int32{}
	for it := tr.SetCursor(); it.Next(); {
		i, j, k := it.Coords()
		seen[[3]int32{i, j, k}] = it.Value()
	}
	if seen[[3]int32{-1, -1, -1}] != 5 {
		t.Fatalf("missing or wrong value at (-1,-1,-1): %v", seen[[3]int32{-1, -1, -1}])
	}
	if seen[[3]int32{2, 2, 2}] != 7 {
		t.Fatalf("missing or wrong value at (2,2,2): %v", seen[[3]int32{2, 2, 2}])
	}
	if len(seen) != 2 {
		t.Fatalf("len(seen) = %d, want 2", len(seen))
	}
}

func TestTreeIORoundTrip(t *testing.T) {
	tr := New[float32](1, 1, -1.0)
	must(t, tr.Set(-2, 3, 1, 4.5))
	must(t, tr.Set(5, -1, -1, 9.5))

	var buf bytes.Buffer
	if _, err := tr.WriteTo(&buf, encodeF32); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	got, _, err := ReadFrom[float32](&buf, decodeF32)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if v := got.Get(-2, 3, 1); v != 4.5 {
		t.Fatalf("Get(-2,3,1) = %v, want 4.5", v)
	}
	if v := got.Get(5, -1, -1); v != 9.5 {
		t.Fatalf("Get(5,-1,-1) = %v, want 9.5", v)
	}
	if v := got.Get(0, 0, 0); v != -1.0 {
		t.Fatalf("Get(0,0,0) = %v, want default -1.0", v)
	}
}

func TestWalkLeavesAndInstallLeafRoundTrip(t *testing.T) {
	src := New[int32](1, 1, 0)
	must(t, src.Set(-1, -1, -1, 3))
	must(t, src.Set(4, 4, 4, 9))

	dst := New[int32](1, 1, 0)
	src.WalkLeaves(func(l Leaf[int32]) {
		if err := dst.InstallLeaf(l); err != nil {
			t.Fatalf("InstallLeaf: %v", err)
		}
	})

	if got := dst.Get(-1, -1, -1); got != 3 {
		t.Fatalf("Get(-1,-1,-1) = %d, want 3", got)
	}
	if got := dst.Get(4, 4, 4); got != 9 {
		t.Fatalf("Get(4,4,4) = %d, want 9", got)
	}
	if got := dst.Get(0, 0, 0); got != 0 {
		t.Fatalf("Get(0,0,0) = %d, want default 0", got)
	}
}

func TestSetIteratorVisitsOctantsInOrder(t *testing.T) {
	tr := New[int32](1, 1, 0)
	pts := [][3]int32{{-3, 2, -1}, {0, 0, 0}, {5, -2, 3}, {-1, -1, -1}}
	for _, p := range pts {
		must(t, tr.Set(p[0], p[1], p[2], 7))
	}

	seen := map[[3]int32]bool{}
	lastQ := -1
	for p, v := range tr.SetIterator() {
		if v != 7 {
			t.Fatalf("value = %d, want 7", v)
		}
		q := int(bitops.Quadrant(p.X, p.Y, p.Z))
		if q < lastQ {
			t.Fatalf("octant order violated: saw %d after %d", q, lastQ)
		}
		lastQ = q
		seen[[3]int32{p.X, p.Y, p.Z}] = true
	}
	for _, p := range pts {
		if !seen[p] {
			t.Fatalf("SetIterator missed %v", p)
		}
	}
}

func TestSetIteratorEarlyStop(t *testing.T) {
	tr := New[int32](1, 1, 0)
	must(t, tr.Set(0, 0, 0, 1))
	must(t, tr.Set(1, 1, 1, 2))
	must(t, tr.Set(-1, -1, -1, 3))

	count := 0
	for range tr.SetIterator() {
		count++
		break
	}
	if count != 1 {
		t.Fatalf("early stop did not halt iteration, count = %d", count)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
