package cell

import "testing"

func TestSingleSetStaysFilled(t *testing.T) {
	c := New[int32](1, 0) // side 2
	if err := c.Set(0, 1); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if c.DataSize() != 0 {
		t.Fatalf("DataSize = %d, want 0 (no allocation)", c.DataSize())
	}
	if !c.IsFilled() {
		t.Fatal("expected cell to remain Filled")
	}
	if got := c.FillValue(); got != 1 {
		t.Fatalf("FillValue = %d, want 1", got)
	}
	if got := c.Get(0, 0, 0); got != 1 {
		t.Fatalf("Get(0,0,0) = %d, want 1", got)
	}
	if got := c.Get(1, 0, 0); got != 0 {
		t.Fatalf("Get(1,0,0) = %d, want 0 (default)", got)
	}

	linear := c.linear(0, 0, 0)
	if !c.bits.SingleBitSetAt(linear) {
		t.Fatal("expected single bit set at (0,0,0)")
	}
}

func TestPromoteFilledToExpanded(t *testing.T) {
	c := New[int32](1, 0)
	must(t, c.Set(c.linear(0, 0, 0), 1))
	must(t, c.Set(c.linear(1, 0, 0), 2))

	if c.DataSize() != 8 {
		t.Fatalf("DataSize = %d, want 8", c.DataSize())
	}
	if c.IsFilled() {
		t.Fatal("expected cell to be Expanded")
	}
	if got := c.Get(0, 0, 0); got != 1 {
		t.Fatalf("Get(0,0,0) = %d, want 1", got)
	}
	if got := c.Get(1, 0, 0); got != 2 {
		t.Fatalf("Get(1,0,0) = %d, want 2", got)
	}
	if got := c.Get(1, 1, 1); got != 0 {
		t.Fatalf("Get(1,1,1) = %d, want 0", got)
	}
}

func TestCompressedWriteFails(t *testing.T) {
	c := New[int32](1, 0)
	must(t, c.Set(c.linear(0, 0, 0), 1))
	must(t, c.Set(c.linear(1, 0, 0), 2))

	must(t, c.Compress())
	if err := c.Set(c.linear(1, 1, 1), 3); err != ErrModifyCompressed {
		t.Fatalf("Set on compressed cell = %v, want ErrModifyCompressed", err)
	}

	must(t, c.Uncompress())
	must(t, c.Set(c.linear(1, 1, 1), 3))
	if got := c.Get(1, 1, 1); got != 3 {
		t.Fatalf("Get(1,1,1) after uncompress+set = %d, want 3", got)
	}
}

func TestCompressUncompressIdentity(t *testing.T) {
	c := New[int32](2, -1)
	must(t, c.Set(c.linear(0, 0, 0), 5))
	must(t, c.Set(c.linear(3, 3, 3), 9))
	must(t, c.Set(c.linear(1, 2, 0), 7))

	before := snapshot(c)
	must(t, c.Compress())
	must(t, c.Uncompress())
	after := snapshot(c)

	if len(before) != len(after) {
		t.Fatalf("snapshot length changed: %d vs %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("voxel %d changed across compress/uncompress: %d vs %d", i, before[i], after[i])
		}
	}
}

func TestCompressFilledIsNoOpOnValues(t *testing.T) {
	c := NewFilled[int32](1, 0, 7)
	before := snapshot(c)
	must(t, c.Compress())
	after := snapshot(c)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("compressing a Filled cell changed observable value at %d", i)
		}
	}
}

func TestFillAndClear(t *testing.T) {
	c := New[int32](1, -1)
	must(t, c.Set(c.linear(0, 0, 0), 1))
	must(t, c.Set(c.linear(1, 0, 0), 2))
	must(t, c.Fill(9))
	if !c.IsFilled() {
		t.Fatal("expected Filled after Fill")
	}
	for i := uint32(0); i < 2; i++ {
		if c.Get(i, 0, 0) != 9 {
			t.Fatalf("Get(%d,0,0) = %d, want 9", i, c.Get(i, 0, 0))
		}
	}

	must(t, c.Clear())
	if !c.IsEmpty() {
		t.Fatal("expected empty cell after Clear")
	}
	if c.Get(0, 0, 0) != -1 {
		t.Fatalf("Get after Clear = %d, want default -1", c.Get(0, 0, 0))
	}
}

func snapshot[T comparable](c *Cell[T]) []T {
	n := c.cubeVolume()
	out := make([]T, n)
	for i := 0; i < n; i++ {
		out[i] = c.GetLinear(uint64(i))
	}
	return out
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
