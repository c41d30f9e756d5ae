package bounds

import "testing"

func TestCornerRoundTrip(t *testing.T) {
	b := Box{Min: Vec3{1, 2, 3}, Max: Vec3{10, 20, 30}}
	for code := uint8(0); code < 8; code++ {
		c := b.Corner(code)
		var got Box
		got.SetCorner(code, c)
		// only the axes touched by code are meaningful to compare
		if code&1 != 0 && got.Max.X != c.X {
			t.Errorf("code %d: X corner round trip failed", code)
		}
	}
}

func TestUnionIntersection(t *testing.T) {
	a := Box{Min: Vec3{0, 0, 0}, Max: Vec3{4, 4, 4}}
	b := Box{Min: Vec3{2, 2, 2}, Max: Vec3{6, 6, 6}}

	u := a.Union(b)
	want := Box{Min: Vec3{0, 0, 0}, Max: Vec3{6, 6, 6}}
	if u != want {
		t.Errorf("Union = %v, want %v", u, want)
	}

	i := a.Intersection(b)
	wantI := Box{Min: Vec3{2, 2, 2}, Max: Vec3{4, 4, 4}}
	if i != wantI {
		t.Errorf("Intersection = %v, want %v", i, wantI)
	}
}

func TestContainsAndEmpty(t *testing.T) {
	b := Box{Min: Vec3{1, 1, 1}, Max: Vec3{3, 3, 3}}
	if !b.Contains(Vec3{1, 1, 1}) {
		t.Error("min corner must be contained (half-open)")
	}
	if b.Contains(Vec3{3, 3, 3}) {
		t.Error("max corner must not be contained (half-open)")
	}

	empty := Box{Min: Vec3{5, 5, 5}, Max: Vec3{5, 5, 5}}
	if !empty.Empty() {
		t.Error("degenerate box must be empty")
	}
}

func TestTranslate(t *testing.T) {
	b := SignedBox{Min: SignedVec3{-4, -4, -4}, Max: SignedVec3{4, 4, 4}}
	out := b.TranslateSigned(SignedVec3{1, 2, 3})
	want := SignedBox{Min: SignedVec3{-3, -2, -1}, Max: SignedVec3{5, 6, 7}}
	if out != want {
		t.Errorf("TranslateSigned = %v, want %v", out, want)
	}
}
