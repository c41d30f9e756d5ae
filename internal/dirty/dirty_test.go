package dirty

import "testing"

func TestAddAndReset(t *testing.T) {
	tr := NewTracker(nil, nil)
	tr.Add(10, 20)
	tr.Add(100, 5)
	if len(tr.Ranges()) != 1 {
		t.Fatalf("Ranges() len = %d, want 1 (both ranges lie in page 0)", len(tr.Ranges()))
	}
	tr.Reset()
	if got := tr.Ranges(); got != nil {
		t.Fatalf("Ranges() after Reset = %v, want nil", got)
	}
}

func TestCoalesceMergesOverlappingPages(t *testing.T) {
	tr := NewTracker(nil, nil)
	tr.Add(10, 20)    // page [0, 4096)
	tr.Add(4100, 10)  // page [4096, 8192), adjacent to prior
	tr.Add(100000, 5) // far away, separate page

	got := tr.Ranges()
	if len(got) != 2 {
		t.Fatalf("Ranges() = %v, want 2 merged ranges", got)
	}
	if got[0].Off != 0 || got[0].Len != 2*standardPageSize {
		t.Fatalf("first range = %+v, want {0 %d}", got[0], 2*standardPageSize)
	}
}

func TestFlushNoDataIsNoop(t *testing.T) {
	tr := NewTracker(nil, nil)
	tr.Add(0, 10)
	if err := tr.Flush(FlushDataOnly); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(tr.ranges) != 0 {
		t.Fatalf("ranges not cleared after Flush")
	}
}

func TestFlushClearsRanges(t *testing.T) {
	data := make([]byte, 3*standardPageSize)
	tr := NewTracker(data, nil)
	tr.Add(10, 20)
	if err := tr.Flush(FlushDataOnly); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(tr.ranges) != 0 {
		t.Fatalf("ranges not cleared after Flush")
	}
}
