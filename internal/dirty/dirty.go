// Package dirty tracks byte ranges touched in a memory-mapped file and
// flushes only those ranges, instead of syncing the whole mapping on
// every write.
//
// Grounded on joshuapare/hivekit's hive/dirty tracker: accumulate raw
// ranges cheaply, coalesce to page-aligned non-overlapping ranges at
// flush time, and flush via a platform-specific msync. Generalized from
// registry-hive byte offsets to arbitrary byte ranges of a mapped file;
// no other package in this module imports it.
package dirty

import (
	"os"
	"sort"
)

const (
	defaultRangeCapacity = 64
	standardPageSize     = 4096
)

// FlushMode controls durability guarantees for a Flush call.
type FlushMode int

const (
	// FlushDataOnly syncs only the dirty data ranges via msync.
	FlushDataOnly FlushMode = iota

	// FlushFull syncs the dirty data ranges, then the backing file
	// descriptor itself (fsync/fdatasync).
	FlushFull
)

// Range is a dirty byte range, as absolute offsets into the mapped file.
type Range struct {
	Off int64
	Len int64
}

// Tracker accumulates dirty ranges against a memory-mapped region and
// flushes them to the region's backing file.
//
// Not safe for concurrent use; callers serialize writes externally
// (spec.md §5: one writer at a time for a given Volume).
type Tracker struct {
	data     []byte
	file     *os.File
	ranges   []Range
	pageSize int64
}

// NewTracker returns a Tracker over data, the mmap'd view of file. file
// may be nil if only msync-based flushing (no fd sync) is needed.
func NewTracker(data []byte, file *os.File) *Tracker {
	return &Tracker{
		data:     data,
		file:     file,
		ranges:   make([]Range, 0, defaultRangeCapacity),
		pageSize: standardPageSize,
	}
}

// Add records [off, off+length) as dirty. Cheap: only appends.
func (t *Tracker) Add(off, length int) {
	if length <= 0 {
		return
	}
	t.ranges = append(t.ranges, Range{Off: int64(off), Len: int64(length)})
}

// Reset discards all tracked ranges without flushing.
func (t *Tracker) Reset() {
	t.ranges = t.ranges[:0]
}

// Ranges returns the current dirty ranges, page-aligned, sorted, and
// merged. Does not clear the tracker.
func (t *Tracker) Ranges() []Range {
	return t.coalesce()
}

// Flush syncs every coalesced dirty range to disk via msync, then
// (FlushFull only) syncs the backing file descriptor, and clears the
// tracker.
func (t *Tracker) Flush(mode FlushMode) error {
	if len(t.ranges) == 0 {
		return nil
	}
	if len(t.data) == 0 {
		t.ranges = t.ranges[:0]
		return nil
	}
	if err := t.flushRanges(t.data); err != nil {
		return err
	}
	t.ranges = t.ranges[:0]
	if mode == FlushFull && t.file != nil {
		return t.file.Sync()
	}
	return nil
}

func (t *Tracker) coalesce() []Range {
	if len(t.ranges) == 0 {
		return nil
	}

	aligned := make([]Range, len(t.ranges))
	for i, r := range t.ranges {
		start := (r.Off / t.pageSize) * t.pageSize
		end := r.Off + r.Len
		if end%t.pageSize != 0 {
			end = ((end / t.pageSize) + 1) * t.pageSize
		}
		aligned[i] = Range{Off: start, Len: end - start}
	}

	sort.Slice(aligned, func(i, j int) bool { return aligned[i].Off < aligned[j].Off })

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]
	for i := 1; i < len(aligned); i++ {
		next := aligned[i]
		if next.Off <= current.Off+current.Len {
			if end := next.Off + next.Len; end > current.Off+current.Len {
				current.Len = end - current.Off
			}
			continue
		}
		merged = append(merged, current)
		current = next
	}
	merged = append(merged, current)
	return merged
}
