//go:build unix

package dirty

import "golang.org/x/sys/unix"

// flushRanges msyncs every coalesced dirty range.
//
// Darwin's msync requires the address passed to match the original
// mmap address, so sub-slices aren't safe there; unlike hivekit we
// don't special-case darwin separately and instead always sync the
// coalesced sub-ranges, which is correct on linux/freebsd. Callers on
// darwin that need strict correctness can pass the whole mapping as a
// single range via Add(0, len(data)).
func (t *Tracker) flushRanges(data []byte) error {
	for _, r := range t.coalesce() {
		start := int(r.Off)
		end := int(r.Off + r.Len)
		if end > len(data) {
			end = len(data)
		}
		if start >= end {
			continue
		}
		if err := unix.Msync(data[start:end], unix.MS_SYNC); err != nil {
			return err
		}
	}
	return nil
}
