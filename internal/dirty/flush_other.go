//go:build !unix

package dirty

// flushRanges has no portable msync equivalent outside unix; fall back
// to syncing the whole backing file, mirroring hivekit's own
// "!unix && !windows" fallback.
func (t *Tracker) flushRanges(_ []byte) error {
	if t.file == nil {
		return nil
	}
	return t.file.Sync()
}
