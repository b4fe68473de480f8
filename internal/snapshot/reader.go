package snapshot

import (
	"encoding/json"
	"os"

	"trafficgrid/internal/infrastructure/logging"
)

// Reader reads the host-published status snapshot file.
//
// Reads are lock-free and uncached: every call re-reads the file so the
// caller always sees the most recent host-published tick. The reader may
// race with the host overwriting the file; the host is required (external
// contract, see package doc) to write-then-rename so a racing read never
// yields a torn file.
type Reader struct {
	path   string
	logger *logging.Logger
}

// NewReader creates a Reader for the snapshot file at path. The file does
// not need to exist yet - the host creates it on its first tick.
func NewReader(path string, logger *logging.Logger) *Reader {
	return &Reader{path: path, logger: logger}
}

// Path returns the snapshot file path.
func (r *Reader) Path() string {
	return r.path
}

// Read returns the current snapshot, or (nil, false) when the snapshot is
// absent: file missing (host not started), unreadable, or unparseable
// (host stalled mid-deploy, truncated by a non-conforming writer).
//
// Absence is a normal, reportable "disconnected" state - Read never
// returns an error and never panics past this boundary.
func (r *Reader) Read() (*Snapshot, bool) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Warn("snapshot unreadable", "path", r.path, "error", err)
		}
		return nil, false
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		r.logger.Warn("snapshot unparseable", "path", r.path, "error", err)
		return nil, false
	}

	return &snap, true
}

// LightIDs returns the id list from the current snapshot, or nil when the
// snapshot is absent.
func (r *Reader) LightIDs() []string {
	snap, ok := r.Read()
	if !ok {
		return nil
	}
	return snap.LightIDs()
}
