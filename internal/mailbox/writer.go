package mailbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"trafficgrid/internal/infrastructure/logging"
)

// mailboxDirPermissions is the permission mode for the mailbox directory.
const mailboxDirPermissions = 0750

// commandFileSuffix is the part of the name the consumer contract matches on.
const commandFileSuffix = "_command.json"

// Writer publishes command files into the mailbox directory.
//
// Every publish is a single atomic file creation, independent of all
// others: the command is written to a temporary file in the mailbox
// directory and renamed into place, so a concurrent reader never observes
// partial JSON. File names embed a process-lifetime sequence number, so
// concurrent publishes need no lock and never collide - not even two
// commands for the same light in the same millisecond.
//
// Thread Safety:
//   - Publish is safe for concurrent use from multiple goroutines.
type Writer struct {
	dir    string
	logger *logging.Logger
	now    func() time.Time
	seq    atomic.Uint64
}

// NewWriter creates a Writer for the given mailbox directory, creating the
// directory if it does not exist.
//
// Parameters:
//   - dir: Mailbox directory path
//   - logger: Logger for I/O failure reporting
//
// Returns:
//   - *Writer: Ready writer
//   - error: If the directory cannot be created
func NewWriter(dir string, logger *logging.Logger) (*Writer, error) {
	if err := os.MkdirAll(dir, mailboxDirPermissions); err != nil {
		return nil, fmt.Errorf("creating mailbox directory: %w", err)
	}
	return &Writer{
		dir:    dir,
		logger: logger,
		now:    time.Now,
	}, nil
}

// SetClock overrides the time source. Used by tests to pin the millisecond
// timestamp embedded in file names and records.
func (w *Writer) SetClock(now func() time.Time) {
	w.now = now
}

// Dir returns the mailbox directory path.
func (w *Writer) Dir() string {
	return w.dir
}

// Publish writes one command file for target into the mailbox.
//
// Semantics are at-most-once, best-effort: on any failure (encoding, I/O)
// the command is simply not delivered, the failure is logged, and false is
// returned. There is no retry and no queueing - the caller is responsible
// for surfacing non-delivery.
//
// Parameters:
//   - target: Addressed light id
//   - action: Operation from the closed action set
//   - payload: Action-specific payload variant
//
// Returns:
//   - bool: true if the command file is in the mailbox, false otherwise
func (w *Writer) Publish(target string, action Action, payload Payload) bool {
	issuedAt := w.now().UnixMilli()

	cmd := Command{
		Target:   target,
		Action:   action,
		Payload:  payload,
		IssuedAt: issuedAt,
	}

	data, err := cmd.Encode()
	if err != nil {
		w.logger.Error("command not delivered: encoding failed",
			"light_id", target,
			"action", action,
			"error", err,
		)
		return false
	}

	name := w.fileName(target, issuedAt)
	if !w.writeAtomic(name, data) {
		return false
	}

	w.logger.Info("command published",
		"light_id", target,
		"action", action,
		"file", name,
	)
	return true
}

// fileName builds a mailbox file name that is globally unique for the
// lifetime of this process: <target>_<millis>_<seq>_command.json.
// The zero-padded timestamp and sequence make lexical order equal issue
// order, which the consumer contract relies on.
func (w *Writer) fileName(target string, issuedAt int64) string {
	seq := w.seq.Add(1)
	return fmt.Sprintf("%s_%013d_%06d%s", sanitizeTarget(target), issuedAt, seq, commandFileSuffix)
}

// writeAtomic writes data to a temporary file in the mailbox directory and
// renames it to name. The temp file lives on the same filesystem as the
// mailbox, so the rename is atomic and the consumer never sees a partial
// command. Temp names carry a .tmp- prefix the consumer contract excludes.
func (w *Writer) writeAtomic(name string, data []byte) bool {
	tmp, err := os.CreateTemp(w.dir, ".tmp-*")
	if err != nil {
		w.logger.Error("command not delivered: creating temp file failed",
			"file", name,
			"error", err,
		)
		return false
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()        //nolint:errcheck // Best effort cleanup on error path
		os.Remove(tmpPath) //nolint:errcheck // Best effort cleanup on error path
		w.logger.Error("command not delivered: writing temp file failed",
			"file", name,
			"error", err,
		)
		return false
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()        //nolint:errcheck // Best effort cleanup on error path
		os.Remove(tmpPath) //nolint:errcheck // Best effort cleanup on error path
		w.logger.Error("command not delivered: syncing temp file failed",
			"file", name,
			"error", err,
		)
		return false
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath) //nolint:errcheck // Best effort cleanup on error path
		w.logger.Error("command not delivered: closing temp file failed",
			"file", name,
			"error", err,
		)
		return false
	}

	if err := os.Rename(tmpPath, filepath.Join(w.dir, name)); err != nil {
		os.Remove(tmpPath) //nolint:errcheck // Best effort cleanup on error path
		w.logger.Error("command not delivered: renaming into mailbox failed",
			"file", name,
			"error", err,
		)
		return false
	}

	return true
}

// sanitizeTarget maps a light id to a safe file name component. Anything
// outside [A-Za-z0-9._-] becomes '-', which also keeps a hostile id from
// escaping the mailbox directory.
func sanitizeTarget(target string) string {
	if target == "" {
		return "unknown"
	}
	var b strings.Builder
	b.Grow(len(target))
	for _, r := range target {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
