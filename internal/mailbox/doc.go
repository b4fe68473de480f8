// Package mailbox implements the command side of the file-system channel
// shared with the simulation host.
//
// The mailbox is a directory used as an unordered, write-once queue: the
// control side publishes one JSON file per command and the host drains the
// directory. There is no acknowledgment channel - delivery is at-most-once
// and fire-and-forget. A command file is immutable once it appears in the
// directory; superseding a command means publishing a newer one for the
// same light.
//
// # Wire format
//
// Each command file is a self-contained JSON object with the action-specific
// payload keys flattened at top level:
//
//	{"action": "set_mode", "issued_at": 1767225600123, "mode": "manual"}
//
// There is no version field. Any change to this shape is a breaking change
// for the host and must be coordinated out of band.
//
// # Consumer contract
//
// The host is expected to:
//   - match files named *_command.json only (in-progress writes use a
//     .tmp-* name in the same directory and must be ignored);
//   - apply files in lexical filename order, which equals issue order
//     because names embed the millisecond timestamp and a monotonic
//     sequence number;
//   - delete each file after applying it.
//
// Under that contract the latest command published for a light wins.
//
// # Failure model
//
// Publish never returns an error: any I/O failure (missing directory,
// permissions, disk full) is logged and reported as a boolean "not
// delivered". The caller decides how to surface non-delivery.
package mailbox
