// Package snapshot reads the status file the simulation host publishes.
//
// The snapshot file is the read half of the file-system channel: a single
// JSON document holding every light entity plus system metadata, rewritten
// wholesale by the host on each simulation tick. The control side never
// writes it and never partially reads it.
//
// # External contract
//
// Concurrent reads racing the host's overwrite must never observe a torn
// file. This package cannot enforce that - it requires the host to publish
// via write-then-rename on the same filesystem. A host that writes in
// place will occasionally present partial JSON, which this package treats
// the same as an absent snapshot (disconnected), so the failure degrades
// rather than crashes.
//
// # Staleness
//
// There is no caching and no freshness check: a stalled host leaves the
// last published tick in place and readers keep seeing it. Staleness is
// acceptable by design; corruption is not.
package snapshot
