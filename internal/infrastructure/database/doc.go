// Package database provides SQLite connectivity for trafficgrid.
//
// It wraps database/sql with lifecycle management, embedded schema
// migrations, and health checks. The only table family it hosts is the
// command journal: a durable record of every command published into the
// simulation mailbox.
//
// # Concurrency
//
// SQLite is opened with a single writer connection (MaxOpenConns=1) and
// WAL mode so journal reads do not block command-path writes.
//
// # Usage
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
