// Package api implements the HTTP REST API and WebSocket server for trafficgrid.
//
// This package provides:
//   - REST endpoints for light status, control mode, attack scenarios, and restore
//   - WebSocket hub broadcasting snapshot ticks to dashboard clients
//   - Command journal queries
//   - Middleware stack (request ID, logging, recovery, CORS, body size limit)
//
// # Architecture
//
// The API server sits between clients (dashboard, demo scripts) and the
// file-system boundary shared with the simulation host. Commands flow from
// the API through the orchestrator into the mailbox directory; state flows
// back by re-reading the status snapshot the host overwrites on each tick.
// There is no backchannel: command delivery means the file reached the
// mailbox, not that the host applied it.
//
// # Graceful Degradation
//
// The server operates without the simulation host running. Reads report a
// disconnected integration status, fan-outs return 404 (no lights), and
// single-light commands still land in the mailbox for the host to pick up
// when it starts.
package api
