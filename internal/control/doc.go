// Package control turns API-level intents into mailbox commands.
//
// Single-light operations publish one command. System-wide operations fan
// out over the light ids of the status snapshot read at call time, one
// publish per target in snapshot order. Partial failure is a first-class
// result: callers get the succeeded and failed id sets, never an error,
// except when no lights exist at all (ErrNoLights).
//
// Attack scenarios and forced-colour emergencies are compound sequences:
// the light is switched to api_controlled mode first, then its colour is
// forced. If the mode write fails the colour write is skipped and the
// light counts as failed.
//
// Every publish attempt is recorded in the command journal best-effort; a
// journal failure is logged and never fails the command path.
package control
