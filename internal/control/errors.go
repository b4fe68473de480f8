package control

import "errors"

var (
	// ErrNoLights indicates the status snapshot was absent or listed no
	// lights, so there was nothing to fan out to.
	ErrNoLights = errors.New("no traffic lights found")

	// ErrUnknownAttackType indicates an unrecognised attack scenario.
	ErrUnknownAttackType = errors.New("unknown attack type")
)
