package mailbox

import "errors"

var (
	// ErrUnknownAction indicates an action outside the closed set.
	ErrUnknownAction = errors.New("unknown action")

	// ErrPayloadMismatch indicates an action paired with the wrong payload variant.
	ErrPayloadMismatch = errors.New("payload does not match action")

	// ErrInvalidStatus indicates a light status outside {red, yellow, green}.
	ErrInvalidStatus = errors.New("invalid light status")

	// ErrInvalidMode indicates a control mode outside {automatic, manual, api_controlled}.
	ErrInvalidMode = errors.New("invalid control mode")
)
