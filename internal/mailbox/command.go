package mailbox

import (
	"encoding/json"
	"fmt"
)

// Action identifies what a command asks the host to do.
// The set is closed: the host only understands these values.
type Action string

const (
	ActionSetStatus         Action = "set_status"
	ActionSetMode           Action = "set_mode"
	ActionEmergencyAllRed   Action = "emergency_all_red"
	ActionEmergencyAllGreen Action = "emergency_all_green"
	ActionRandomize         Action = "randomize"
	ActionRestoreAll        Action = "restore_all"
	ActionAttackSimulate    Action = "attack_simulate"
)

// Valid reports whether a is a member of the closed action set.
func (a Action) Valid() bool {
	switch a {
	case ActionSetStatus, ActionSetMode, ActionEmergencyAllRed,
		ActionEmergencyAllGreen, ActionRandomize, ActionRestoreAll,
		ActionAttackSimulate:
		return true
	default:
		return false
	}
}

// LightStatus is a traffic light color.
type LightStatus string

const (
	StatusRed    LightStatus = "red"
	StatusYellow LightStatus = "yellow"
	StatusGreen  LightStatus = "green"
)

// ParseLightStatus validates a client-supplied status string.
func ParseLightStatus(s string) (LightStatus, error) {
	switch LightStatus(s) {
	case StatusRed, StatusYellow, StatusGreen:
		return LightStatus(s), nil
	default:
		return "", fmt.Errorf("%w: %q (use: red, yellow, green)", ErrInvalidStatus, s)
	}
}

// ControlMode is how a light decides its own state.
type ControlMode string

const (
	ModeAutomatic     ControlMode = "automatic"
	ModeManual        ControlMode = "manual"
	ModeAPIControlled ControlMode = "api_controlled"
)

// ParseControlMode validates a client-supplied mode string.
func ParseControlMode(s string) (ControlMode, error) {
	switch ControlMode(s) {
	case ModeAutomatic, ModeManual, ModeAPIControlled:
		return ControlMode(s), nil
	default:
		return "", fmt.Errorf("%w: %q (use: automatic, manual, api_controlled)", ErrInvalidMode, s)
	}
}

// Payload carries the action-specific fields of a command. The interface is
// sealed: one variant exists per action, and encoding goes through a single
// exhaustive action/variant mapping so an impossible pairing cannot reach
// the wire.
type Payload interface {
	// fields returns the payload keys flattened into the top level of the
	// encoded command object.
	fields() map[string]any
}

// StatusPayload accompanies set_status.
type StatusPayload struct {
	Status LightStatus
}

func (p StatusPayload) fields() map[string]any {
	return map[string]any{"status": string(p.Status)}
}

// ModePayload accompanies set_mode.
type ModePayload struct {
	Mode ControlMode
}

func (p ModePayload) fields() map[string]any {
	return map[string]any{"mode": string(p.Mode)}
}

// AttackPayload accompanies attack_simulate.
type AttackPayload struct {
	// Type is the attack scenario (random_lights, all_red, all_green).
	Type string
	// Duration is the intended attack length in seconds. Informational:
	// the host does not time-box anything, restore is explicit.
	Duration int
}

func (p AttackPayload) fields() map[string]any {
	return map[string]any{"type": p.Type, "duration": p.Duration}
}

// EmptyPayload accompanies the actions that carry no fields of their own
// (emergency_all_red, emergency_all_green, randomize, restore_all).
type EmptyPayload struct{}

func (EmptyPayload) fields() map[string]any { return nil }

// Command is a single mailbox record addressed to one light.
type Command struct {
	// Target is the addressed light id. Fan-out never produces a
	// multi-target record; bulk operations publish one Command per light.
	Target string

	// Action is the operation, from the closed set above.
	Action Action

	// Payload carries the action-specific fields.
	Payload Payload

	// IssuedAt is the writer-assigned millisecond epoch timestamp. It is
	// a tie-break for the consumer, never a delivery guarantee.
	IssuedAt int64
}

// Encode renders the command as the wire JSON object:
// {"action", "issued_at", ...payload fields}.
//
// Returns:
//   - []byte: Encoded command
//   - error: If the action is unknown or paired with the wrong payload variant
func (c Command) Encode() ([]byte, error) {
	if err := c.checkPairing(); err != nil {
		return nil, err
	}

	obj := map[string]any{
		"action":    string(c.Action),
		"issued_at": c.IssuedAt,
	}
	for k, v := range c.Payload.fields() {
		obj[k] = v
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("encoding command: %w", err)
	}
	return data, nil
}

// checkPairing is the exhaustive action/variant mapping. Every new action
// must be added here or commands carrying it will not encode.
func (c Command) checkPairing() error {
	if c.Payload == nil {
		return fmt.Errorf("%w: nil payload for action %q", ErrPayloadMismatch, c.Action)
	}

	var ok bool
	switch c.Action {
	case ActionSetStatus:
		_, ok = c.Payload.(StatusPayload)
	case ActionSetMode:
		_, ok = c.Payload.(ModePayload)
	case ActionAttackSimulate:
		_, ok = c.Payload.(AttackPayload)
	case ActionEmergencyAllRed, ActionEmergencyAllGreen, ActionRandomize, ActionRestoreAll:
		_, ok = c.Payload.(EmptyPayload)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, c.Action)
	}

	if !ok {
		return fmt.Errorf("%w: action %q with payload %T", ErrPayloadMismatch, c.Action, c.Payload)
	}
	return nil
}
