package control

import (
	"context"
	"math/rand/v2"

	"github.com/google/uuid"

	"trafficgrid/internal/infrastructure/logging"
	"trafficgrid/internal/journal"
	"trafficgrid/internal/mailbox"
)

// Publisher hands a single command to the simulation mailbox.
// Implemented by mailbox.Writer.
type Publisher interface {
	Publish(target string, action mailbox.Action, payload mailbox.Payload) bool
}

// LightLister returns the current light id list, or nil when the
// simulation is disconnected. Implemented by snapshot.Reader.
type LightLister interface {
	LightIDs() []string
}

// Result holds the per-target outcome of a fan-out.
type Result struct {
	Succeeded []string `json:"succeeded"`
	Failed    []string `json:"failed"`
}

// Total returns the number of targets the fan-out addressed.
func (r *Result) Total() int {
	return len(r.Succeeded) + len(r.Failed)
}

// AttackType identifies an attack scenario.
type AttackType string

const (
	AttackRandomLights AttackType = "random_lights"
	AttackAllRed       AttackType = "all_red"
	AttackAllGreen     AttackType = "all_green"
)

// AttackResult reports the outcome of an attack fan-out.
type AttackResult struct {
	ID       string     `json:"attack_id"`
	Type     AttackType `json:"attack_type"`
	Duration int        `json:"duration"`
	Result
}

// Orchestrator coordinates mailbox publishes across the light fleet.
type Orchestrator struct {
	pub     Publisher
	lights  LightLister
	journal journal.Repository // nil disables journalling
	logger  *logging.Logger

	// pickStatus selects a colour index for random_lights attacks.
	// Overridable in tests.
	pickStatus func(n int) int
}

// New creates an Orchestrator. The journal repository may be nil, in which
// case commands are not recorded.
func New(pub Publisher, lights LightLister, repo journal.Repository, logger *logging.Logger) *Orchestrator {
	return &Orchestrator{
		pub:        pub,
		lights:     lights,
		journal:    repo,
		logger:     logger,
		pickStatus: rand.IntN,
	}
}

// SetStatus forces a single light to the given colour.
func (o *Orchestrator) SetStatus(ctx context.Context, lightID string, status mailbox.LightStatus) bool {
	return o.publishOne(ctx, lightID, mailbox.ActionSetStatus, mailbox.StatusPayload{Status: status})
}

// SetMode switches a single light's control mode.
func (o *Orchestrator) SetMode(ctx context.Context, lightID string, mode mailbox.ControlMode) bool {
	return o.publishOne(ctx, lightID, mailbox.ActionSetMode, mailbox.ModePayload{Mode: mode})
}

// Broadcast publishes the same action and payload to every light listed in
// the snapshot read at call time, one command file per light in snapshot
// order. Bulk actions always materialise as per-light records, never as a
// single multi-target command.
func (o *Orchestrator) Broadcast(ctx context.Context, action mailbox.Action, payload mailbox.Payload) (*Result, error) {
	ids := o.lights.LightIDs()
	if len(ids) == 0 {
		return nil, ErrNoLights
	}

	result := newResult()
	for _, id := range ids {
		if o.publishOne(ctx, id, action, payload) {
			result.Succeeded = append(result.Succeeded, id)
		} else {
			result.Failed = append(result.Failed, id)
		}
	}

	o.logger.Info("broadcast complete",
		"action", action,
		"succeeded", len(result.Succeeded),
		"failed", len(result.Failed),
	)
	return result, nil
}

// SetAllMode switches every known light to the given control mode.
func (o *Orchestrator) SetAllMode(ctx context.Context, mode mailbox.ControlMode) (*Result, error) {
	return o.Broadcast(ctx, mailbox.ActionSetMode, mailbox.ModePayload{Mode: mode})
}

// Restore returns every known light to automatic operation.
func (o *Orchestrator) Restore(ctx context.Context) (*Result, error) {
	result, err := o.SetAllMode(ctx, mailbox.ModeAutomatic)
	if err != nil {
		return nil, err
	}
	o.logger.Info("system restored to automatic operation", "restored", len(result.Succeeded))
	return result, nil
}

// Attack runs an attack scenario against the whole fleet. Each light is
// switched to api_controlled mode and then forced to the scenario's colour;
// a light whose mode write fails is skipped and counted as failed.
func (o *Orchestrator) Attack(ctx context.Context, typ AttackType, duration int) (*AttackResult, error) {
	var status func() mailbox.LightStatus
	switch typ {
	case AttackRandomLights:
		colours := []mailbox.LightStatus{mailbox.StatusRed, mailbox.StatusYellow, mailbox.StatusGreen}
		status = func() mailbox.LightStatus { return colours[o.pickStatus(len(colours))] }
	case AttackAllRed:
		status = func() mailbox.LightStatus { return mailbox.StatusRed }
	case AttackAllGreen:
		status = func() mailbox.LightStatus { return mailbox.StatusGreen }
	default:
		return nil, ErrUnknownAttackType
	}

	ids := o.lights.LightIDs()
	if len(ids) == 0 {
		return nil, ErrNoLights
	}

	attack := &AttackResult{
		ID:       "atk-" + uuid.NewString()[:8],
		Type:     typ,
		Duration: duration,
		Result:   *newResult(),
	}

	o.logger.Warn("attack simulation initiated",
		"attack_id", attack.ID,
		"type", typ,
		"duration_seconds", duration,
		"lights", len(ids),
	)

	for _, id := range ids {
		if !o.SetMode(ctx, id, mailbox.ModeAPIControlled) {
			attack.Failed = append(attack.Failed, id)
			continue
		}
		if o.SetStatus(ctx, id, status()) {
			attack.Succeeded = append(attack.Succeeded, id)
		} else {
			attack.Failed = append(attack.Failed, id)
		}
	}

	return attack, nil
}

// publishOne publishes a single command and journals the attempt.
func (o *Orchestrator) publishOne(ctx context.Context, lightID string, action mailbox.Action, payload mailbox.Payload) bool {
	ok := o.pub.Publish(lightID, action, payload)
	o.record(ctx, lightID, action, payloadFields(payload), ok)
	return ok
}

// payloadFields flattens a payload into the journal's map form.
func payloadFields(p mailbox.Payload) map[string]any {
	switch v := p.(type) {
	case mailbox.StatusPayload:
		return map[string]any{"status": string(v.Status)}
	case mailbox.ModePayload:
		return map[string]any{"mode": string(v.Mode)}
	case mailbox.AttackPayload:
		return map[string]any{"type": v.Type, "duration": v.Duration}
	default:
		return nil
	}
}

// record journals a publish attempt. Failures are logged, never surfaced.
func (o *Orchestrator) record(ctx context.Context, lightID string, action mailbox.Action, payload map[string]any, delivered bool) {
	if o.journal == nil {
		return
	}
	entry := &journal.Entry{
		LightID:   lightID,
		Action:    string(action),
		Payload:   payload,
		Delivered: delivered,
	}
	if err := o.journal.Create(ctx, entry); err != nil {
		o.logger.Warn("journalling command failed",
			"light_id", lightID,
			"action", action,
			"error", err,
		)
	}
}

// newResult returns a Result with empty (non-nil) slices so JSON encodes
// [] instead of null.
func newResult() *Result {
	return &Result{Succeeded: []string{}, Failed: []string{}}
}
