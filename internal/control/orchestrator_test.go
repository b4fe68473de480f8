package control

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"trafficgrid/internal/infrastructure/logging"
	"trafficgrid/internal/journal"
	"trafficgrid/internal/mailbox"
)

// stubPublisher records publishes and fails for targets in failFor.
type stubPublisher struct {
	calls   []publishCall
	failFor map[string]bool
}

type publishCall struct {
	target  string
	action  mailbox.Action
	payload mailbox.Payload
}

func (s *stubPublisher) Publish(target string, action mailbox.Action, payload mailbox.Payload) bool {
	s.calls = append(s.calls, publishCall{target, action, payload})
	return !s.failFor[target]
}

// stubLister serves a fixed id list.
type stubLister struct {
	ids []string
}

func (s *stubLister) LightIDs() []string { return s.ids }

// memJournal collects entries in memory.
type memJournal struct {
	entries []journal.Entry
	err     error
}

func (m *memJournal) Create(_ context.Context, e *journal.Entry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memJournal) List(_ context.Context, _ journal.Filter) (*journal.ListResult, error) {
	return &journal.ListResult{Entries: m.entries, Total: len(m.entries)}, nil
}

func newTestOrchestrator(pub *stubPublisher, ids []string, repo journal.Repository) *Orchestrator {
	return New(pub, &stubLister{ids: ids}, repo, logging.Default())
}

func TestSetAllMode_PartialFailureAccounting(t *testing.T) {
	pub := &stubPublisher{failFor: map[string]bool{"light_B": true}}
	o := newTestOrchestrator(pub, []string{"light_A", "light_B", "light_C"}, nil)

	result, err := o.SetAllMode(context.Background(), mailbox.ModeManual)
	if err != nil {
		t.Fatalf("SetAllMode() error = %v", err)
	}

	if !reflect.DeepEqual(result.Succeeded, []string{"light_A", "light_C"}) {
		t.Errorf("Succeeded = %v, want [light_A light_C]", result.Succeeded)
	}
	if !reflect.DeepEqual(result.Failed, []string{"light_B"}) {
		t.Errorf("Failed = %v, want [light_B]", result.Failed)
	}
	if result.Total() != 3 {
		t.Errorf("Total() = %d, want 3", result.Total())
	}
}

func TestSetAllMode_NoLights(t *testing.T) {
	o := newTestOrchestrator(&stubPublisher{}, nil, nil)

	if _, err := o.SetAllMode(context.Background(), mailbox.ModeManual); !errors.Is(err, ErrNoLights) {
		t.Errorf("SetAllMode() error = %v, want ErrNoLights", err)
	}
}

func TestSetAllMode_PublishesInSnapshotOrder(t *testing.T) {
	pub := &stubPublisher{}
	o := newTestOrchestrator(pub, []string{"c", "a", "b"}, nil)

	if _, err := o.SetAllMode(context.Background(), mailbox.ModeAutomatic); err != nil {
		t.Fatalf("SetAllMode() error = %v", err)
	}

	var targets []string
	for _, call := range pub.calls {
		targets = append(targets, call.target)
	}
	if !reflect.DeepEqual(targets, []string{"c", "a", "b"}) {
		t.Errorf("publish order = %v, want snapshot order [c a b]", targets)
	}
}

func TestBroadcast_MaterialisesPerLightRecords(t *testing.T) {
	pub := &stubPublisher{}
	o := newTestOrchestrator(pub, []string{"light_A", "light_B"}, nil)

	result, err := o.Broadcast(context.Background(), mailbox.ActionRandomize, mailbox.EmptyPayload{})
	if err != nil {
		t.Fatalf("Broadcast() error = %v", err)
	}
	if len(result.Succeeded) != 2 {
		t.Errorf("Succeeded = %v, want both lights", result.Succeeded)
	}

	// One record per light, never a single multi-target command.
	if len(pub.calls) != 2 {
		t.Fatalf("publishes = %d, want 2", len(pub.calls))
	}
	for _, call := range pub.calls {
		if call.action != mailbox.ActionRandomize {
			t.Errorf("action = %v, want randomize", call.action)
		}
	}
}

func TestAttack_ModeFailureSkipsStatusWrite(t *testing.T) {
	pub := &stubPublisher{failFor: map[string]bool{"light_B": true}}
	o := newTestOrchestrator(pub, []string{"light_A", "light_B"}, nil)

	result, err := o.Attack(context.Background(), AttackAllRed, 10)
	if err != nil {
		t.Fatalf("Attack() error = %v", err)
	}

	if !reflect.DeepEqual(result.Succeeded, []string{"light_A"}) {
		t.Errorf("Succeeded = %v, want [light_A]", result.Succeeded)
	}
	if !reflect.DeepEqual(result.Failed, []string{"light_B"}) {
		t.Errorf("Failed = %v, want [light_B]", result.Failed)
	}

	// light_A: set_mode + set_status. light_B: set_mode only, status skipped.
	want := []publishCall{
		{"light_A", mailbox.ActionSetMode, mailbox.ModePayload{Mode: mailbox.ModeAPIControlled}},
		{"light_A", mailbox.ActionSetStatus, mailbox.StatusPayload{Status: mailbox.StatusRed}},
		{"light_B", mailbox.ActionSetMode, mailbox.ModePayload{Mode: mailbox.ModeAPIControlled}},
	}
	if !reflect.DeepEqual(pub.calls, want) {
		t.Errorf("publishes = %v, want %v", pub.calls, want)
	}

	if result.ID == "" {
		t.Error("attack should carry an id")
	}
	if result.Duration != 10 {
		t.Errorf("Duration = %d, want 10", result.Duration)
	}
}

func TestAttack_RandomLightsUsesPickedColours(t *testing.T) {
	pub := &stubPublisher{}
	o := newTestOrchestrator(pub, []string{"light_A", "light_B", "light_C"}, nil)
	// Deterministic picker: red, yellow, green in turn.
	next := 0
	o.pickStatus = func(n int) int {
		v := next % n
		next++
		return v
	}

	result, err := o.Attack(context.Background(), AttackRandomLights, 5)
	if err != nil {
		t.Fatalf("Attack() error = %v", err)
	}
	if len(result.Succeeded) != 3 {
		t.Fatalf("Succeeded = %v, want all three", result.Succeeded)
	}

	var statuses []mailbox.LightStatus
	for _, call := range pub.calls {
		if call.action == mailbox.ActionSetStatus {
			statuses = append(statuses, call.payload.(mailbox.StatusPayload).Status)
		}
	}
	want := []mailbox.LightStatus{mailbox.StatusRed, mailbox.StatusYellow, mailbox.StatusGreen}
	if !reflect.DeepEqual(statuses, want) {
		t.Errorf("forced colours = %v, want %v", statuses, want)
	}
}

func TestAttack_UnknownType(t *testing.T) {
	o := newTestOrchestrator(&stubPublisher{}, []string{"light_A"}, nil)

	if _, err := o.Attack(context.Background(), "dns_flood", 5); !errors.Is(err, ErrUnknownAttackType) {
		t.Errorf("Attack() error = %v, want ErrUnknownAttackType", err)
	}
}

func TestRestore_SetsAutomaticEverywhere(t *testing.T) {
	pub := &stubPublisher{}
	o := newTestOrchestrator(pub, []string{"light_A", "light_B"}, nil)

	result, err := o.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if len(result.Succeeded) != 2 {
		t.Errorf("Succeeded = %v, want both lights", result.Succeeded)
	}
	for _, call := range pub.calls {
		if call.action != mailbox.ActionSetMode {
			t.Errorf("action = %v, want set_mode", call.action)
		}
		if call.payload.(mailbox.ModePayload).Mode != mailbox.ModeAutomatic {
			t.Errorf("mode = %v, want automatic", call.payload)
		}
	}
}

func TestJournalWriteThrough(t *testing.T) {
	pub := &stubPublisher{failFor: map[string]bool{"light_B": true}}
	repo := &memJournal{}
	o := newTestOrchestrator(pub, nil, repo)

	if !o.SetStatus(context.Background(), "light_A", mailbox.StatusGreen) {
		t.Fatal("SetStatus() should succeed")
	}
	if o.SetMode(context.Background(), "light_B", mailbox.ModeManual) {
		t.Fatal("SetMode() should fail for light_B")
	}

	if len(repo.entries) != 2 {
		t.Fatalf("journalled %d entries, want 2", len(repo.entries))
	}
	if !repo.entries[0].Delivered || repo.entries[0].Payload["status"] != "green" {
		t.Errorf("entry 0 = %+v, want delivered green", repo.entries[0])
	}
	if repo.entries[1].Delivered || repo.entries[1].Payload["mode"] != "manual" {
		t.Errorf("entry 1 = %+v, want undelivered manual", repo.entries[1])
	}
}

func TestJournalFailureDoesNotFailCommand(t *testing.T) {
	repo := &memJournal{err: errors.New("disk full")}
	o := newTestOrchestrator(&stubPublisher{}, nil, repo)

	if !o.SetStatus(context.Background(), "light_A", mailbox.StatusRed) {
		t.Error("SetStatus() should succeed even when journalling fails")
	}
}

// End-to-end: fan a mode change through a real mailbox writer into a
// temp directory and verify one well-formed command file per light.
func TestSetAllMode_EndToEndMailbox(t *testing.T) {
	dir := t.TempDir()
	writer, err := mailbox.NewWriter(dir, logging.Default())
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	o := New(writer, &stubLister{ids: []string{"light_1", "light_2"}}, nil, logging.Default())

	result, err := o.SetAllMode(context.Background(), mailbox.ModeAPIControlled)
	if err != nil {
		t.Fatalf("SetAllMode() error = %v", err)
	}
	if len(result.Succeeded) != 2 || len(result.Failed) != 0 {
		t.Fatalf("result = %+v, want 2 succeeded", result)
	}

	files := commandFiles(t, dir)
	if len(files) != 2 {
		t.Fatalf("found %d command files, want 2", len(files))
	}
	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		var cmd map[string]any
		if err := json.Unmarshal(data, &cmd); err != nil {
			t.Fatalf("command file %s is not valid JSON: %v", name, err)
		}
		if cmd["action"] != "set_mode" || cmd["mode"] != "api_controlled" {
			t.Errorf("command %s = %v, want set_mode/api_controlled", name, cmd)
		}
	}
}

// commandFiles lists the visible command files in dir.
func commandFiles(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading mailbox dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), "_command.json") {
			names = append(names, e.Name())
		}
	}
	return names
}
