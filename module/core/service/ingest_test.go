package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fleetpipe/fleetpipe/module/core/domain"
)

type mockEvaluator struct {
	evaluateFn func(ctx context.Context, loc *domain.Location) error
}

func (m *mockEvaluator) Evaluate(ctx context.Context, loc *domain.Location) error {
	if m.evaluateFn != nil {
		return m.evaluateFn(ctx, loc)
	}
	return nil
}

type mockGate struct {
	should   bool
	recorded int
}

func (m *mockGate) ShouldBroadcast(_ context.Context, _ *domain.Location) (bool, error) {
	return m.should, nil
}

func (m *mockGate) RecordBroadcast(_ context.Context, _ *domain.Location) error {
	m.recorded++
	return nil
}

type mockLivePublisher struct {
	publishFn func(ctx context.Context, loc *domain.Location) error
	published int
}

func (m *mockLivePublisher) PublishPosition(ctx context.Context, loc *domain.Location) error {
	m.published++
	if m.publishFn != nil {
		return m.publishFn(ctx, loc)
	}
	return nil
}

type mockSegmenter struct {
	calls []struct {
		vehicleID  string
		start, end time.Time
	}
}

func (m *mockSegmenter) Segment(_ context.Context, vehicleID string, start, end time.Time) error {
	m.calls = append(m.calls, struct {
		vehicleID  string
		start, end time.Time
	}{vehicleID, start, end})
	return nil
}

// syncScheduler runs scheduled jobs immediately so tests stay
// deterministic.
type syncScheduler struct {
	scheduled []string
}

func (s *syncScheduler) Schedule(name string, _ time.Duration, fn func(ctx context.Context) error) {
	s.scheduled = append(s.scheduled, name)
	_ = fn(context.Background())
}

func ingestLoc() *domain.Location {
	return &domain.Location{
		OrgID:      "org-1",
		TrackerID:  "TRK-1001",
		VehicleID:  "VEH-1001",
		Lat:        -6.2088,
		Lon:        106.8456,
		RecordedAt: time.Unix(1715003456, 0),
	}
}

func newIngest(gate *mockGate, state *fakeState) (*IngestService, *mockLivePublisher, *mockSegmenter, *syncScheduler) {
	live := &mockLivePublisher{}
	seg := &mockSegmenter{}
	sched := &syncScheduler{}
	svc := NewIngestService(&mockEvaluator{}, gate, live, state, seg, sched)
	svc.now = func() time.Time { return time.Unix(1715003456, 0) }
	return svc, live, seg, sched
}

func TestOnLocationIngested_Broadcasts(t *testing.T) {
	gate := &mockGate{should: true}
	svc, live, _, _ := newIngest(gate, newFakeState())

	err := svc.OnLocationIngested(context.Background(), ingestLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if live.published != 1 {
		t.Errorf("expected 1 publish, got %d", live.published)
	}
	if gate.recorded != 1 {
		t.Errorf("expected broadcast recorded once, got %d", gate.recorded)
	}
}

func TestOnLocationIngested_Suppressed(t *testing.T) {
	gate := &mockGate{should: false}
	svc, live, _, _ := newIngest(gate, newFakeState())

	err := svc.OnLocationIngested(context.Background(), ingestLoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if live.published != 0 {
		t.Errorf("expected no publish, got %d", live.published)
	}
	if gate.recorded != 0 {
		t.Errorf("expected no broadcast recorded, got %d", gate.recorded)
	}
}

func TestOnLocationIngested_DebouncesRecompute(t *testing.T) {
	svc, _, seg, sched := newIngest(&mockGate{should: true}, newFakeState())

	for i := 0; i < 5; i++ {
		if err := svc.OnLocationIngested(context.Background(), ingestLoc()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if len(sched.scheduled) != 1 {
		t.Fatalf("expected 1 scheduled recompute for a burst, got %d", len(sched.scheduled))
	}
	if len(seg.calls) != 1 {
		t.Fatalf("expected 1 segmentation run, got %d", len(seg.calls))
	}

	call := seg.calls[0]
	if call.vehicleID != "VEH-1001" {
		t.Errorf("expected VEH-1001, got %s", call.vehicleID)
	}
	now := time.Unix(1715003456, 0)
	wantStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if !call.start.Equal(wantStart) {
		t.Errorf("expected window start at midnight, got %v", call.start)
	}
	if !call.end.Equal(now) {
		t.Errorf("expected window end at now, got %v", call.end)
	}
}

func TestOnLocationIngested_NoVehicleSkipsRecompute(t *testing.T) {
	svc, _, seg, _ := newIngest(&mockGate{should: true}, newFakeState())

	loc := ingestLoc()
	loc.VehicleID = ""
	if err := svc.OnLocationIngested(context.Background(), loc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seg.calls) != 0 {
		t.Errorf("expected no segmentation for unassigned tracker, got %d", len(seg.calls))
	}
}

func TestOnLocationIngested_EvaluatorError(t *testing.T) {
	evaluator := &mockEvaluator{
		evaluateFn: func(_ context.Context, _ *domain.Location) error {
			return errors.New("redis down")
		},
	}
	svc := NewIngestService(evaluator, &mockGate{}, &mockLivePublisher{}, newFakeState(), &mockSegmenter{}, &syncScheduler{})

	err := svc.OnLocationIngested(context.Background(), ingestLoc())
	if err == nil {
		t.Fatal("expected error")
	}
}
