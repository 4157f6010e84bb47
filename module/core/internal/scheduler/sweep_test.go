package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/fleetpipe/fleetpipe/module/core/domain"
)

type stubLocationRepo struct {
	vehicles []domain.Vehicle
}

func (s *stubLocationRepo) Insert(_ context.Context, _ *domain.Location) error { return nil }
func (s *stubLocationRepo) GetLatest(_ context.Context, _ string) (*domain.Location, error) {
	return nil, nil
}
func (s *stubLocationRepo) GetRange(_ context.Context, _ string, _, _ time.Time) ([]domain.Location, error) {
	return nil, nil
}
func (s *stubLocationRepo) GetHistory(_ context.Context, _ *domain.HistoryQuery) ([]domain.Location, error) {
	return nil, nil
}
func (s *stubLocationRepo) GetAllVehicles(_ context.Context) ([]domain.Vehicle, error) {
	return s.vehicles, nil
}

type recordingSegmenter struct {
	calls []string
	start time.Time
	end   time.Time
}

func (r *recordingSegmenter) Segment(_ context.Context, vehicleID string, start, end time.Time) error {
	r.calls = append(r.calls, vehicleID)
	r.start, r.end = start, end
	return nil
}

func TestSweepRun_CoversEveryVehicle(t *testing.T) {
	repo := &stubLocationRepo{
		vehicles: []domain.Vehicle{{VehicleID: "VEH-1001"}, {VehicleID: "VEH-1002"}},
	}
	seg := &recordingSegmenter{}

	s := NewSweep(repo, seg)
	s.run()

	if len(seg.calls) != 2 {
		t.Fatalf("expected 2 segmentation runs, got %d", len(seg.calls))
	}
	if seg.calls[0] != "VEH-1001" || seg.calls[1] != "VEH-1002" {
		t.Errorf("unexpected vehicles: %v", seg.calls)
	}

	// window is the full previous calendar day
	if got := seg.end.Sub(seg.start).Round(time.Hour); got != 24*time.Hour {
		t.Errorf("expected a one-day window, got %v", got)
	}
	if seg.start.Hour() != 0 || seg.start.Minute() != 0 {
		t.Errorf("expected window start at midnight, got %v", seg.start)
	}
}

func TestSweepStart_BadSpec(t *testing.T) {
	s := NewSweep(&stubLocationRepo{}, &recordingSegmenter{})
	if err := s.Start("not a cron spec"); err == nil {
		t.Fatal("expected error")
	}
}
