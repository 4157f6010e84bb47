package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetpipe/fleetpipe/module/core/domain"
	"github.com/fleetpipe/fleetpipe/module/core/internal/repository/cache"
	"github.com/fleetpipe/fleetpipe/module/core/internal/repository/publisher"
)

const (
	recomputeDebounceTTL = 5 * time.Minute
	recomputeDelay       = 5 * time.Minute
)

type geofenceEvaluator interface {
	Evaluate(ctx context.Context, loc *domain.Location) error
}

type broadcastGate interface {
	ShouldBroadcast(ctx context.Context, loc *domain.Location) (bool, error)
	RecordBroadcast(ctx context.Context, loc *domain.Location) error
}

type segmentRunner interface {
	Segment(ctx context.Context, vehicleID string, windowStart, windowEnd time.Time) error
}

type taskScheduler interface {
	Schedule(name string, delay time.Duration, fn func(ctx context.Context) error)
}

// IngestService drives the per-ping pipeline: geofence evaluation, the
// throttled live broadcast, then the debounced recompute trigger. The
// bulk segmentation itself runs later, from the scheduler.
type IngestService struct {
	evaluator geofenceEvaluator
	throttle  broadcastGate
	live      publisher.LivePublisher
	state     cache.StateCache
	segmenter segmentRunner
	scheduler taskScheduler
	now       func() time.Time
}

func NewIngestService(
	evaluator geofenceEvaluator,
	throttle broadcastGate,
	live publisher.LivePublisher,
	state cache.StateCache,
	segmenter segmentRunner,
	scheduler taskScheduler,
) *IngestService {
	return &IngestService{
		evaluator: evaluator,
		throttle:  throttle,
		live:      live,
		state:     state,
		segmenter: segmenter,
		scheduler: scheduler,
		now:       time.Now,
	}
}

// OnLocationIngested is called once per stored location. A returned error
// means the ping was not fully processed and the host should retry the
// whole ingestion; no partial-success state leaks out.
func (s *IngestService) OnLocationIngested(ctx context.Context, loc *domain.Location) error {
	if err := s.evaluator.Evaluate(ctx, loc); err != nil {
		return fmt.Errorf("geofence evaluation: %w", err)
	}

	ok, err := s.throttle.ShouldBroadcast(ctx, loc)
	if err != nil {
		return fmt.Errorf("broadcast gate: %w", err)
	}
	if ok {
		if err := s.live.PublishPosition(ctx, loc); err != nil {
			return fmt.Errorf("publish live position: %w", err)
		}
		if err := s.throttle.RecordBroadcast(ctx, loc); err != nil {
			return fmt.Errorf("record broadcast: %w", err)
		}
	}

	return s.maybeScheduleRecompute(ctx, loc)
}

// maybeScheduleRecompute coalesces bursts of pings into one deferred
// segmentation job per vehicle per debounce horizon.
func (s *IngestService) maybeScheduleRecompute(ctx context.Context, loc *domain.Location) error {
	if loc.VehicleID == "" {
		return nil
	}

	stored, err := s.state.PutIfAbsent(ctx, debounceKey(loc.VehicleID), "1", recomputeDebounceTTL)
	if err != nil {
		return fmt.Errorf("recompute debounce: %w", err)
	}
	if !stored {
		return nil
	}

	vehicleID := loc.VehicleID
	now := s.now()
	windowStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	s.scheduler.Schedule("segment "+vehicleID, recomputeDelay, func(ctx context.Context) error {
		return s.segmenter.Segment(ctx, vehicleID, windowStart, now)
	})
	return nil
}

func debounceKey(vehicleID string) string {
	return fmt.Sprintf("recompute:debounce:%s", vehicleID)
}
