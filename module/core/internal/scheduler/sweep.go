package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/fleetpipe/fleetpipe/module/core/internal/repository/database"
)

type segmenter interface {
	Segment(ctx context.Context, vehicleID string, windowStart, windowEnd time.Time) error
}

// Sweep re-segments the previous day for every known vehicle each night,
// healing windows whose debounced recompute job was lost (process
// restart, dropped cache entry).
type Sweep struct {
	locations database.LocationRepository
	segmenter segmenter
	cron      *cron.Cron
}

func NewSweep(locations database.LocationRepository, seg segmenter) *Sweep {
	return &Sweep{
		locations: locations,
		segmenter: seg,
		cron:      cron.New(),
	}
}

func (s *Sweep) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return err
	}
	s.cron.Start()
	log.Infof("nightly trip recompute sweep scheduled (%s)", spec)
	return nil
}

func (s *Sweep) Stop() {
	s.cron.Stop()
}

func (s *Sweep) run() {
	ctx := context.Background()

	vehicles, err := s.locations.GetAllVehicles(ctx)
	if err != nil {
		log.Errorf("recompute sweep: list vehicles: %v", err)
		return
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	windowStart := dayStart.AddDate(0, 0, -1)

	for _, v := range vehicles {
		if err := s.segmenter.Segment(ctx, v.VehicleID, windowStart, dayStart); err != nil {
			log.Errorf("recompute sweep: vehicle %s: %v", v.VehicleID, err)
		}
	}
	log.Infof("recompute sweep finished for %d vehicles", len(vehicles))
}
