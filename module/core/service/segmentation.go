package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/fleetpipe/fleetpipe/module/core/domain"
	"github.com/fleetpipe/fleetpipe/module/core/internal/repository/database"
)

const (
	minStopDuration = 180 * time.Second
	minMovingSpeed  = 5.0 // km/h
	maxTripGap      = 3600 * time.Second
)

// TripSegmenter derives trips from the location stream. Segmentation is
// idempotent: a window is recomputed by deleting the trips starting in it
// and inserting fresh ones in a single transaction, so it can be re-run
// at any time.
type TripSegmenter struct {
	locations database.LocationRepository
	trips     database.TripRepository

	// one mutex per vehicle: concurrent recomputations for the same
	// vehicle must not interleave their delete and insert phases.
	locks sync.Map
}

func NewTripSegmenter(locations database.LocationRepository, trips database.TripRepository) *TripSegmenter {
	return &TripSegmenter{locations: locations, trips: trips}
}

func (s *TripSegmenter) Segment(ctx context.Context, vehicleID string, windowStart, windowEnd time.Time) error {
	unlock := s.lockVehicle(vehicleID)
	defer unlock()

	locs, err := s.locations.GetRange(ctx, vehicleID, windowStart, windowEnd)
	if err != nil {
		return fmt.Errorf("read locations: %w", err)
	}
	if len(locs) < 2 {
		// cannot segment; existing trips stay untouched
		return nil
	}

	trips := segmentLocations(locs)
	if err := s.trips.ReplaceWindow(ctx, vehicleID, windowStart, windowEnd, trips); err != nil {
		return fmt.Errorf("replace trips: %w", err)
	}
	return nil
}

func (s *TripSegmenter) lockVehicle(vehicleID string) func() {
	v, _ := s.locks.LoadOrStore(vehicleID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// tripAccumulator carries the in-progress trip through the linear pass.
type tripAccumulator struct {
	startedAt     time.Time
	startLat      float64
	startLon      float64
	route         [][2]float64
	stops         []domain.Stop
	maxSpeed      float64
	totalDistance float64 // km
	lastMoving    domain.Location
	stopStartedAt time.Time // zero when the vehicle is moving
	curStop       int       // index into stops for the current halt, -1 when none
}

// segmentLocations is the single linear pass over locations ordered by
// recorded_at. Pure: all I/O stays in Segment.
func segmentLocations(locs []domain.Location) []domain.Trip {
	var trips []domain.Trip
	var cur *tripAccumulator
	var prev *domain.Location

	for i := range locs {
		l := locs[i]
		speed := effectiveSpeed(prev, &l)
		moving := speed >= minMovingSpeed

		var next *domain.Location
		if i+1 < len(locs) {
			next = &locs[i+1]
		}

		switch {
		case cur == nil && moving:
			cur = &tripAccumulator{
				startedAt:  l.RecordedAt,
				startLat:   l.Lat,
				startLon:   l.Lon,
				route:      [][2]float64{{l.Lon, l.Lat}},
				maxSpeed:   speed,
				lastMoving: l,
				curStop:    -1,
			}

		case cur != nil && moving:
			cur.route = append(cur.route, [2]float64{l.Lon, l.Lat})
			if speed > cur.maxSpeed {
				cur.maxSpeed = speed
			}
			cur.totalDistance += distanceMeters(cur.lastMoving.Lat, cur.lastMoving.Lon, l.Lat, l.Lon) / 1000
			cur.lastMoving = l
			cur.stopStartedAt = time.Time{}
			cur.curStop = -1

		case cur != nil && !moving:
			if cur.stopStartedAt.IsZero() {
				cur.stopStartedAt = l.RecordedAt
			}

			terminates := next == nil || next.RecordedAt.Sub(l.RecordedAt) >= maxTripGap
			if !terminates {
				// Gap to the next ping long enough to be a notable halt,
				// but not long enough to end the trip.
				gap := next.RecordedAt.Sub(cur.stopStartedAt)
				if gap >= minStopDuration {
					if cur.curStop < 0 {
						cur.stops = append(cur.stops, domain.Stop{
							Lat:       l.Lat,
							Lon:       l.Lon,
							StartedAt: cur.stopStartedAt,
						})
						cur.curStop = len(cur.stops) - 1
					}
					// the halt is still ongoing; extend its duration
					cur.stops[cur.curStop].DurationSec = int64(gap.Seconds())
				}
			}

			if terminates {
				trips = append(trips, cur.finalize(l.RecordedAt, locs[0]))
				cur = nil
			}
		}

		prev = &locs[i]
	}

	// trip still active at the end of the window
	if cur != nil {
		trips = append(trips, cur.finalize(cur.lastMoving.RecordedAt, locs[0]))
	}

	return trips
}

// effectiveSpeed derives km/h from the displacement since the previous
// ping, falling back to the device-reported speed for the first one.
// Non-monotonic timestamps clamp to zero rather than failing the pass.
func effectiveSpeed(prev, l *domain.Location) float64 {
	if prev == nil {
		return l.Speed
	}
	dt := l.RecordedAt.Sub(prev.RecordedAt).Seconds()
	if dt <= 0 {
		return 0
	}
	return distanceMeters(prev.Lat, prev.Lon, l.Lat, l.Lon) / dt * 3.6
}

func (a *tripAccumulator) finalize(endedAt time.Time, origin domain.Location) domain.Trip {
	duration := int64(endedAt.Sub(a.startedAt).Seconds())

	var idle int64
	for _, s := range a.stops {
		idle += s.DurationSec
	}

	avgSpeed := 0.0
	if duration > 0 {
		avgSpeed = round2(a.totalDistance / float64(duration) * 3600)
	}

	return domain.Trip{
		OrgID:           origin.OrgID,
		VehicleID:       origin.VehicleID,
		TrackerID:       origin.TrackerID,
		StartedAt:       a.startedAt,
		EndedAt:         endedAt,
		StartLat:        a.startLat,
		StartLon:        a.startLon,
		EndLat:          a.lastMoving.Lat,
		EndLon:          a.lastMoving.Lon,
		DistanceKm:      round2(a.totalDistance),
		DurationSec:     duration,
		IdleDurationSec: idle,
		MaxSpeed:        a.maxSpeed,
		AverageSpeed:    avgSpeed,
		StopsCount:      len(a.stops),
		Route:           a.route,
		Stops:           a.stops,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
