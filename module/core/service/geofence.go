package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetpipe/fleetpipe/module/core/domain"
	"github.com/fleetpipe/fleetpipe/module/core/internal/repository/cache"
	"github.com/fleetpipe/fleetpipe/module/core/internal/repository/database"
	"github.com/fleetpipe/fleetpipe/module/core/internal/repository/publisher"
)

const (
	containmentTTL      = time.Hour
	speedingCooldownTTL = 5 * time.Minute
)

// GeofenceEvaluator tracks per-(geofence, vehicle) containment and reacts
// to transitions only: steady-state membership never produces events.
// Containment lives in the TTL cache; an expired entry just means the
// next ping is treated as a first observation again.
type GeofenceEvaluator struct {
	geofences database.GeofenceRepository
	events    database.GeofenceEventRepository
	members   database.MemberRepository
	state     cache.StateCache
	notifier  publisher.NotificationPublisher
}

func NewGeofenceEvaluator(
	geofences database.GeofenceRepository,
	events database.GeofenceEventRepository,
	members database.MemberRepository,
	state cache.StateCache,
	notifier publisher.NotificationPublisher,
) *GeofenceEvaluator {
	return &GeofenceEvaluator{
		geofences: geofences,
		events:    events,
		members:   members,
		state:     state,
		notifier:  notifier,
	}
}

func (s *GeofenceEvaluator) Evaluate(ctx context.Context, loc *domain.Location) error {
	if loc.VehicleID == "" {
		return nil
	}

	fences, err := s.geofences.GetActiveByOrg(ctx, loc.OrgID)
	if err != nil {
		return fmt.Errorf("load geofences: %w", err)
	}

	var recipients []string
	loadRecipients := func() ([]string, error) {
		if recipients == nil {
			recipients, err = s.members.GetOrgMemberIDs(ctx, loc.OrgID)
			if err != nil {
				return nil, fmt.Errorf("load members: %w", err)
			}
		}
		return recipients, nil
	}

	for i := range fences {
		g := &fences[i]
		if !g.HasShape() {
			continue
		}

		inside := contains(g, loc.Lat, loc.Lon)
		key := containmentKey(g.ID, loc.VehicleID)

		prevVal, present, err := s.state.Get(ctx, key)
		if err != nil {
			return err
		}

		if present && (prevVal == "1") != inside {
			if err := s.emitTransition(ctx, g, loc, inside, loadRecipients); err != nil {
				return err
			}
		}

		if inside && g.SpeedLimitKmh > 0 && loc.Speed > g.SpeedLimitKmh {
			if err := s.checkSpeeding(ctx, g, loc, loadRecipients); err != nil {
				return err
			}
		}

		val := "0"
		if inside {
			val = "1"
		}
		if err := s.state.Put(ctx, key, val, containmentTTL); err != nil {
			return err
		}
	}

	return nil
}

func (s *GeofenceEvaluator) emitTransition(ctx context.Context, g *domain.Geofence, loc *domain.Location, inside bool, loadRecipients func() ([]string, error)) error {
	eventType := domain.GeofenceExit
	if inside {
		eventType = domain.GeofenceEnter
	}

	event := &domain.GeofenceEvent{
		OrgID:      loc.OrgID,
		GeofenceID: g.ID,
		VehicleID:  loc.VehicleID,
		TrackerID:  loc.TrackerID,
		Type:       eventType,
		Lat:        loc.Lat,
		Lon:        loc.Lon,
		RecordedAt: loc.RecordedAt,
	}
	if err := s.events.Insert(ctx, event); err != nil {
		return fmt.Errorf("persist geofence event: %w", err)
	}

	recipients, err := loadRecipients()
	if err != nil {
		return err
	}

	n := &domain.Notification{
		Kind:         domain.NotificationGeofence,
		OrgID:        loc.OrgID,
		GeofenceID:   g.ID,
		GeofenceName: g.Name,
		VehicleID:    loc.VehicleID,
		Event:        eventType,
		Lat:          loc.Lat,
		Lon:          loc.Lon,
		RecordedAt:   loc.RecordedAt,
	}
	if err := s.notifier.Notify(ctx, recipients, n); err != nil {
		return fmt.Errorf("notify geofence event: %w", err)
	}
	return nil
}

// checkSpeeding fires independently of enter/exit transitions, on every
// qualifying ping until the cooldown key lands.
func (s *GeofenceEvaluator) checkSpeeding(ctx context.Context, g *domain.Geofence, loc *domain.Location, loadRecipients func() ([]string, error)) error {
	stored, err := s.state.PutIfAbsent(ctx, speedingKey(loc.VehicleID), "1", speedingCooldownTTL)
	if err != nil {
		return err
	}
	if !stored {
		// still cooling down
		return nil
	}

	recipients, err := loadRecipients()
	if err != nil {
		return err
	}

	n := &domain.Notification{
		Kind:         domain.NotificationSpeeding,
		OrgID:        loc.OrgID,
		GeofenceID:   g.ID,
		GeofenceName: g.Name,
		VehicleID:    loc.VehicleID,
		Speed:        loc.Speed,
		SpeedLimit:   g.SpeedLimitKmh,
		Lat:          loc.Lat,
		Lon:          loc.Lon,
		RecordedAt:   loc.RecordedAt,
	}
	if err := s.notifier.Notify(ctx, recipients, n); err != nil {
		return fmt.Errorf("notify speeding: %w", err)
	}
	return nil
}

func contains(g *domain.Geofence, lat, lon float64) bool {
	switch g.Type {
	case domain.GeofenceCircle:
		return inCircle(lat, lon, g.Center, g.RadiusM)
	case domain.GeofencePolygon:
		return inPolygon(lat, lon, g.Ring)
	}
	return false
}

func containmentKey(geofenceID, vehicleID string) string {
	return fmt.Sprintf("geofence:containment:%s:%s", geofenceID, vehicleID)
}

func speedingKey(vehicleID string) string {
	return fmt.Sprintf("speeding:cooldown:%s", vehicleID)
}
