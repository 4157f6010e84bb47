package database

import (
	"context"
	"time"

	"github.com/fleetpipe/fleetpipe/module/core/domain"
)

type LocationRepository interface {
	Insert(ctx context.Context, loc *domain.Location) error
	GetLatest(ctx context.Context, vehicleID string) (*domain.Location, error)
	// GetRange returns the vehicle's locations with recorded_at in
	// [start, end], ascending. Equal timestamps order by insertion id so
	// the sequence is stable across reads.
	GetRange(ctx context.Context, vehicleID string, start, end time.Time) ([]domain.Location, error)
	GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.Location, error)
	GetAllVehicles(ctx context.Context) ([]domain.Vehicle, error)
}

type TripRepository interface {
	// ReplaceWindow deletes the vehicle's trips whose started_at lies in
	// [start, end] and inserts the given trips, all in one transaction.
	ReplaceWindow(ctx context.Context, vehicleID string, start, end time.Time, trips []domain.Trip) error
	GetByVehicle(ctx context.Context, vehicleID string, start, end time.Time) ([]domain.Trip, error)
}

type GeofenceRepository interface {
	GetActiveByOrg(ctx context.Context, orgID string) ([]domain.Geofence, error)
}

type GeofenceEventRepository interface {
	Insert(ctx context.Context, event *domain.GeofenceEvent) error
}

type MemberRepository interface {
	// GetOrgMemberIDs lists the user ids notified on geofence and
	// speeding events for the organization.
	GetOrgMemberIDs(ctx context.Context, orgID string) ([]string, error)
}
