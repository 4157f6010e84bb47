package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fleetpipe/fleetpipe/module/core/domain"
	"github.com/fleetpipe/fleetpipe/module/core/internal/repository/database"
)

var _ database.TripRepository = (*TripRepo)(nil)

const tripColumns = `id, org_id, vehicle_id, tracker_id, started_at, ended_at, start_latitude, start_longitude, end_latitude, end_longitude, distance_km, duration_sec, idle_duration_sec, max_speed, average_speed, stops_count, route, stops`

type TripRepo struct {
	db *sql.DB
}

func NewTripRepo(db *sql.DB) *TripRepo {
	return &TripRepo{db: db}
}

// ReplaceWindow runs the delete and the inserts in one transaction so a
// reader never observes the window mid-recompute.
func (r *TripRepo) ReplaceWindow(ctx context.Context, vehicleID string, start, end time.Time, trips []domain.Trip) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM trips WHERE vehicle_id = $1 AND started_at >= $2 AND started_at <= $3`,
		vehicleID, start, end,
	)
	if err != nil {
		return fmt.Errorf("delete trips: %w", err)
	}

	for _, t := range trips {
		route, err := json.Marshal(t.Route)
		if err != nil {
			return fmt.Errorf("marshal route: %w", err)
		}
		stops, err := json.Marshal(t.Stops)
		if err != nil {
			return fmt.Errorf("marshal stops: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO trips (org_id, vehicle_id, tracker_id, started_at, ended_at, start_latitude, start_longitude, end_latitude, end_longitude, distance_km, duration_sec, idle_duration_sec, max_speed, average_speed, stops_count, route, stops)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
			t.OrgID, t.VehicleID, t.TrackerID, t.StartedAt, t.EndedAt,
			t.StartLat, t.StartLon, t.EndLat, t.EndLon,
			t.DistanceKm, t.DurationSec, t.IdleDurationSec, t.MaxSpeed, t.AverageSpeed,
			t.StopsCount, route, stops,
		)
		if err != nil {
			return fmt.Errorf("insert trip: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *TripRepo) GetByVehicle(ctx context.Context, vehicleID string, start, end time.Time) ([]domain.Trip, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tripColumns+` FROM trips
		 WHERE vehicle_id = $1 AND started_at >= $2 AND started_at <= $3
		 ORDER BY started_at ASC`,
		vehicleID, start, end,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Trip
	for rows.Next() {
		var t domain.Trip
		var route, stops []byte
		if err := rows.Scan(
			&t.ID, &t.OrgID, &t.VehicleID, &t.TrackerID, &t.StartedAt, &t.EndedAt,
			&t.StartLat, &t.StartLon, &t.EndLat, &t.EndLon,
			&t.DistanceKm, &t.DurationSec, &t.IdleDurationSec, &t.MaxSpeed, &t.AverageSpeed,
			&t.StopsCount, &route, &stops,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(route, &t.Route); err != nil {
			return nil, fmt.Errorf("unmarshal route: %w", err)
		}
		if err := json.Unmarshal(stops, &t.Stops); err != nil {
			return nil, fmt.Errorf("unmarshal stops: %w", err)
		}
		results = append(results, t)
	}
	return results, rows.Err()
}
