package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/fleetpipe/fleetpipe/module/core/domain"
	"github.com/fleetpipe/fleetpipe/module/core/internal/repository/database"
)

var _ database.LocationRepository = (*LocationRepo)(nil)

const locationColumns = `id, org_id, tracker_id, vehicle_id, latitude, longitude, altitude, heading, accuracy, satellites, speed, recorded_at`

type LocationRepo struct {
	db *sql.DB
}

func NewLocationRepo(db *sql.DB) *LocationRepo {
	return &LocationRepo{db: db}
}

func (r *LocationRepo) Insert(ctx context.Context, loc *domain.Location) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO locations (org_id, tracker_id, vehicle_id, latitude, longitude, altitude, heading, accuracy, satellites, speed, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		loc.OrgID, loc.TrackerID, nullString(loc.VehicleID), loc.Lat, loc.Lon,
		loc.Altitude, loc.Heading, loc.Accuracy, loc.Satellites, loc.Speed, loc.RecordedAt,
	)
	return err
}

func (r *LocationRepo) GetLatest(ctx context.Context, vehicleID string) (*domain.Location, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE vehicle_id = $1 ORDER BY recorded_at DESC LIMIT 1`,
		vehicleID,
	)

	loc, err := scanLocation(row)
	if err != nil {
		return nil, err
	}
	return loc, nil
}

func (r *LocationRepo) GetRange(ctx context.Context, vehicleID string, start, end time.Time) ([]domain.Location, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+locationColumns+` FROM locations
		 WHERE vehicle_id = $1 AND recorded_at >= $2 AND recorded_at <= $3
		 ORDER BY recorded_at ASC, id ASC`,
		vehicleID, start, end,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return collectLocations(rows)
}

func (r *LocationRepo) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.Location, error) {
	return r.GetRange(ctx, query.VehicleID, query.Start, query.End)
}

func (r *LocationRepo) GetAllVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT vehicle_id FROM locations WHERE vehicle_id IS NOT NULL ORDER BY vehicle_id`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Vehicle
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(&v.VehicleID); err != nil {
			return nil, err
		}
		results = append(results, v)
	}
	return results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLocation(row rowScanner) (*domain.Location, error) {
	var loc domain.Location
	var vehicleID sql.NullString
	if err := row.Scan(
		&loc.ID, &loc.OrgID, &loc.TrackerID, &vehicleID, &loc.Lat, &loc.Lon,
		&loc.Altitude, &loc.Heading, &loc.Accuracy, &loc.Satellites, &loc.Speed, &loc.RecordedAt,
	); err != nil {
		return nil, err
	}
	loc.VehicleID = vehicleID.String
	return &loc, nil
}

func collectLocations(rows *sql.Rows) ([]domain.Location, error) {
	var results []domain.Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *loc)
	}
	return results, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
