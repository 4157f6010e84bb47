package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fleetpipe/fleetpipe/module/core/domain"
	"github.com/fleetpipe/fleetpipe/module/core/internal/repository/database"
)

var (
	_ database.GeofenceRepository      = (*GeofenceRepo)(nil)
	_ database.GeofenceEventRepository = (*GeofenceEventRepo)(nil)
	_ database.MemberRepository        = (*MemberRepo)(nil)
)

type GeofenceRepo struct {
	db *sql.DB
}

func NewGeofenceRepo(db *sql.DB) *GeofenceRepo {
	return &GeofenceRepo{db: db}
}

func (r *GeofenceRepo) GetActiveByOrg(ctx context.Context, orgID string) ([]domain.Geofence, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, org_id, name, type, center_latitude, center_longitude, radius_m, ring, speed_limit_kmh
		 FROM geofences WHERE org_id = $1 AND active = true`,
		orgID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Geofence
	for rows.Next() {
		var g domain.Geofence
		var ring []byte
		if err := rows.Scan(
			&g.ID, &g.OrgID, &g.Name, &g.Type,
			&g.Center.Lat, &g.Center.Lon, &g.RadiusM, &ring, &g.SpeedLimitKmh,
		); err != nil {
			return nil, err
		}
		if len(ring) > 0 {
			if err := json.Unmarshal(ring, &g.Ring); err != nil {
				return nil, fmt.Errorf("unmarshal ring: %w", err)
			}
		}
		g.Active = true
		results = append(results, g)
	}
	return results, rows.Err()
}

type GeofenceEventRepo struct {
	db *sql.DB
}

func NewGeofenceEventRepo(db *sql.DB) *GeofenceEventRepo {
	return &GeofenceEventRepo{db: db}
}

func (r *GeofenceEventRepo) Insert(ctx context.Context, event *domain.GeofenceEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO geofence_events (org_id, geofence_id, vehicle_id, tracker_id, type, latitude, longitude, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.OrgID, event.GeofenceID, event.VehicleID, event.TrackerID,
		string(event.Type), event.Lat, event.Lon, event.RecordedAt,
	)
	return err
}

type MemberRepo struct {
	db *sql.DB
}

func NewMemberRepo(db *sql.DB) *MemberRepo {
	return &MemberRepo{db: db}
}

func (r *MemberRepo) GetOrgMemberIDs(ctx context.Context, orgID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM organization_members WHERE org_id = $1`,
		orgID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
