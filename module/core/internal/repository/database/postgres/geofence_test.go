package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/fleetpipe/fleetpipe/module/core/domain"
)

func TestGetActiveByOrg_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	cols := []string{
		"id", "org_id", "name", "type",
		"center_latitude", "center_longitude", "radius_m", "ring", "speed_limit_kmh",
	}
	rows := sqlmock.NewRows(cols).
		AddRow("gf-1", "org-1", "depot", "circle", -6.2088, 106.8456, 100.0, nil, 40.0).
		AddRow("gf-2", "org-1", "yard", "polygon", 0.0, 0.0, 0.0,
			[]byte(`[{"latitude":-6.21,"longitude":106.84},{"latitude":-6.21,"longitude":106.85},{"latitude":-6.20,"longitude":106.85}]`), 0.0)

	mock.ExpectQuery(`SELECT (.+) FROM geofences WHERE org_id = (.+) AND active = true`).
		WithArgs("org-1").
		WillReturnRows(rows)

	repo := NewGeofenceRepo(db)
	fences, err := repo.GetActiveByOrg(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fences) != 2 {
		t.Fatalf("expected 2 geofences, got %d", len(fences))
	}

	circle := fences[0]
	if circle.Type != domain.GeofenceCircle || circle.RadiusM != 100 {
		t.Errorf("unexpected circle fence: %+v", circle)
	}
	if !circle.HasShape() {
		t.Error("circle fence should have a shape")
	}

	poly := fences[1]
	if poly.Type != domain.GeofencePolygon || len(poly.Ring) != 3 {
		t.Errorf("unexpected polygon fence: %+v", poly)
	}
}

func TestGeofenceEventInsert_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	ts := time.Unix(1715003456, 0)
	mock.ExpectExec(`INSERT INTO geofence_events`).
		WithArgs("org-1", "gf-1", "VEH-1001", "TRK-1001", "enter", -6.2088, 106.8456, ts).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewGeofenceEventRepo(db)
	err = repo.Insert(context.Background(), &domain.GeofenceEvent{
		OrgID:      "org-1",
		GeofenceID: "gf-1",
		VehicleID:  "VEH-1001",
		TrackerID:  "TRK-1001",
		Type:       domain.GeofenceEnter,
		Lat:        -6.2088,
		Lon:        106.8456,
		RecordedAt: ts,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestGetOrgMemberIDs_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRows([]string{"user_id"}).
		AddRow("user-1").
		AddRow("user-2")

	mock.ExpectQuery(`SELECT user_id FROM organization_members`).
		WithArgs("org-1").
		WillReturnRows(rows)

	repo := NewMemberRepo(db)
	ids, err := repo.GetOrgMemberIDs(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != "user-1" {
		t.Errorf("unexpected member ids: %v", ids)
	}
}
