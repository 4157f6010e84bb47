package postgres

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/fleetpipe/fleetpipe/module/core/domain"
)

var locationTestColumns = []string{
	"id", "org_id", "tracker_id", "vehicle_id", "latitude", "longitude",
	"altitude", "heading", "accuracy", "satellites", "speed", "recorded_at",
}

func locationRow(id int64, ts time.Time) []driver.Value {
	return []driver.Value{id, "org-1", "TRK-1001", "VEH-1001", -6.2088, 106.8456, 12.0, 90.0, 5.0, 8, 42.5, ts}
}

func TestInsert_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	ts := time.Unix(1715003456, 0)
	mock.ExpectExec(`INSERT INTO locations`).
		WithArgs("org-1", "TRK-1001", sqlmock.AnyArg(), -6.2088, 106.8456, 12.0, 90.0, 5.0, 8, 42.5, ts).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewLocationRepo(db)
	err = repo.Insert(context.Background(), &domain.Location{
		OrgID:      "org-1",
		TrackerID:  "TRK-1001",
		VehicleID:  "VEH-1001",
		Lat:        -6.2088,
		Lon:        106.8456,
		Altitude:   12.0,
		Heading:    90.0,
		Accuracy:   5.0,
		Satellites: 8,
		Speed:      42.5,
		RecordedAt: ts,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestInsert_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectExec(`INSERT INTO locations`).
		WillReturnError(sqlmock.ErrCancelled)

	repo := NewLocationRepo(db)
	err = repo.Insert(context.Background(), &domain.Location{
		OrgID:      "org-1",
		TrackerID:  "TRK-1001",
		RecordedAt: time.Unix(1715003456, 0),
	})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestGetLatest_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	ts := time.Unix(1715003456, 0)
	rows := sqlmock.NewRows(locationTestColumns).AddRow(locationRow(1, ts)...)

	mock.ExpectQuery(`SELECT (.+) FROM locations WHERE vehicle_id = (.+) ORDER BY recorded_at DESC LIMIT 1`).
		WithArgs("VEH-1001").
		WillReturnRows(rows)

	repo := NewLocationRepo(db)
	loc, err := repo.GetLatest(context.Background(), "VEH-1001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.VehicleID != "VEH-1001" {
		t.Errorf("expected VEH-1001, got %s", loc.VehicleID)
	}
	if loc.Lat != -6.2088 {
		t.Errorf("expected -6.2088, got %f", loc.Lat)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestGetLatest_NoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`SELECT (.+) FROM locations`).
		WithArgs("UNKNOWN").
		WillReturnRows(sqlmock.NewRows(locationTestColumns))

	repo := NewLocationRepo(db)
	_, err = repo.GetLatest(context.Background(), "UNKNOWN")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestGetRange_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	start := time.Unix(1715000000, 0)
	end := time.Unix(1715009999, 0)
	rows := sqlmock.NewRows(locationTestColumns).
		AddRow(locationRow(1, start.Add(10*time.Second))...).
		AddRow(locationRow(2, start.Add(40*time.Second))...)

	mock.ExpectQuery(`SELECT (.+) FROM locations`).
		WithArgs("VEH-1001", start, end).
		WillReturnRows(rows)

	repo := NewLocationRepo(db)
	locs, err := repo.GetRange(context.Background(), "VEH-1001", start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(locs) != 2 {
		t.Fatalf("expected 2 locations, got %d", len(locs))
	}
	if locs[0].ID != 1 || locs[1].ID != 2 {
		t.Errorf("expected ids 1,2 in order, got %d,%d", locs[0].ID, locs[1].ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestGetRange_NullVehicleID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	ts := time.Unix(1715003456, 0)
	rows := sqlmock.NewRows(locationTestColumns).
		AddRow(int64(1), "org-1", "TRK-1001", nil, -6.2088, 106.8456, 0.0, 0.0, 0.0, 0, 0.0, ts)

	mock.ExpectQuery(`SELECT (.+) FROM locations`).
		WillReturnRows(rows)

	repo := NewLocationRepo(db)
	locs, err := repo.GetRange(context.Background(), "VEH-1001", ts.Add(-time.Hour), ts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(locs) != 1 {
		t.Fatalf("expected 1 location, got %d", len(locs))
	}
	if locs[0].VehicleID != "" {
		t.Errorf("expected empty vehicle id, got %q", locs[0].VehicleID)
	}
}

func TestGetAllVehicles_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRows([]string{"vehicle_id"}).
		AddRow("VEH-1001").
		AddRow("VEH-1002")

	mock.ExpectQuery(`SELECT DISTINCT vehicle_id FROM locations`).
		WillReturnRows(rows)

	repo := NewLocationRepo(db)
	vehicles, err := repo.GetAllVehicles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vehicles) != 2 {
		t.Fatalf("expected 2 vehicles, got %d", len(vehicles))
	}
	if vehicles[0].VehicleID != "VEH-1001" {
		t.Errorf("expected VEH-1001, got %s", vehicles[0].VehicleID)
	}
}
