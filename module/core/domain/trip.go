package domain

import "time"

// Stop is a sub-interval of stillness inside an otherwise-moving trip:
// long enough to be notable, not long enough to split the trip.
type Stop struct {
	Lat         float64   `json:"latitude"`
	Lon         float64   `json:"longitude"`
	StartedAt   time.Time `json:"started_at"`
	DurationSec int64     `json:"duration_sec"`
}

// Trip is a derived segment of continuous vehicle movement bounded by
// stillness. Trips are replaceable projections over the location stream:
// recomputing a window deletes prior trips whose StartedAt falls in the
// window before inserting fresh ones.
type Trip struct {
	ID              int64        `json:"id"`
	OrgID           string       `json:"org_id"`
	VehicleID       string       `json:"vehicle_id"`
	TrackerID       string       `json:"tracker_id"`
	StartedAt       time.Time    `json:"started_at"`
	EndedAt         time.Time    `json:"ended_at"`
	StartLat        float64      `json:"start_latitude"`
	StartLon        float64      `json:"start_longitude"`
	EndLat          float64      `json:"end_latitude"`
	EndLon          float64      `json:"end_longitude"`
	DistanceKm      float64      `json:"distance_km"`
	DurationSec     int64        `json:"duration_sec"`
	IdleDurationSec int64        `json:"idle_duration_sec"`
	MaxSpeed        float64      `json:"max_speed"`
	AverageSpeed    float64      `json:"average_speed"`
	StopsCount      int          `json:"stops_count"`
	Route           [][2]float64 `json:"route"` // [lng,lat] per moving location, arrival order
	Stops           []Stop       `json:"stops"`
}
