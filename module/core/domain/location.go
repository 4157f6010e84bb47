package domain

import "time"

// Location is one GPS ping from a tracker. Pings are append-only and
// ordered by RecordedAt (device clock, not ingestion clock).
type Location struct {
	ID         int64     `json:"id"`
	OrgID      string    `json:"org_id"`
	TrackerID  string    `json:"tracker_id"`
	VehicleID  string    `json:"vehicle_id,omitempty"`
	Lat        float64   `json:"latitude"`
	Lon        float64   `json:"longitude"`
	Altitude   float64   `json:"altitude,omitempty"`
	Heading    float64   `json:"heading,omitempty"`
	Accuracy   float64   `json:"accuracy,omitempty"`
	Satellites int       `json:"satellites,omitempty"`
	Speed      float64   `json:"speed,omitempty"` // device-reported, km/h
	RecordedAt time.Time `json:"recorded_at"`
}

type Vehicle struct {
	VehicleID string `json:"vehicle_id"`
}

type HistoryQuery struct {
	VehicleID string
	Start     time.Time
	End       time.Time
}
