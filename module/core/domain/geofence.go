package domain

import "time"

type GeoPoint struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

type GeofenceType string

const (
	GeofenceCircle  GeofenceType = "circle"
	GeofencePolygon GeofenceType = "polygon"
)

// Geofence is a named region owned by an organization. Circle fences use
// Center/RadiusM, polygon fences use the Ring vertex list. The ring is
// stored open; the closing edge back to Ring[0] is implicit.
type Geofence struct {
	ID            string       `json:"id"`
	OrgID         string       `json:"org_id"`
	Name          string       `json:"name"`
	Type          GeofenceType `json:"type"`
	Center        GeoPoint     `json:"center,omitempty"`
	RadiusM       float64      `json:"radius_m,omitempty"`
	Ring          []GeoPoint   `json:"ring,omitempty"`
	SpeedLimitKmh float64      `json:"speed_limit_kmh,omitempty"` // 0 = no limit
	Active        bool         `json:"active"`
}

// HasShape reports whether the fence carries enough geometry to test
// containment. Fences without a usable shape are skipped, not an error.
func (g *Geofence) HasShape() bool {
	switch g.Type {
	case GeofenceCircle:
		return g.RadiusM > 0
	case GeofencePolygon:
		return len(g.Ring) >= 3
	}
	return false
}

type GeofenceEventType string

const (
	GeofenceEnter GeofenceEventType = "enter"
	GeofenceExit  GeofenceEventType = "exit"
)

// GeofenceEvent records a containment transition. Events are append-only
// and never recomputed, unlike trips.
type GeofenceEvent struct {
	ID         int64             `json:"id"`
	OrgID      string            `json:"org_id"`
	GeofenceID string            `json:"geofence_id"`
	VehicleID  string            `json:"vehicle_id"`
	TrackerID  string            `json:"tracker_id"`
	Type       GeofenceEventType `json:"type"`
	Lat        float64           `json:"latitude"`
	Lon        float64           `json:"longitude"`
	RecordedAt time.Time         `json:"recorded_at"`
}
