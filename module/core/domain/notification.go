package domain

import "time"

type NotificationKind string

const (
	NotificationGeofence NotificationKind = "geofence"
	NotificationSpeeding NotificationKind = "speeding"
)

// Notification is the payload fanned out to organization members when a
// geofence transition or speeding violation fires.
type Notification struct {
	Kind         NotificationKind  `json:"kind"`
	OrgID        string            `json:"org_id"`
	GeofenceID   string            `json:"geofence_id"`
	GeofenceName string            `json:"geofence_name"`
	VehicleID    string            `json:"vehicle_id"`
	Event        GeofenceEventType `json:"event,omitempty"`
	Speed        float64           `json:"speed,omitempty"`
	SpeedLimit   float64           `json:"speed_limit,omitempty"`
	Lat          float64           `json:"latitude"`
	Lon          float64           `json:"longitude"`
	RecordedAt   time.Time         `json:"recorded_at"`
}
