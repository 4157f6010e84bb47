package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/fleetpipe/fleetpipe/module/core/domain"
	"github.com/fleetpipe/fleetpipe/module/core/internal/repository/publisher"
)

var _ publisher.LivePublisher = (*LivePublisher)(nil)

type LivePublisher struct {
	client *redis.Client
}

func NewLivePublisher(client *redis.Client) *LivePublisher {
	return &LivePublisher{client: client}
}

type liveMessage struct {
	TrackerID string  `json:"tracker_id"`
	VehicleID string  `json:"vehicle_id,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Heading   float64 `json:"heading,omitempty"`
	Speed     float64 `json:"speed,omitempty"`
	Timestamp int64   `json:"timestamp"`
}

// PublishPosition pushes the position onto the organization's live
// channel. Subscribers missing a message only miss one map frame.
func (p *LivePublisher) PublishPosition(ctx context.Context, loc *domain.Location) error {
	msg := liveMessage{
		TrackerID: loc.TrackerID,
		VehicleID: loc.VehicleID,
		Latitude:  loc.Lat,
		Longitude: loc.Lon,
		Heading:   loc.Heading,
		Speed:     loc.Speed,
		Timestamp: loc.RecordedAt.Unix(),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal live position: %w", err)
	}

	channel := fmt.Sprintf("fleet:%s:live", loc.OrgID)
	return p.client.Publish(ctx, channel, payload).Err()
}
