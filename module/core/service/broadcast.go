package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fleetpipe/fleetpipe/module/core/domain"
	"github.com/fleetpipe/fleetpipe/module/core/internal/repository/cache"
)

const (
	broadcastMinInterval = 5 * time.Second
	broadcastMinDistance = 10.0 // meters
	lastBroadcastTTL     = 60 * time.Second
)

// BroadcastThrottle gates the live-position channel per tracker: a ping
// broadcasts when enough time has passed or the tracker moved far enough.
// It is a pure gate; the caller publishes and then records the broadcast.
type BroadcastThrottle struct {
	state cache.StateCache
	now   func() time.Time
}

func NewBroadcastThrottle(state cache.StateCache) *BroadcastThrottle {
	return &BroadcastThrottle{state: state, now: time.Now}
}

type lastBroadcast struct {
	Timestamp int64   `json:"ts"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
}

func (t *BroadcastThrottle) ShouldBroadcast(ctx context.Context, loc *domain.Location) (bool, error) {
	val, present, err := t.state.Get(ctx, broadcastKey(loc.TrackerID))
	if err != nil {
		return false, err
	}
	if !present {
		return true, nil
	}

	var last lastBroadcast
	if err := json.Unmarshal([]byte(val), &last); err != nil {
		// stale or corrupt entry: broadcast and overwrite
		return true, nil
	}

	if t.now().Sub(time.Unix(last.Timestamp, 0)) >= broadcastMinInterval {
		return true, nil
	}
	return distanceMeters(last.Lat, last.Lon, loc.Lat, loc.Lon) > broadcastMinDistance, nil
}

func (t *BroadcastThrottle) RecordBroadcast(ctx context.Context, loc *domain.Location) error {
	val, err := json.Marshal(lastBroadcast{
		Timestamp: t.now().Unix(),
		Lat:       loc.Lat,
		Lon:       loc.Lon,
	})
	if err != nil {
		return fmt.Errorf("marshal last broadcast: %w", err)
	}
	return t.state.Put(ctx, broadcastKey(loc.TrackerID), string(val), lastBroadcastTTL)
}

func broadcastKey(trackerID string) string {
	return fmt.Sprintf("broadcast:last:%s", trackerID)
}
