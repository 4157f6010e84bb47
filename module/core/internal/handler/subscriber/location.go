package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/fleetpipe/fleetpipe/module/core/domain"
)

const topicPattern = "/fleet/tracker/+/location"

type locationService interface {
	SaveLocation(ctx context.Context, loc *domain.Location) error
}

type ingestService interface {
	OnLocationIngested(ctx context.Context, loc *domain.Location) error
}

type locationMessage struct {
	OrgID      string  `json:"org_id"`
	TrackerID  string  `json:"tracker_id"`
	VehicleID  string  `json:"vehicle_id,omitempty"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Altitude   float64 `json:"altitude,omitempty"`
	Heading    float64 `json:"heading,omitempty"`
	Accuracy   float64 `json:"accuracy,omitempty"`
	Satellites int     `json:"satellites,omitempty"`
	Speed      float64 `json:"speed,omitempty"`
	RecordedAt int64   `json:"recorded_at"`
}

type LocationSubscriber struct {
	client      mqtt.Client
	locationSvc locationService
	ingestSvc   ingestService
}

func NewLocationSubscriber(client mqtt.Client, locationSvc locationService, ingestSvc ingestService) *LocationSubscriber {
	return &LocationSubscriber{
		client:      client,
		locationSvc: locationSvc,
		ingestSvc:   ingestSvc,
	}
}

func (s *LocationSubscriber) Start() error {
	token := s.client.Subscribe(topicPattern, 1, s.handleMessage)
	token.Wait()
	return token.Error()
}

func (s *LocationSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var raw locationMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		log.Warnf("invalid location message: %v", err)
		return
	}

	if err := validateLocationMessage(&raw); err != nil {
		log.Warnf("validation error: %v", err)
		return
	}

	loc := &domain.Location{
		OrgID:      raw.OrgID,
		TrackerID:  raw.TrackerID,
		VehicleID:  raw.VehicleID,
		Lat:        raw.Latitude,
		Lon:        raw.Longitude,
		Altitude:   raw.Altitude,
		Heading:    raw.Heading,
		Accuracy:   raw.Accuracy,
		Satellites: raw.Satellites,
		Speed:      raw.Speed,
		RecordedAt: time.Unix(raw.RecordedAt, 0),
	}

	ctx := context.Background()

	if err := s.locationSvc.SaveLocation(ctx, loc); err != nil {
		log.Errorf("save location error: %v", err)
		return
	}

	if err := s.ingestSvc.OnLocationIngested(ctx, loc); err != nil {
		log.Errorf("ingest pipeline error: %v", err)
	}
}

func validateLocationMessage(msg *locationMessage) error {
	if msg.OrgID == "" {
		return fmt.Errorf("org_id: required")
	}
	if msg.TrackerID == "" {
		return fmt.Errorf("tracker_id: required")
	}
	if msg.Latitude < -90 || msg.Latitude > 90 {
		return fmt.Errorf("latitude: must be between -90 and 90")
	}
	if msg.Longitude < -180 || msg.Longitude > 180 {
		return fmt.Errorf("longitude: must be between -180 and 180")
	}
	if msg.RecordedAt <= 0 {
		return fmt.Errorf("recorded_at: must be positive")
	}
	return nil
}
