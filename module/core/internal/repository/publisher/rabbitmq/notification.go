package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/fleetpipe/fleetpipe/module/core/domain"
	"github.com/fleetpipe/fleetpipe/module/core/internal/repository/publisher"
)

var _ publisher.NotificationPublisher = (*NotificationPublisher)(nil)

const (
	exchangeName = "fleet.events"
	queueName    = "fleet_notifications"
)

type NotificationPublisher struct {
	ch *amqp.Channel
}

func NewNotificationPublisher(conn *amqp.Connection) (*NotificationPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchangeName, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(queueName, "", exchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	return &NotificationPublisher{ch: ch}, nil
}

type notificationMessage struct {
	Kind         string   `json:"kind"`
	Recipients   []string `json:"recipients"`
	OrgID        string   `json:"org_id"`
	GeofenceID   string   `json:"geofence_id"`
	GeofenceName string   `json:"geofence_name"`
	VehicleID    string   `json:"vehicle_id"`
	Event        string   `json:"event,omitempty"`
	Speed        float64  `json:"speed,omitempty"`
	SpeedLimit   float64  `json:"speed_limit,omitempty"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	Timestamp    int64    `json:"timestamp"`
}

func (p *NotificationPublisher) Notify(ctx context.Context, recipients []string, n *domain.Notification) error {
	msg := notificationMessage{
		Kind:         string(n.Kind),
		Recipients:   recipients,
		OrgID:        n.OrgID,
		GeofenceID:   n.GeofenceID,
		GeofenceName: n.GeofenceName,
		VehicleID:    n.VehicleID,
		Event:        string(n.Event),
		Speed:        n.Speed,
		SpeedLimit:   n.SpeedLimit,
		Latitude:     n.Lat,
		Longitude:    n.Lon,
		Timestamp:    n.RecordedAt.Unix(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	return p.ch.PublishWithContext(ctx, exchangeName, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}
