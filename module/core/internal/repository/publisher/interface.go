package publisher

import (
	"context"

	"github.com/fleetpipe/fleetpipe/module/core/domain"
)

// NotificationPublisher fans a notification out to the given organization
// members.
type NotificationPublisher interface {
	Notify(ctx context.Context, recipients []string, n *domain.Notification) error
}

// LivePublisher pushes a position onto the live channel consumed by
// real-time map clients.
type LivePublisher interface {
	PublishPosition(ctx context.Context, loc *domain.Location) error
}
