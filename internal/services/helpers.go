package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/scms-platform/records-service/internal/events"
	"github.com/scms-platform/records-service/internal/repositories"
)

// publishEvent publishes after the surrounding transaction has committed.
// Publish failures are logged and never fail the operation.
func publishEvent(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, eventType string, data interface{}) {
	if publisher == nil {
		return
	}
	event := events.NewEvent(eventType, data)
	if err := publisher.Publish(ctx, events.DefaultTopic, event); err != nil {
		logger.Error("Failed to publish event", "event_type", eventType, "event_id", event.ID, "error", err)
	}
}

// emailLocalPart returns everything before the '@', used as a display-name
// fallback during profile bootstrap.
func emailLocalPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

// translateNotFound maps a repository not-found to the service sentinel,
// passing every other error through unchanged.
func translateNotFound(err error, sentinel error) error {
	if repositories.IsNotFoundError(err) {
		return sentinel
	}
	return err
}

func strPtr(s string) *string {
	return &s
}
