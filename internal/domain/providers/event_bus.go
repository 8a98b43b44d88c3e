package providers

import (
	"context"

	"github.com/veriscope/modelaudit/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to
// progress updates of in-flight investigation runs.
type EventBus interface {
	// Publish publishes a progress snapshot to all subscribers
	Publish(ctx context.Context, channel string, record *entities.ProgressRecord) error

	// Subscribe subscribes to progress snapshots on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.ProgressRecord, error)

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelProgressPrefix is the prefix for per-run progress channels.
const EventChannelProgressPrefix = "progress:"

// GetProgressChannel returns the channel name for one assessment's progress.
func GetProgressChannel(assessmentID string) string {
	return EventChannelProgressPrefix + assessmentID
}
