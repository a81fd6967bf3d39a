package port

import (
	"context"

	"github.com/rl1809/library-backlog/internal/core/domain"
)

type EventPublisher interface {
	// Publish delivers a library event to subscribers
	Publish(ctx context.Context, event domain.Event) error
}
