package notify

import (
	"context"
	"errors"

	"github.com/rl1809/library-backlog/internal/core/domain"
	"github.com/rl1809/library-backlog/internal/port"
)

// Fanout delivers each event to every publisher and joins their errors.
type Fanout []port.EventPublisher

func (f Fanout) Publish(ctx context.Context, event domain.Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
