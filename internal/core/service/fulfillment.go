package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/rl1809/library-backlog/internal/core/bounded"
	"github.com/rl1809/library-backlog/internal/core/domain"
	"github.com/rl1809/library-backlog/internal/port"
)

// FulfillmentEngine hands newly available books to queued requesters.
type FulfillmentEngine struct {
	catalogue port.CatalogueRepository
}

func NewFulfillmentEngine(catalogue port.CatalogueRepository) *FulfillmentEngine {
	return &FulfillmentEngine{catalogue: catalogue}
}

// ProcessRequests drains queue in arrival order. Only the front request is
// ever looked at: the pass ends as soon as the front request's book is not
// available, even if a later request could be served. A request leaves the
// queue only when it is granted.
//
// The queue is borrowed for the duration of the call and not retained.
func (e *FulfillmentEngine) ProcessRequests(ctx context.Context, queue *bounded.Queue[domain.BorrowRequest]) ([]domain.Grant, error) {
	var grants []domain.Grant

	for !queue.IsEmpty() {
		next, err := queue.Peek()
		if err != nil {
			return grants, err
		}

		book, err := e.catalogue.FindByID(ctx, next.RequestedBookID)
		if err != nil {
			return grants, fmt.Errorf("find book %d: %w", next.RequestedBookID, err)
		}
		if book == nil || !book.Available {
			log.Debug().
				Int("book_id", next.RequestedBookID).
				Int("requester_id", next.RequesterID).
				Int("queue_size", queue.Len()).
				Msg("fulfillment_blocked")
			return grants, nil
		}

		if err := e.catalogue.SetAvailability(ctx, book.ID, false); err != nil {
			return grants, fmt.Errorf("mark book %d borrowed: %w", book.ID, err)
		}
		if _, err := queue.Dequeue(); err != nil {
			return grants, err
		}

		book.Available = false
		grants = append(grants, domain.Grant{Request: next, Book: *book})

		log.Info().
			Int("book_id", book.ID).
			Int("requester_id", next.RequesterID).
			Str("requester_name", next.RequesterName).
			Msg("request_granted")
	}

	return grants, nil
}
