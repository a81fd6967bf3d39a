package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventBookAdded      EventType = "book_added"
	EventBookBorrowed   EventType = "book_borrowed"
	EventRequestQueued  EventType = "request_queued"
	EventBookReturned   EventType = "book_returned"
	EventRequestGranted EventType = "request_granted"
)

type Event struct {
	ID            uuid.UUID
	Type          EventType
	BookID        int
	Title         string
	RequesterID   int
	RequesterName string
	OccurredAt    time.Time
}

// NewEvent builds an event about book. requester may be nil for events that
// have no requester (additions and returns).
func NewEvent(eventType EventType, book Book, requester *BorrowRequest, occurredAt time.Time) Event {
	ev := Event{
		ID:         uuid.New(),
		Type:       eventType,
		BookID:     book.ID,
		Title:      book.Title,
		OccurredAt: occurredAt.UTC(),
	}
	if requester != nil {
		ev.RequesterID = requester.RequesterID
		ev.RequesterName = requester.RequesterName
	}
	return ev
}
