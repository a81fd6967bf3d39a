package notify

import (
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/rl1809/library-backlog/internal/core/domain"
)

type eventPayload struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	BookID        int    `json:"book_id"`
	Title         string `json:"title"`
	RequesterID   int    `json:"requester_id,omitempty"`
	RequesterName string `json:"requester_name,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}

func encodeEvent(ev domain.Event) ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(eventPayload{
		ID:            ev.ID.String(),
		Type:          string(ev.Type),
		BookID:        ev.BookID,
		Title:         ev.Title,
		RequesterID:   ev.RequesterID,
		RequesterName: ev.RequesterName,
		OccurredAt:    ev.OccurredAt.Format(time.RFC3339Nano),
	})
}
