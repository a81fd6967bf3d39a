package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rl1809/library-backlog/internal/core/domain"
)

// Mock CatalogueRepository
type mockCatalogue struct {
	books   []domain.Book
	findErr error
	lendErr error // returned when a book is marked unavailable
	mu      sync.Mutex
}

func newMockCatalogue(books ...domain.Book) *mockCatalogue {
	return &mockCatalogue{books: books}
}

func (m *mockCatalogue) Insert(ctx context.Context, book domain.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range m.books {
		if b.ID == book.ID {
			return errors.New("duplicate")
		}
	}
	m.books = append(m.books, book)
	return nil
}

func (m *mockCatalogue) FindByID(ctx context.Context, id int) (*domain.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, b := range m.books {
		if b.ID == id {
			found := b
			return &found, nil
		}
	}
	return nil, nil
}

func (m *mockCatalogue) SetAvailability(ctx context.Context, id int, available bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !available && m.lendErr != nil {
		return m.lendErr
	}
	for i := range m.books {
		if m.books[i].ID == id {
			m.books[i].Available = available
			return nil
		}
	}
	return errors.New("missing")
}

func (m *mockCatalogue) List(ctx context.Context) ([]domain.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]domain.Book(nil), m.books...), nil
}

func (m *mockCatalogue) available(id int) bool {
	b, _ := m.FindByID(context.Background(), id)
	return b != nil && b.Available
}

// Mock EventPublisher
type recordingPublisher struct {
	events []domain.Event
	err    error
	mu     sync.Mutex
}

func (p *recordingPublisher) Publish(ctx context.Context, event domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]domain.EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}
