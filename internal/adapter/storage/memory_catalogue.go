package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/rl1809/library-backlog/internal/core/domain"
)

var (
	ErrDuplicateBook = errors.New("duplicate book id")
	ErrUnknownBook   = errors.New("unknown book id")
)

// MemoryCatalogue is an append-only slice of books searched linearly.
type MemoryCatalogue struct {
	mu    sync.RWMutex
	books []domain.Book
}

func NewMemoryCatalogue() *MemoryCatalogue {
	return &MemoryCatalogue{}
}

func (c *MemoryCatalogue) Insert(_ context.Context, book domain.Book) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.indexOf(book.ID) >= 0 {
		return ErrDuplicateBook
	}
	c.books = append(c.books, book)
	return nil
}

func (c *MemoryCatalogue) FindByID(_ context.Context, id int) (*domain.Book, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.indexOf(id)
	if i < 0 {
		return nil, nil
	}
	book := c.books[i]
	return &book, nil
}

func (c *MemoryCatalogue) SetAvailability(_ context.Context, id int, available bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return ErrUnknownBook
	}
	c.books[i].Available = available
	return nil
}

func (c *MemoryCatalogue) List(_ context.Context) ([]domain.Book, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Book, len(c.books))
	copy(out, c.books)
	return out, nil
}

func (c *MemoryCatalogue) indexOf(id int) int {
	for i := range c.books {
		if c.books[i].ID == id {
			return i
		}
	}
	return -1
}
