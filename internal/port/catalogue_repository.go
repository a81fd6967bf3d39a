package port

import (
	"context"

	"github.com/rl1809/library-backlog/internal/core/domain"
)

type CatalogueRepository interface {
	// Insert appends a book, failing if the id is already taken
	Insert(ctx context.Context, book domain.Book) error

	// FindByID scans the catalogue in insertion order, returns nil if absent
	FindByID(ctx context.Context, id int) (*domain.Book, error)

	// SetAvailability flips the availability flag of an existing book
	SetAvailability(ctx context.Context, id int, available bool) error

	// List returns all books in insertion order
	List(ctx context.Context) ([]domain.Book, error)
}
