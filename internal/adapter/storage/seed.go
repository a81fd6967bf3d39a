package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/rl1809/library-backlog/internal/core/domain"
	"github.com/rl1809/library-backlog/internal/port"
)

// SeedData returns example books to pre-populate a catalogue.
func SeedData() []domain.Book {
	return []domain.Book{
		{ID: 1, Title: "The Go Programming Language", Author: "Alan A. A. Donovan", Available: true},
		{ID: 2, Title: "Introducing Go", Author: "Caleb Doxsey", Available: true},
		{ID: 3, Title: "Concurrency in Go", Author: "Katherine Cox-Buday", Available: true},
		{ID: 4, Title: "Go in Practice", Author: "Matt Butcher", Available: true},
	}
}

// Seed inserts books, skipping ids that already exist.
func Seed(ctx context.Context, repo port.CatalogueRepository, books []domain.Book) error {
	for _, b := range books {
		if err := repo.Insert(ctx, b); err != nil && !errors.Is(err, ErrDuplicateBook) {
			return fmt.Errorf("seed book %d: %w", b.ID, err)
		}
	}
	return nil
}
