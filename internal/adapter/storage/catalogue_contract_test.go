package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/library-backlog/internal/core/domain"
	"github.com/rl1809/library-backlog/internal/port"
)

// testCatalogueContract runs the behaviour every catalogue backend must share.
func testCatalogueContract(t *testing.T, newRepo func(t *testing.T) port.CatalogueRepository) {
	t.Run("InsertAndFind", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		require.NoError(t, repo.Insert(ctx, domain.Book{ID: 7, Title: "Dune", Author: "Frank Herbert", Available: true}))

		book, err := repo.FindByID(ctx, 7)
		require.NoError(t, err)
		require.NotNil(t, book)
		assert.Equal(t, domain.Book{ID: 7, Title: "Dune", Author: "Frank Herbert", Available: true}, *book)
	})

	t.Run("FindMissing", func(t *testing.T) {
		book, err := newRepo(t).FindByID(context.Background(), 404)
		assert.NoError(t, err)
		assert.Nil(t, book)
	})

	t.Run("DuplicateID", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)
		require.NoError(t, repo.Insert(ctx, domain.Book{ID: 1, Title: "First", Available: true}))

		err := repo.Insert(ctx, domain.Book{ID: 1, Title: "Second", Available: true})

		assert.ErrorIs(t, err, ErrDuplicateBook)
		book, _ := repo.FindByID(ctx, 1)
		require.NotNil(t, book)
		assert.Equal(t, "First", book.Title)
	})

	t.Run("SetAvailability", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)
		require.NoError(t, repo.Insert(ctx, domain.Book{ID: 2, Title: "Emma", Available: true}))

		require.NoError(t, repo.SetAvailability(ctx, 2, false))
		book, _ := repo.FindByID(ctx, 2)
		assert.False(t, book.Available)

		// setting the same value again is not an error
		require.NoError(t, repo.SetAvailability(ctx, 2, false))

		assert.ErrorIs(t, repo.SetAvailability(ctx, 3, true), ErrUnknownBook)
	})

	t.Run("ListKeepsInsertionOrder", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)
		for _, id := range []int{30, 10, 20} {
			require.NoError(t, repo.Insert(ctx, domain.Book{ID: id, Available: true}))
		}

		books, err := repo.List(ctx)

		require.NoError(t, err)
		require.Len(t, books, 3)
		assert.Equal(t, 30, books[0].ID)
		assert.Equal(t, 10, books[1].ID)
		assert.Equal(t, 20, books[2].ID)
	})

	t.Run("Seed", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		require.NoError(t, Seed(ctx, repo, SeedData()))
		require.NoError(t, Seed(ctx, repo, SeedData()), "seeding twice skips existing ids")

		books, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, books, len(SeedData()))
	})
}
