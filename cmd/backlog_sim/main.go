package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rl1809/library-backlog/internal/adapter/storage"
	"github.com/rl1809/library-backlog/internal/config"
	"github.com/rl1809/library-backlog/internal/core/bounded"
	"github.com/rl1809/library-backlog/internal/core/domain"
	"github.com/rl1809/library-backlog/internal/core/service"
	"github.com/rl1809/library-backlog/internal/obs"
)

const (
	bookID        = 1
	otherBookID   = 2
	queueCapacity = 20
	totalRequests = 50
)

func main() {
	cfg := config.Load()
	obs.InitLogger("warn", cfg.LogFormat)
	ctx := context.Background()

	catalogue := storage.NewMemoryCatalogue()
	if err := storage.Seed(ctx, catalogue, []domain.Book{
		{ID: bookID, Title: "Popular Book", Author: "Someone", Available: true},
		{ID: otherBookID, Title: "Other Book", Author: "Someone Else", Available: true},
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to seed catalogue")
	}

	svc := service.NewLibraryService(catalogue, queueCapacity, cfg.StackCapacity)

	// Check the popular book out so every borrower below has to queue
	if _, err := svc.Borrow(ctx, bookID, 0, "first-reader"); err != nil {
		log.Fatal().Err(err).Msg("initial borrow failed")
	}

	var queuedCount atomic.Int32
	var rejectedCount atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for i := 1; i <= totalRequests; i++ {
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()

			_, err := svc.Borrow(ctx, bookID, userID, fmt.Sprintf("user-%d", userID))
			switch {
			case err == nil:
				queuedCount.Add(1)
			case errors.Is(err, bounded.ErrQueueFull):
				rejectedCount.Add(1)
			default:
				log.Error().Err(err).Int("user_id", userID).Msg("unexpected borrow error")
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	queued := queuedCount.Load()
	rejected := rejectedCount.Load()
	arrival := svc.ListPendingRequests()

	fmt.Println("========== BACKLOG SIMULATION RESULTS ==========")
	fmt.Printf("Queue Capacity:   %d\n", queueCapacity)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Queued:           %d\n", queued)
	fmt.Printf("Rejected:         %d\n", rejected)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("================================================")

	failed := false
	check := func(ok bool, pass, fail string) {
		if ok {
			fmt.Println("PASS: " + pass)
			return
		}
		failed = true
		fmt.Println("FAIL: " + fail)
	}

	check(queued == queueCapacity && rejected == totalRequests-queueCapacity,
		fmt.Sprintf("exactly %d requests queued, %d rejected", queueCapacity, totalRequests-queueCapacity),
		fmt.Sprintf("expected %d/%d queued/rejected, got %d/%d", queueCapacity, totalRequests-queueCapacity, queued, rejected))

	// Returning the book once per queued reader must hand it over in arrival order
	var granted []domain.BorrowRequest
	for range arrival {
		res, err := svc.Return(ctx, bookID)
		if err != nil && !errors.Is(err, bounded.ErrStackFull) {
			log.Fatal().Err(err).Msg("return failed")
		}
		for _, g := range res.Grants {
			granted = append(granted, g.Request)
		}
	}

	inOrder := len(granted) == len(arrival)
	for i := 0; inOrder && i < len(granted); i++ {
		inOrder = granted[i] == arrival[i]
	}
	check(inOrder,
		"book granted to every queued reader in arrival order",
		fmt.Sprintf("grant order diverged from arrival order (%d grants for %d requests)", len(granted), len(arrival)))
	check(len(svc.ListPendingRequests()) == 0,
		"backlog drained",
		fmt.Sprintf("expected empty backlog, %d left", len(svc.ListPendingRequests())))

	// Head-of-line: a request for a book on the shelf waits behind one that cannot be served
	if _, err := svc.Borrow(ctx, otherBookID, 100, "holder"); err != nil {
		log.Fatal().Err(err).Msg("borrow failed")
	}
	mustQueue(ctx, svc, bookID, 101)
	mustQueue(ctx, svc, otherBookID, 102)
	res, err := svc.Return(ctx, otherBookID)
	if err != nil && !errors.Is(err, bounded.ErrStackFull) {
		log.Fatal().Err(err).Msg("return failed")
	}
	check(len(res.Grants) == 0 && len(svc.ListPendingRequests()) == 2,
		"front request blocks later satisfiable requests",
		fmt.Sprintf("expected no grants and 2 pending, got %d grants and %d pending", len(res.Grants), len(svc.ListPendingRequests())))

	// Shelving the blocking book straight in the catalogue needs an explicit pass
	if err := catalogue.SetAvailability(ctx, bookID, true); err != nil {
		log.Fatal().Err(err).Msg("shelve failed")
	}
	grants, err := svc.ProcessRequests(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("fulfillment pass failed")
	}
	check(len(grants) == 2 && grants[0].Request.RequesterID == 101 && grants[1].Request.RequesterID == 102,
		"explicit pass unblocks the front request and the one behind it",
		fmt.Sprintf("expected grants for 101 then 102, got %d grants", len(grants)))

	if failed {
		os.Exit(1)
	}
}

func mustQueue(ctx context.Context, svc *service.LibraryService, book, userID int) {
	res, err := svc.Borrow(ctx, book, userID, fmt.Sprintf("user-%d", userID))
	if err != nil {
		log.Fatal().Err(err).Int("book_id", book).Msg("borrow failed")
	}
	if res.Outcome != service.BorrowOutcomeQueued {
		log.Fatal().Int("book_id", book).Msg("expected borrow to be queued")
	}
}
