package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rl1809/library-backlog/internal/core/bounded"
	"github.com/rl1809/library-backlog/internal/core/domain"
	"github.com/rl1809/library-backlog/internal/port"
)

var (
	ErrBookNotFound         = errors.New("book not found")
	ErrBookAlreadyAvailable = errors.New("book is already available")
	ErrBookExists           = errors.New("book id already exists")
	// ErrFulfillmentIncomplete marks a return that went through but whose
	// fulfillment pass stopped on a catalogue error.
	ErrFulfillmentIncomplete = errors.New("fulfillment pass incomplete")
)

type BorrowOutcome string

const (
	BorrowOutcomeBorrowed BorrowOutcome = "borrowed"
	BorrowOutcomeQueued   BorrowOutcome = "queued"
)

type BorrowResult struct {
	Outcome BorrowOutcome
	Book    domain.Book
	Request domain.BorrowRequest
	// QueuePosition is the 1-based place of Request in the backlog when queued.
	QueuePosition int
}

type ReturnResult struct {
	// Returned is the snapshot taken at the moment of return.
	Returned domain.ReturnedBook
	// Recorded is false when the returned-books history was full.
	Recorded bool
	Grants   []domain.Grant
}

// LibraryService owns the borrow request backlog and the returned-books
// history. Every operation holds mu, so a fulfillment pass never interleaves
// with another borrow or return.
type LibraryService struct {
	mu        sync.Mutex
	catalogue port.CatalogueRepository
	engine    *FulfillmentEngine
	requests  *bounded.Queue[domain.BorrowRequest]
	returned  *bounded.Stack[domain.ReturnedBook]
	publisher port.EventPublisher
	now       func() time.Time
}

type Option func(*LibraryService)

// WithPublisher sends library events to p after each successful operation.
func WithPublisher(p port.EventPublisher) Option {
	return func(s *LibraryService) {
		s.publisher = p
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *LibraryService) {
		s.now = now
	}
}

func NewLibraryService(catalogue port.CatalogueRepository, queueCapacity, stackCapacity int, opts ...Option) *LibraryService {
	s := &LibraryService{
		catalogue: catalogue,
		engine:    NewFulfillmentEngine(catalogue),
		requests:  bounded.NewQueue[domain.BorrowRequest](queueCapacity),
		returned:  bounded.NewStack[domain.ReturnedBook](stackCapacity),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LibraryService) AddBook(ctx context.Context, id int, title, author string) (domain.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.catalogue.FindByID(ctx, id)
	if err != nil {
		return domain.Book{}, fmt.Errorf("find book %d: %w", id, err)
	}
	if existing != nil {
		return domain.Book{}, ErrBookExists
	}

	book := domain.Book{ID: id, Title: title, Author: author, Available: true}
	if err := s.catalogue.Insert(ctx, book); err != nil {
		return domain.Book{}, fmt.Errorf("insert book %d: %w", id, err)
	}

	log.Info().Int("book_id", id).Str("title", title).Msg("book_added")
	s.publish(ctx, domain.NewEvent(domain.EventBookAdded, book, nil, s.now()))
	return book, nil
}

// Borrow lends the book if it is on the shelf, otherwise queues a request for
// it. A full backlog returns bounded.ErrQueueFull and changes nothing.
func (s *LibraryService) Borrow(ctx context.Context, bookID, requesterID int, requesterName string) (BorrowResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, err := s.catalogue.FindByID(ctx, bookID)
	if err != nil {
		return BorrowResult{}, fmt.Errorf("find book %d: %w", bookID, err)
	}
	if book == nil {
		return BorrowResult{}, ErrBookNotFound
	}

	req := domain.BorrowRequest{
		RequesterID:     requesterID,
		RequesterName:   requesterName,
		RequestedBookID: bookID,
	}

	if book.Available {
		if err := s.catalogue.SetAvailability(ctx, bookID, false); err != nil {
			return BorrowResult{}, fmt.Errorf("mark book %d borrowed: %w", bookID, err)
		}
		book.Available = false

		log.Info().Int("book_id", bookID).Int("requester_id", requesterID).Msg("book_borrowed")
		s.publish(ctx, domain.NewEvent(domain.EventBookBorrowed, *book, &req, s.now()))
		return BorrowResult{Outcome: BorrowOutcomeBorrowed, Book: *book, Request: req}, nil
	}

	if err := s.requests.Enqueue(req); err != nil {
		log.Warn().
			Int("book_id", bookID).
			Int("requester_id", requesterID).
			Int("queue_size", s.requests.Len()).
			Msg("borrow_request_rejected")
		return BorrowResult{}, fmt.Errorf("queue request for book %d: %w", bookID, err)
	}

	log.Info().
		Int("book_id", bookID).
		Int("requester_id", requesterID).
		Int("queue_size", s.requests.Len()).
		Msg("borrow_request_queued")
	s.publish(ctx, domain.NewEvent(domain.EventRequestQueued, *book, &req, s.now()))

	return BorrowResult{
		Outcome:       BorrowOutcomeQueued,
		Book:          *book,
		Request:       req,
		QueuePosition: s.requests.Len(),
	}, nil
}

// Return puts a borrowed book back on the shelf, records it in the
// returned-books history and runs a fulfillment pass.
//
// Once the book is back on the shelf the result is always populated, even
// when an error is returned: bounded.ErrStackFull when the history is full,
// and a wrapped catalogue error when the fulfillment pass fails.
func (s *LibraryService) Return(ctx context.Context, bookID int) (ReturnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, err := s.catalogue.FindByID(ctx, bookID)
	if err != nil {
		return ReturnResult{}, fmt.Errorf("find book %d: %w", bookID, err)
	}
	if book == nil {
		return ReturnResult{}, ErrBookNotFound
	}
	if book.Available {
		return ReturnResult{}, ErrBookAlreadyAvailable
	}

	if err := s.catalogue.SetAvailability(ctx, bookID, true); err != nil {
		return ReturnResult{}, fmt.Errorf("mark book %d available: %w", bookID, err)
	}
	book.Available = true

	result := ReturnResult{
		Returned: domain.ReturnedBook{Book: *book, ReturnedAt: s.now()},
	}

	pushErr := s.returned.Push(result.Returned)
	if pushErr != nil {
		log.Warn().Int("book_id", bookID).Int("history_size", s.returned.Len()).Msg("return_history_full")
	}
	result.Recorded = pushErr == nil

	log.Info().Int("book_id", bookID).Msg("book_returned")
	s.publish(ctx, domain.NewEvent(domain.EventBookReturned, *book, nil, result.Returned.ReturnedAt))

	grants, err := s.engine.ProcessRequests(ctx, s.requests)
	result.Grants = grants
	s.publishGrants(ctx, grants)
	if err != nil {
		return result, errors.Join(pushErr, fmt.Errorf("%w: %w", ErrFulfillmentIncomplete, err))
	}

	return result, pushErr
}

// ProcessRequests runs a fulfillment pass outside of a return, for books made
// available directly in the catalogue.
func (s *LibraryService) ProcessRequests(ctx context.Context) ([]domain.Grant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	grants, err := s.engine.ProcessRequests(ctx, s.requests)
	s.publishGrants(ctx, grants)
	return grants, err
}

func (s *LibraryService) Search(ctx context.Context, bookID int) (domain.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, err := s.catalogue.FindByID(ctx, bookID)
	if err != nil {
		return domain.Book{}, fmt.Errorf("find book %d: %w", bookID, err)
	}
	if book == nil {
		return domain.Book{}, ErrBookNotFound
	}
	return *book, nil
}

func (s *LibraryService) ListBooks(ctx context.Context) ([]domain.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.catalogue.List(ctx)
}

// ListReturned returns the returned-books history, most recent first.
func (s *LibraryService) ListReturned() []domain.ReturnedBook {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.returned.Items()
}

// ListPendingRequests returns the backlog from front to rear.
func (s *LibraryService) ListPendingRequests() []domain.BorrowRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.requests.Items()
}

func (s *LibraryService) publishGrants(ctx context.Context, grants []domain.Grant) {
	for _, g := range grants {
		req := g.Request
		s.publish(ctx, domain.NewEvent(domain.EventRequestGranted, g.Book, &req, s.now()))
	}
}

func (s *LibraryService) publish(ctx context.Context, ev domain.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("event_type", string(ev.Type)).Int("book_id", ev.BookID).Msg("event_publish_failed")
	}
}
