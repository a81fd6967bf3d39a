package handler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/rl1809/library-backlog/internal/core/bounded"
	"github.com/rl1809/library-backlog/internal/core/service"
)

const (
	choiceAdd = iota + 1
	choiceBorrow
	choiceReturn
	choiceSearch
	choiceReturned
	choiceRequests
	choiceExit
)

const rule = "============================================="

// ConsoleHandler drives the library from a line-oriented menu.
type ConsoleHandler struct {
	svc *service.LibraryService
	in  *bufio.Scanner
	out io.Writer
	now func() time.Time
}

func NewConsoleHandler(svc *service.LibraryService, in io.Reader, out io.Writer) *ConsoleHandler {
	return &ConsoleHandler{
		svc: svc,
		in:  bufio.NewScanner(in),
		out: out,
		now: time.Now,
	}
}

// Run shows the menu until the operator exits, input ends or ctx is done.
func (h *ConsoleHandler) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		h.menu()
		choice, ok := h.promptInt("Enter your choice: ")
		if !ok {
			return nil
		}

		var err error
		switch choice {
		case choiceAdd:
			err = h.addBook(ctx)
		case choiceBorrow:
			err = h.borrowBook(ctx)
		case choiceReturn:
			err = h.returnBook(ctx)
		case choiceSearch:
			err = h.searchBook(ctx)
		case choiceReturned:
			h.displayReturned()
		case choiceRequests:
			h.displayRequests()
		case choiceExit:
			h.printf("Exiting the program. Goodbye!\n")
			return nil
		default:
			h.printf("Invalid choice. Please try again.\n")
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			h.printf("%s\n", errorMessage(err))
		}
	}
}

func (h *ConsoleHandler) menu() {
	h.printf("\n%s\n", rule)
	h.printf("        Library Management System\n")
	h.printf("%s\n", rule)
	h.printf("1. Add New Book\n")
	h.printf("2. Borrow Book\n")
	h.printf("3. Return Book\n")
	h.printf("4. Search Book\n")
	h.printf("5. Display Recently Returned Books\n")
	h.printf("6. Display Borrow Requests\n")
	h.printf("7. Exit\n")
	h.printf("%s\n", rule)
}

func (h *ConsoleHandler) addBook(ctx context.Context) error {
	id, ok := h.promptInt("Enter Book ID: ")
	if !ok {
		return io.EOF
	}
	title, ok := h.promptLine("Enter Book Title: ")
	if !ok {
		return io.EOF
	}
	author, ok := h.promptLine("Enter Author Name: ")
	if !ok {
		return io.EOF
	}

	book, err := h.svc.AddBook(ctx, id, title, author)
	if err != nil {
		return err
	}
	h.printf("Book %q by %s added successfully!\n", book.Title, book.Author)
	return nil
}

func (h *ConsoleHandler) borrowBook(ctx context.Context) error {
	bookID, ok := h.promptInt("Enter Book ID to borrow: ")
	if !ok {
		return io.EOF
	}
	userID, ok := h.promptInt("Enter User ID: ")
	if !ok {
		return io.EOF
	}
	name, ok := h.promptLine("Enter User Name: ")
	if !ok {
		return io.EOF
	}

	res, err := h.svc.Borrow(ctx, bookID, userID, name)
	if err != nil {
		return err
	}

	switch res.Outcome {
	case service.BorrowOutcomeBorrowed:
		h.printf("Book %q borrowed successfully!\n", res.Book.Title)
	case service.BorrowOutcomeQueued:
		h.printf("Book is currently unavailable. Adding to borrow request queue.\n")
		h.printf("You've been added to the borrow request queue (position %d).\n", res.QueuePosition)
	}
	return nil
}

func (h *ConsoleHandler) returnBook(ctx context.Context) error {
	bookID, ok := h.promptInt("Enter Book ID to return: ")
	if !ok {
		return io.EOF
	}

	res, err := h.svc.Return(ctx, bookID)
	// A zero ReturnedAt means the book never went back on the shelf.
	if res.Returned.ReturnedAt.IsZero() {
		return err
	}

	h.printf("Book %q returned successfully!\n", res.Returned.Book.Title)
	if !res.Recorded {
		h.printf("%s\n", errorMessage(bounded.ErrStackFull))
	}
	for _, g := range res.Grants {
		h.printf("Book %q borrowed by %s (User ID: %d)\n", g.Book.Title, g.Request.RequesterName, g.Request.RequesterID)
	}

	// The stack-full warning is already printed above.
	if errors.Is(err, service.ErrFulfillmentIncomplete) {
		return err
	}
	return nil
}

func (h *ConsoleHandler) searchBook(ctx context.Context) error {
	bookID, ok := h.promptInt("Enter Book ID to search: ")
	if !ok {
		return io.EOF
	}

	book, err := h.svc.Search(ctx, bookID)
	if err != nil {
		return err
	}

	available := "No"
	if book.Available {
		available = "Yes"
	}
	h.printf("Book Found:\n")
	h.printf("Title: %s\n", book.Title)
	h.printf("Author: %s\n", book.Author)
	h.printf("Available: %s\n", available)
	return nil
}

func (h *ConsoleHandler) displayReturned() {
	history := h.svc.ListReturned()
	if len(history) == 0 {
		h.printf("No recently returned books.\n")
		return
	}

	now := h.now()
	h.printf("Recently Returned Books:\n")
	for _, r := range history {
		h.printf("Book ID: %d, Title: %s, Author: %s (returned %s)\n",
			r.Book.ID, r.Book.Title, r.Book.Author, humanize.RelTime(r.ReturnedAt, now, "ago", "from now"))
	}
}

func (h *ConsoleHandler) displayRequests() {
	pending := h.svc.ListPendingRequests()
	if len(pending) == 0 {
		h.printf("No pending borrow requests.\n")
		return
	}

	h.printf("Borrow Request Queue:\n")
	for _, r := range pending {
		h.printf("User ID: %d, Name: %s, Requested Book ID: %d\n", r.RequesterID, r.RequesterName, r.RequestedBookID)
	}
}

// promptInt keeps asking until it reads an integer. ok is false once input
// is exhausted.
func (h *ConsoleHandler) promptInt(label string) (int, bool) {
	for {
		line, ok := h.promptLine(label)
		if !ok {
			return 0, false
		}
		n, err := strconv.Atoi(line)
		if err == nil {
			return n, true
		}
		h.printf("Please enter a whole number.\n")
	}
}

func (h *ConsoleHandler) promptLine(label string) (string, bool) {
	h.printf("%s", label)
	if !h.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(h.in.Text()), true
}

func (h *ConsoleHandler) printf(format string, args ...any) {
	fmt.Fprintf(h.out, format, args...)
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrFulfillmentIncomplete):
		return "Warning: pending requests were not processed: " + err.Error()
	case errors.Is(err, service.ErrBookNotFound):
		return "Book not found in the library."
	case errors.Is(err, service.ErrBookAlreadyAvailable):
		return "This book was already available in the library."
	case errors.Is(err, service.ErrBookExists):
		return "A book with this ID already exists."
	case errors.Is(err, bounded.ErrQueueFull):
		return "Error: Queue is full. Cannot add more requests."
	case errors.Is(err, bounded.ErrStackFull):
		return "Warning: Returned-books history is full. This return was not recorded."
	default:
		return "Error: " + err.Error()
	}
}
