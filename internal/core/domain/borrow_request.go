package domain

type BorrowRequest struct {
	RequesterID     int
	RequesterName   string
	RequestedBookID int
}

// Grant records a queued request that was handed the book it asked for.
type Grant struct {
	Request BorrowRequest
	Book    Book
}
