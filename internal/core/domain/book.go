package domain

import "time"

type Book struct {
	ID        int
	Title     string
	Author    string
	Available bool
}

// ReturnedBook is a copy of a book taken once it is marked available again,
// so Book.Available is always true. Later catalogue changes, including a
// grant in the same return, do not touch it.
type ReturnedBook struct {
	Book       Book
	ReturnedAt time.Time
}
