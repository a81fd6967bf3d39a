package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/rl1809/library-backlog/internal/core/domain"
)

// The schema sticks to types MySQL and SQLite both accept.
const catalogueSchema = `
CREATE TABLE IF NOT EXISTS books (
	book_id   BIGINT       NOT NULL PRIMARY KEY,
	seq       BIGINT       NOT NULL,
	title     VARCHAR(255) NOT NULL,
	author    VARCHAR(255) NOT NULL,
	available BOOLEAN      NOT NULL
)`

type bookRow struct {
	ID        int    `db:"book_id"`
	Seq       int64  `db:"seq"`
	Title     string `db:"title"`
	Author    string `db:"author"`
	Available bool   `db:"available"`
}

func (r bookRow) toDomain() domain.Book {
	return domain.Book{ID: r.ID, Title: r.Title, Author: r.Author, Available: r.Available}
}

// SQLCatalogue keeps the catalogue in a SQL table. seq preserves insertion
// order so lookups and listings see books in the order they were added.
type SQLCatalogue struct {
	db *sqlx.DB
}

func NewSQLCatalogue(db *sqlx.DB) *SQLCatalogue {
	return &SQLCatalogue{db: db}
}

func OpenMySQL(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}

// OpenSQLite opens a single-connection SQLite handle, which keeps a
// ":memory:" database alive for the lifetime of the handle.
func OpenSQLite(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

func (c *SQLCatalogue) Migrate(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, catalogueSchema); err != nil {
		return fmt.Errorf("create books table: %w", err)
	}
	return nil
}

// Reset empties the catalogue so every run starts from a clean shelf.
func (c *SQLCatalogue) Reset(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM books`); err != nil {
		return fmt.Errorf("reset books: %w", err)
	}
	return nil
}

func (c *SQLCatalogue) Insert(ctx context.Context, book domain.Book) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(1) FROM books WHERE book_id = ?`, book.ID); err != nil {
		return fmt.Errorf("check book: %w", err)
	}
	if count > 0 {
		return ErrDuplicateBook
	}

	var seq int64
	if err := tx.GetContext(ctx, &seq, `SELECT COALESCE(MAX(seq), 0) + 1 FROM books`); err != nil {
		return fmt.Errorf("next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO books (book_id, seq, title, author, available)
		VALUES (?, ?, ?, ?, ?)`,
		book.ID, seq, book.Title, book.Author, book.Available,
	)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}

	return tx.Commit()
}

func (c *SQLCatalogue) FindByID(ctx context.Context, id int) (*domain.Book, error) {
	var row bookRow
	err := c.db.GetContext(ctx, &row, `
		SELECT book_id, seq, title, author, available
		FROM books WHERE book_id = ? ORDER BY seq LIMIT 1`, id)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query book: %w", err)
	}

	book := row.toDomain()
	return &book, nil
}

func (c *SQLCatalogue) SetAvailability(ctx context.Context, id int, available bool) error {
	result, err := c.db.ExecContext(ctx, `UPDATE books SET available = ? WHERE book_id = ?`, available, id)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}

	// MySQL reports zero affected rows for a no-op update, so confirm the row
	// is really missing before failing.
	rows, _ := result.RowsAffected()
	if rows == 0 {
		var count int
		if err := c.db.GetContext(ctx, &count, `SELECT COUNT(1) FROM books WHERE book_id = ?`, id); err != nil {
			return fmt.Errorf("check book: %w", err)
		}
		if count == 0 {
			return ErrUnknownBook
		}
	}

	return nil
}

func (c *SQLCatalogue) List(ctx context.Context) ([]domain.Book, error) {
	var rows []bookRow
	if err := c.db.SelectContext(ctx, &rows, `
		SELECT book_id, seq, title, author, available
		FROM books ORDER BY seq`); err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	out := make([]domain.Book, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}
