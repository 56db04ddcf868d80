package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// booksSchema holds the books table with its isbn uniqueness constraint
// and the FTS5 index over title/author/genre. The triggers keep the
// index in sync with every write, so TextSearch always sees the
// current collection.
const booksSchema = `
CREATE TABLE IF NOT EXISTS books (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    author TEXT NOT NULL,
    genre TEXT NOT NULL,
    published_year INTEGER NOT NULL,
    isbn TEXT NOT NULL UNIQUE,
    stock_count INTEGER NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_books_author ON books(author);
CREATE INDEX IF NOT EXISTS idx_books_genre ON books(genre);
CREATE INDEX IF NOT EXISTS idx_books_published_year ON books(published_year);

CREATE VIRTUAL TABLE IF NOT EXISTS books_fts USING fts5(title, author, genre, book_id UNINDEXED);

CREATE TRIGGER IF NOT EXISTS books_fts_insert AFTER INSERT ON books BEGIN
    INSERT INTO books_fts(title, author, genre, book_id)
    VALUES (new.title, new.author, new.genre, new.id);
END;

CREATE TRIGGER IF NOT EXISTS books_fts_delete AFTER DELETE ON books BEGIN
    DELETE FROM books_fts WHERE book_id = old.id;
END;

CREATE TRIGGER IF NOT EXISTS books_fts_update AFTER UPDATE ON books BEGIN
    DELETE FROM books_fts WHERE book_id = old.id;
    INSERT INTO books_fts(title, author, genre, book_id)
    VALUES (new.title, new.author, new.genre, new.id);
END;
`

const bookColumns = "id, title, author, genre, published_year, isbn, stock_count, created_at, updated_at"

type sqliteBookStorage struct {
	logger *zap.Logger
	db     *sql.DB
}

// GetSQLiteClient opens the database file, applies the schema and
// provides a ready to use client.
func GetSQLiteClient(config *Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", config.SQLite.FilePath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open the database: %w", err)
	}
	if config.SQLite.FilePath == ":memory:" {
		// the pool must not hand out a second connection, each one
		// would get its own empty in-memory database.
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("test connection failed: %w", err)
	}
	if _, err = db.Exec(booksSchema); err != nil {
		return nil, fmt.Errorf("failed to set up books schema: %w", err)
	}
	return db, nil
}

// NewSQLiteBookStorage provides an instance of sqlite-based book storage.
func NewSQLiteBookStorage(logger *zap.Logger, db *sql.DB) BookStorage {
	return &sqliteBookStorage{
		logger: logger,
		db:     db,
	}
}

// Add inserts a new book record. A colliding isbn fails with ErrDuplicateISBN.
func (ss *sqliteBookStorage) Add(ctx context.Context, book Book) error {
	_, err := ss.db.ExecContext(ctx,
		"INSERT INTO books ("+bookColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		book.ID, book.Title, book.Author, book.Genre, book.PublishedYear,
		book.ISBN, book.StockCount, book.CreatedAt, book.UpdatedAt,
	)
	if isUniqueConstraintError(err) {
		return ErrDuplicateISBN
	}
	return err
}

// GetOne retrieves a book record based on its ID.
func (ss *sqliteBookStorage) GetOne(ctx context.Context, id string) (Book, error) {
	row := ss.db.QueryRowContext(ctx, "SELECT "+bookColumns+" FROM books WHERE id = ?", id)
	book, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Book{}, ErrBookNotFound
	}
	return book, err
}

// Update replaces an existing book record data. It fails with
// ErrBookNotFound when the record is absent and ErrDuplicateISBN when
// the new isbn belongs to another record.
func (ss *sqliteBookStorage) Update(ctx context.Context, book Book) (Book, error) {
	result, err := ss.db.ExecContext(ctx,
		`UPDATE books SET title = ?, author = ?, genre = ?, published_year = ?,
		 isbn = ?, stock_count = ?, created_at = ?, updated_at = ? WHERE id = ?`,
		book.Title, book.Author, book.Genre, book.PublishedYear,
		book.ISBN, book.StockCount, book.CreatedAt, book.UpdatedAt, book.ID,
	)
	if isUniqueConstraintError(err) {
		return book, ErrDuplicateISBN
	}
	if err != nil {
		return book, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return book, err
	}
	if n == 0 {
		return book, ErrBookNotFound
	}
	return book, nil
}

// Delete removes a book record based on its ID.
func (ss *sqliteBookStorage) Delete(ctx context.Context, id string) error {
	result, err := ss.db.ExecContext(ctx, "DELETE FROM books WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookNotFound
	}
	return nil
}

// GetPage retrieves a window of books in insertion order.
func (ss *sqliteBookStorage) GetPage(ctx context.Context, offset, limit int) ([]Book, error) {
	rows, err := ss.db.QueryContext(ctx,
		"SELECT "+bookColumns+" FROM books ORDER BY rowid LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return collectBooks(rows)
}

// GetAll retrieves the full books collection in insertion order.
func (ss *sqliteBookStorage) GetAll(ctx context.Context) ([]Book, error) {
	rows, err := ss.db.QueryContext(ctx, "SELECT "+bookColumns+" FROM books ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("get all books: %w", err)
	}
	return collectBooks(rows)
}

// Count returns the total number of stored books.
func (ss *sqliteBookStorage) Count(ctx context.Context) (int, error) {
	var total int
	err := ss.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM books").Scan(&total)
	return total, err
}

// TextSearch runs the query against the FTS5 index over title, author
// and genre. Candidates come back ordered by relevance, best first.
func (ss *sqliteBookStorage) TextSearch(ctx context.Context, query string) ([]Book, error) {
	ftsQuery := buildFTSQuery(query)
	if ftsQuery == "" {
		return []Book{}, nil
	}
	rows, err := ss.db.QueryContext(ctx,
		`SELECT b.id, b.title, b.author, b.genre, b.published_year, b.isbn,
		        b.stock_count, b.created_at, b.updated_at
		 FROM books_fts
		 JOIN books b ON books_fts.book_id = b.id
		 WHERE books_fts MATCH ?
		 ORDER BY rank`, ftsQuery)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return collectBooks(rows)
}

var whitespaceRE = regexp.MustCompile(`\s+`)

// buildFTSQuery turns a user query into a safe FTS5 match expression:
// special characters are stripped and the terms are combined with OR so
// any matching field term brings the record into the candidate pool.
func buildFTSQuery(query string) string {
	escaped := strings.ReplaceAll(query, `"`, `""`)
	for _, c := range []string{"-", "'", "(", ")", "{", "}", "*", ":", "^"} {
		escaped = strings.ReplaceAll(escaped, c, " ")
	}
	escaped = whitespaceRE.ReplaceAllString(strings.TrimSpace(escaped), " ")
	if escaped == "" {
		return ""
	}
	terms := strings.Split(escaped, " ")
	for i, t := range terms {
		terms[i] = `"` + t + `"*`
	}
	return strings.Join(terms, " OR ")
}

func isUniqueConstraintError(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func scanBook(row *sql.Row) (Book, error) {
	var b Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Genre, &b.PublishedYear,
		&b.ISBN, &b.StockCount, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func collectBooks(rows *sql.Rows) ([]Book, error) {
	defer rows.Close()
	books := []Book{}
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Genre, &b.PublishedYear,
			&b.ISBN, &b.StockCount, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan book row: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate book rows: %w", err)
	}
	return books, nil
}
