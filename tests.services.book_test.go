package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// This file contains unit tests for the book service search pipeline.

func newTestBookService(repo *MockBookStorage) BookServiceProvider {
	return NewBookService(
		zap.NewNop(),
		&Config{},
		NewMockClocker(),
		NewMockUIDHandler(testBookUID, true),
		NewBookValidator(),
		NewLevenshteinMatcher(),
		repo,
	)
}

// TestSearchUsesTextIndexPool ensures the text index results feed the
// fuzzy stage without falling back to a full scan.
func TestSearchUsesTextIndexPool(t *testing.T) {
	pool := []Book{
		{ID: "b:0", Title: "Go in Action", Author: "William Kennedy", Genre: "Programming"},
	}
	bs := newTestBookService(&MockBookStorage{
		TextSearchFunc: func(ctx context.Context, query string) ([]Book, error) {
			return pool, nil
		},
		GetAllFunc: func(ctx context.Context) ([]Book, error) {
			t.Fatal("full scan fallback must not run when the index matched")
			return nil, nil
		},
	})

	result, err := bs.Search(context.Background(), "go in action", 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, "b:0", result.Books[0].ID)
}

// TestSearchFallsBackToFullScan ensures an empty index result triggers
// the full collection scan so misspelled queries still match.
func TestSearchFallsBackToFullScan(t *testing.T) {
	pool := []Book{
		{ID: "b:0", Title: "Harry Potter and the Philosopher's Stone", Author: "J.K. Rowling", Genre: "Fantasy"},
		{ID: "b:1", Title: "Clean Code", Author: "Robert Martin", Genre: "Programming"},
	}
	var scanned bool
	bs := newTestBookService(&MockBookStorage{
		TextSearchFunc: func(ctx context.Context, query string) ([]Book, error) {
			return nil, nil
		},
		GetAllFunc: func(ctx context.Context) ([]Book, error) {
			scanned = true
			return pool, nil
		},
	})

	result, err := bs.Search(context.Background(), "hary poter", 1, 10)
	assert.NoError(t, err)
	assert.True(t, scanned)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, "b:0", result.Books[0].ID)
}

// TestSearchFiltersAboveThreshold ensures records scoring above the
// matching threshold never reach the result page.
func TestSearchFiltersAboveThreshold(t *testing.T) {
	pool := []Book{
		{ID: "b:0", Title: "The Pragmatic Programmer", Author: "Andrew Hunt", Genre: "Programming"},
		{ID: "b:1", Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction"},
	}
	bs := newTestBookService(&MockBookStorage{
		TextSearchFunc: func(ctx context.Context, query string) ([]Book, error) {
			return pool, nil
		},
	})

	result, err := bs.Search(context.Background(), "pragmatic", 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, "b:0", result.Books[0].ID)
}

// TestSearchOrdersByScore ensures closer matches come first even when
// the candidate pool has them in another order.
func TestSearchOrdersByScore(t *testing.T) {
	pool := []Book{
		{ID: "b:0", Title: "Harry Potter and the Goblet of Fire", Author: "J.K. Rowling", Genre: "Fantasy"},
		{ID: "b:1", Title: "Hary", Author: "Unknown", Genre: "Biography"},
	}
	bs := newTestBookService(&MockBookStorage{
		TextSearchFunc: func(ctx context.Context, query string) ([]Book, error) {
			return pool, nil
		},
	})

	result, err := bs.Search(context.Background(), "hary", 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	// exact match scores zero and outranks the close one.
	assert.Equal(t, "b:1", result.Books[0].ID)
	assert.Equal(t, "b:0", result.Books[1].ID)
}

// TestSearchPagination ensures total and pages stay constant across
// windows and a window past the end is empty, not an error.
func TestSearchPagination(t *testing.T) {
	pool := []Book{
		{ID: "b:0", Title: "Go in Action", Author: "William Kennedy", Genre: "Programming"},
		{ID: "b:1", Title: "The Go Programming Language", Author: "Alan Donovan", Genre: "Programming"},
		{ID: "b:2", Title: "Learning Go", Author: "Jon Bodner", Genre: "Programming"},
	}
	bs := newTestBookService(&MockBookStorage{
		TextSearchFunc: func(ctx context.Context, query string) ([]Book, error) {
			return pool, nil
		},
	})

	first, err := bs.Search(context.Background(), "go", 1, 2)
	assert.NoError(t, err)
	assert.Equal(t, 3, first.Total)
	assert.Equal(t, 2, first.Pages)
	assert.Equal(t, 2, len(first.Books))

	second, err := bs.Search(context.Background(), "go", 2, 2)
	assert.NoError(t, err)
	assert.Equal(t, 3, second.Total)
	assert.Equal(t, 2, second.Pages)
	assert.Equal(t, 1, len(second.Books))

	beyond, err := bs.Search(context.Background(), "go", 5, 2)
	assert.NoError(t, err)
	assert.Equal(t, 3, beyond.Total)
	assert.Equal(t, 0, len(beyond.Books))
}

// TestSearchEmptyQuery ensures a blank query is rejected before any
// storage access.
func TestSearchEmptyQuery(t *testing.T) {
	bs := newTestBookService(&MockBookStorage{})

	for _, query := range []string{"", "   "} {
		_, err := bs.Search(context.Background(), query, 1, 10)
		var verr *ValidationError
		assert.True(t, errors.As(err, &verr))
		assert.Equal(t, []string{"query is required"}, verr.Fields)
	}
}

// TestSearchNoMatches ensures a query without survivors yields an
// empty page with zero totals.
func TestSearchNoMatches(t *testing.T) {
	pool := []Book{
		{ID: "b:0", Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction"},
	}
	bs := newTestBookService(&MockBookStorage{
		TextSearchFunc: func(ctx context.Context, query string) ([]Book, error) {
			return nil, nil
		},
		GetAllFunc: func(ctx context.Context) ([]Book, error) {
			return pool, nil
		},
	})

	result, err := bs.Search(context.Background(), "xqzywvuu", 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, 0, result.Total)
	assert.Equal(t, 0, result.Pages)
	assert.Equal(t, 0, len(result.Books))
}

// TestCreateAssignsIDAndTimestamps ensures the service owns identity
// and timestamps, never the caller.
func TestCreateAssignsIDAndTimestamps(t *testing.T) {
	var added Book
	bs := newTestBookService(&MockBookStorage{
		AddFunc: func(ctx context.Context, book Book) error {
			added = book
			return nil
		},
	})

	year, stock := 2015, 3
	book, err := bs.Create(context.Background(), CreateBookRequest{
		Title:         "The Go Programming Language",
		Author:        "Alan Donovan",
		Genre:         "Programming",
		PublishedYear: &year,
		ISBN:          "978-0134190440",
		StockCount:    &stock,
	})
	assert.NoError(t, err)
	assert.Equal(t, "b:"+testBookUID, book.ID)
	assert.Equal(t, "2023-07-02T00:00:00Z", book.CreatedAt)
	assert.Equal(t, "2023-07-02T00:00:00Z", book.UpdatedAt)
	assert.Equal(t, added, book)
}

// TestUpdateKeepsAbsentFields ensures absent payload fields leave the
// stored values untouched.
func TestUpdateKeepsAbsentFields(t *testing.T) {
	stored := Book{
		ID:            "b:" + testBookUID,
		Title:         "The Go Programming Language",
		Author:        "Alan Donovan",
		Genre:         "Programming",
		PublishedYear: 2015,
		ISBN:          "978-0134190440",
		StockCount:    3,
		CreatedAt:     "2023-07-01T00:00:00Z",
		UpdatedAt:     "2023-07-01T00:00:00Z",
	}
	bs := newTestBookService(&MockBookStorage{
		GetOneFunc: func(ctx context.Context, id string) (Book, error) {
			return stored, nil
		},
		UpdateFunc: func(ctx context.Context, book Book) (Book, error) {
			return book, nil
		},
	})

	stock := 9
	book, err := bs.Update(context.Background(), stored.ID, UpdateBookRequest{StockCount: &stock})
	assert.NoError(t, err)
	assert.Equal(t, 9, book.StockCount)
	assert.Equal(t, stored.Title, book.Title)
	assert.Equal(t, stored.ISBN, book.ISBN)
	assert.Equal(t, stored.CreatedAt, book.CreatedAt)
	assert.Equal(t, "2023-07-02T00:00:00Z", book.UpdatedAt)
}
