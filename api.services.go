package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// BookServiceProvider exposes the book repository operations and the
// fuzzy search pipeline to the api layer.
type BookServiceProvider interface {
	Create(ctx context.Context, req CreateBookRequest) (Book, error)
	List(ctx context.Context, page, limit int) (BookPage, error)
	GetOne(ctx context.Context, id string) (Book, error)
	Update(ctx context.Context, id string, req UpdateBookRequest) (Book, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, page, limit int) (BookPage, error)
}

type BookService struct {
	logger    *zap.Logger
	config    *Config
	clock     Clocker
	ids       UIDHandler
	validator *BookValidator
	matcher   FuzzyMatcher
	storage   BookStorage
}

func NewBookService(logger *zap.Logger, config *Config, clock Clocker, ids UIDHandler, validator *BookValidator, matcher FuzzyMatcher, storage BookStorage) BookServiceProvider {
	return &BookService{
		logger:    logger,
		config:    config,
		clock:     clock,
		ids:       ids,
		validator: validator,
		matcher:   matcher,
		storage:   storage,
	}
}

// Create validates the payload, assigns a store-generated id and
// timestamps and inserts the record. The store rejects a duplicate
// isbn with ErrDuplicateISBN.
func (bs *BookService) Create(ctx context.Context, req CreateBookRequest) (Book, error) {
	if err := bs.validator.ValidateCreate(&req); err != nil {
		return Book{}, err
	}
	now := bs.clock.Now().UTC().Format(time.RFC3339)
	book := Book{
		ID:            bs.ids.Generate(BookIDPrefix),
		Title:         req.Title,
		Author:        req.Author,
		Genre:         req.Genre,
		PublishedYear: *req.PublishedYear,
		ISBN:          req.ISBN,
		StockCount:    *req.StockCount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := bs.storage.Add(ctx, book); err != nil {
		return Book{}, err
	}
	return book, nil
}

// List returns one window of the collection in insertion order along
// with the total record count and derived page count. An out-of-range
// page yields an empty window, never an error.
func (bs *BookService) List(ctx context.Context, page, limit int) (BookPage, error) {
	page, limit = sanitizePagination(page, limit)
	total, err := bs.storage.Count(ctx)
	if err != nil {
		return BookPage{}, fmt.Errorf("count books: %w", err)
	}
	books, err := bs.storage.GetPage(ctx, (page-1)*limit, limit)
	if err != nil {
		return BookPage{}, err
	}
	return BookPage{
		Total: total,
		Page:  page,
		Pages: pagesCount(total, limit),
		Books: books,
	}, nil
}

func (bs *BookService) GetOne(ctx context.Context, id string) (Book, error) {
	if !bs.ids.IsValid(id, BookIDPrefix) {
		return Book{}, ErrInvalidBookID
	}
	return bs.storage.GetOne(ctx, id)
}

// Update applies only the supplied fields of the payload onto the
// stored record and bumps its updatedAt timestamp.
func (bs *BookService) Update(ctx context.Context, id string, req UpdateBookRequest) (Book, error) {
	if !bs.ids.IsValid(id, BookIDPrefix) {
		return Book{}, ErrInvalidBookID
	}
	if err := bs.validator.ValidateUpdate(&req); err != nil {
		return Book{}, err
	}
	book, err := bs.storage.GetOne(ctx, id)
	if err != nil {
		return Book{}, err
	}
	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.Genre != nil {
		book.Genre = *req.Genre
	}
	if req.PublishedYear != nil {
		book.PublishedYear = *req.PublishedYear
	}
	if req.ISBN != nil {
		book.ISBN = *req.ISBN
	}
	if req.StockCount != nil {
		book.StockCount = *req.StockCount
	}
	book.UpdatedAt = bs.clock.Now().UTC().Format(time.RFC3339)
	return bs.storage.Update(ctx, book)
}

func (bs *BookService) Delete(ctx context.Context, id string) error {
	if !bs.ids.IsValid(id, BookIDPrefix) {
		return ErrInvalidBookID
	}
	return bs.storage.Delete(ctx, id)
}

// Search feeds the fuzzy stage with the ranked text index candidates.
// When the index finds nothing the whole collection becomes the pool,
// an O(total records) path which still catches queries the index
// cannot, such as transpositions. The pool is then scored against
// title, author and genre and the surviving records are paginated.
func (bs *BookService) Search(ctx context.Context, query string, page, limit int) (BookPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return BookPage{}, NewValidationError("query is required")
	}
	page, limit = sanitizePagination(page, limit)

	pool, err := bs.storage.TextSearch(ctx, query)
	if err != nil {
		return BookPage{}, fmt.Errorf("text search stage: %w", err)
	}
	if len(pool) == 0 {
		pool, err = bs.storage.GetAll(ctx)
		if err != nil {
			return BookPage{}, fmt.Errorf("full scan fallback: %w", err)
		}
	}

	type scoredBook struct {
		book  Book
		score float64
	}
	matches := make([]scoredBook, 0, len(pool))
	for _, b := range pool {
		score := bs.bestFieldScore(b, query)
		if score <= FuzzyScoreThreshold {
			matches = append(matches, scoredBook{book: b, score: score})
		}
	}
	// stable sort keeps candidate pool order between equal scores,
	// which is the text index rank or the store iteration order.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score < matches[j].score
	})

	total := len(matches)
	start := (page - 1) * limit
	end := start + limit
	books := []Book{}
	if start < total {
		if end > total {
			end = total
		}
		for _, m := range matches[start:end] {
			books = append(books, m.book)
		}
	}
	return BookPage{
		Total: total,
		Page:  page,
		Pages: pagesCount(total, limit),
		Books: books,
	}, nil
}

// bestFieldScore returns the lowest fuzzy score of the three
// searchable fields.
func (bs *BookService) bestFieldScore(book Book, query string) float64 {
	best := bs.matcher.Score(book.Title, query)
	if s := bs.matcher.Score(book.Author, query); s < best {
		best = s
	}
	if s := bs.matcher.Score(book.Genre, query); s < best {
		best = s
	}
	return best
}

func sanitizePagination(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	return page, limit
}

func pagesCount(total, limit int) int {
	return (total + limit - 1) / limit
}
