package main

import "context"

// Book represents a book inventory record.
type Book struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Genre         string `json:"genre"`
	PublishedYear int    `json:"publishedYear"`
	ISBN          string `json:"isbn"`
	StockCount    int    `json:"stockCount"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

// CreateBookRequest is the payload expected when creating a book.
// Numeric fields are pointers so a provided zero is distinguishable
// from a missing field.
type CreateBookRequest struct {
	Title         string `json:"title" validate:"required"`
	Author        string `json:"author" validate:"required"`
	Genre         string `json:"genre" validate:"required"`
	PublishedYear *int   `json:"publishedYear" validate:"required"`
	ISBN          string `json:"isbn" validate:"required"`
	StockCount    *int   `json:"stockCount" validate:"required"`
}

// UpdateBookRequest is the payload expected when updating a book.
// Every field is optional. A present field overwrites the stored
// value, an absent field leaves it unchanged.
type UpdateBookRequest struct {
	Title         *string `json:"title" validate:"omitempty,min=1"`
	Author        *string `json:"author" validate:"omitempty,min=1"`
	Genre         *string `json:"genre" validate:"omitempty,min=1"`
	PublishedYear *int    `json:"publishedYear"`
	ISBN          *string `json:"isbn" validate:"omitempty,min=1"`
	StockCount    *int    `json:"stockCount"`
}

// BookPage is a single window over a books listing or search result.
type BookPage struct {
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Pages int    `json:"pages"`
	Books []Book `json:"books"`
}

// BookStorage defines possible operations on the books record store.
// The store owns the isbn uniqueness constraint and the text index
// covering title, author and genre.
type BookStorage interface {
	Add(ctx context.Context, book Book) error
	GetOne(ctx context.Context, id string) (Book, error)
	Update(ctx context.Context, book Book) (Book, error)
	Delete(ctx context.Context, id string) error
	GetPage(ctx context.Context, offset, limit int) ([]Book, error)
	GetAll(ctx context.Context) ([]Book, error)
	Count(ctx context.Context) (int, error)
	TextSearch(ctx context.Context, query string) ([]Book, error)
}
