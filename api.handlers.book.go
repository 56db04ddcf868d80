package main

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// internalErrorData decides what an unexpected failure exposes to the
// caller: the underlying error in a development setup, nothing in
// production. Full details always go to the server logs.
func (api *APIHandler) internalErrorData(err error) interface{} {
	if api.config != nil && !api.config.IsProduction {
		return err.Error()
	}
	return EmptyData
}

// CreateBook godoc
// @Summary      Create a new book
// @Description  Validates the payload and inserts a new book record.
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        book body CreateBookRequest true "book payload"
// @Success      201 {object} APIResponse
// @Failure      400 {object} APIError
// @Failure      409 {object} APIError
// @Failure      500 {object} APIError
// @Router       /v1/books [post]
func (api *APIHandler) CreateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req CreateBookRequest
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	if err := DecodeRequestBody(r, &req); err != nil {
		api.logger.Error("failed to create book", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to create the book", "invalid request body")
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	book, err := api.bookService.Create(r.Context(), req)
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		api.logger.Error("failed to create book", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to create the book", verr.Fields)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	case errors.Is(err, ErrDuplicateISBN):
		api.logger.Error("failed to create book", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusConflict, "failed to create the book", ErrDuplicateISBN.Error())
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	case err != nil:
		api.logger.Error("failed to create book", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to create the book", api.internalErrorData(err))
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to create book", zap.String("book.id", book.ID), zap.String("request.id", requestID))
	resp := GenericResponse(requestID, http.StatusCreated, "Book created successfully.", book)
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// GetAllBooks godoc
// @Summary      List books
// @Description  Returns one page of the books collection in insertion order.
// @Tags         books
// @Produce      json
// @Param        page  query int false "page number (default 1)"
// @Param        limit query int false "page size (default 10)"
// @Success      200 {object} APIResponse{data=BookPage}
// @Failure      500 {object} APIError
// @Router       /v1/books [get]
func (api *APIHandler) GetAllBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	page, limit := ParsePagination(r)
	result, err := api.bookService.List(r.Context(), page, limit)
	if err != nil {
		api.logger.Error("failed to list books", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to list books", api.internalErrorData(err))
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to list books",
		zap.String("request.id", requestID),
		zap.Int("books.total", result.Total),
		zap.Int("books.page", result.Page),
	)
	resp := GenericResponse(requestID, http.StatusOK, "Books fetched successfully.", result)
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// SearchBooks godoc
// @Summary      Fuzzy search books
// @Description  Searches title, author and genre with typo tolerance and returns a relevance ordered page.
// @Tags         books
// @Produce      json
// @Param        q     query string true  "search keyword"
// @Param        page  query int    false "page number (default 1)"
// @Param        limit query int    false "page size (default 10)"
// @Success      200 {object} APIResponse{data=BookPage}
// @Failure      400 {object} APIError
// @Failure      500 {object} APIError
// @Router       /v1/books/search [get]
func (api *APIHandler) SearchBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	page, limit := ParsePagination(r)
	query := r.URL.Query().Get("q")

	result, err := api.bookService.Search(r.Context(), query, page, limit)
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		api.logger.Error("failed to search books", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to search books", verr.Fields)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	case err != nil:
		api.logger.Error("failed to search books", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to search books", api.internalErrorData(err))
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to search books",
		zap.String("request.id", requestID),
		zap.String("search.query", query),
		zap.Int("search.total", result.Total),
	)
	resp := GenericResponse(requestID, http.StatusOK, "Books searched successfully.", result)
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// GetOneBook godoc
// @Summary      Fetch one book
// @Tags         books
// @Produce      json
// @Param        id path string true "book id"
// @Success      200 {object} APIResponse{data=Book}
// @Failure      400 {object} APIError
// @Failure      404 {object} APIError
// @Failure      500 {object} APIError
// @Router       /v1/books/{id} [get]
func (api *APIHandler) GetOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	id := ps.ByName("id")
	book, err := api.bookService.GetOne(r.Context(), id)
	switch {
	case errors.Is(err, ErrInvalidBookID):
		api.logger.Error("book id provided is not valid", zap.String("book.id", id), zap.String("request.id", requestID))
		errResp := NewAPIError(requestID, http.StatusBadRequest, ErrInvalidBookID.Error(), EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	case errors.Is(err, ErrBookNotFound):
		api.logger.Error("book does not exist", zap.String("book.id", id), zap.String("request.id", requestID))
		errResp := NewAPIError(requestID, http.StatusNotFound, "book does not exist", EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	case err != nil:
		api.logger.Error("failed to get book", zap.String("book.id", id), zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to get the book", api.internalErrorData(err))
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to get book", zap.String("book.id", id), zap.String("request.id", requestID))
	resp := GenericResponse(requestID, http.StatusOK, "Book fetched successfully.", book)
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// UpdateBook godoc
// @Summary      Update a book
// @Description  Applies only the supplied fields onto the stored record.
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        id   path string            true "book id"
// @Param        book body UpdateBookRequest true "fields to update"
// @Success      200 {object} APIResponse{data=Book}
// @Failure      400 {object} APIError
// @Failure      404 {object} APIError
// @Failure      409 {object} APIError
// @Failure      500 {object} APIError
// @Router       /v1/books/{id} [put]
func (api *APIHandler) UpdateBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req UpdateBookRequest
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	id := ps.ByName("id")
	if err := DecodeRequestBody(r, &req); err != nil {
		api.logger.Error("failed to update book", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to update the book", "invalid request body")
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	book, err := api.bookService.Update(r.Context(), id, req)
	var verr *ValidationError
	switch {
	case errors.Is(err, ErrInvalidBookID):
		api.logger.Error("book id provided is not valid", zap.String("book.id", id), zap.String("request.id", requestID))
		errResp := NewAPIError(requestID, http.StatusBadRequest, ErrInvalidBookID.Error(), EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	case errors.As(err, &verr):
		api.logger.Error("failed to update book", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to update the book", verr.Fields)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	case errors.Is(err, ErrBookNotFound):
		api.logger.Error("book does not exist", zap.String("book.id", id), zap.String("request.id", requestID))
		errResp := NewAPIError(requestID, http.StatusNotFound, "book does not exist", EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	case errors.Is(err, ErrDuplicateISBN):
		api.logger.Error("failed to update book", zap.String("book.id", id), zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusConflict, "failed to update the book", ErrDuplicateISBN.Error())
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	case err != nil:
		api.logger.Error("failed to update book", zap.String("book.id", id), zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to update the book", api.internalErrorData(err))
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to update book", zap.String("book.id", book.ID), zap.String("request.id", requestID))
	resp := GenericResponse(requestID, http.StatusOK, "Book updated successfully.", book)
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// DeleteOneBook godoc
// @Summary      Delete a book
// @Tags         books
// @Produce      json
// @Param        id path string true "book id"
// @Success      200 {object} APIResponse
// @Failure      400 {object} APIError
// @Failure      404 {object} APIError
// @Failure      500 {object} APIError
// @Router       /v1/books/{id} [delete]
func (api *APIHandler) DeleteOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	id := ps.ByName("id")
	err := api.bookService.Delete(r.Context(), id)
	switch {
	case errors.Is(err, ErrInvalidBookID):
		api.logger.Error("book id provided is not valid", zap.String("book.id", id), zap.String("request.id", requestID))
		errResp := NewAPIError(requestID, http.StatusBadRequest, ErrInvalidBookID.Error(), EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	case errors.Is(err, ErrBookNotFound):
		api.logger.Error("book does not exist", zap.String("book.id", id), zap.String("request.id", requestID))
		errResp := NewAPIError(requestID, http.StatusNotFound, "book does not exist", EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	case err != nil:
		api.logger.Error("failed to delete book", zap.String("book.id", id), zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to delete the book", api.internalErrorData(err))
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to delete book", zap.String("book.id", id), zap.String("request.id", requestID))
	resp := GenericResponse(requestID, http.StatusOK, "Book deleted successfully.", EmptyData)
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}
