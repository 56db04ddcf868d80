package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// TestMiddlewaresStacks ensures we get both public and ops middlewares
// stacks with exact number of elements in those stacks.
func TestMiddlewaresStacks(t *testing.T) {
	api := newTestAPIHandler(&MockBookStorage{}, true)
	pub, ops := api.MiddlewaresStacks()
	assert.Equal(t, 8, len(*pub))
	assert.Equal(t, 6, len(*ops))
}

// TestChain ensures each middleware in the stack is called as well the handler.
func TestChain(t *testing.T) {
	var ca, cb, cc, ch bool
	queue := make(chan int, 4)

	middlewareA := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 1
			ca = true
			next(w, r, ps)
		}
	}
	middlewareB := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 2
			cb = true
			next(w, r, ps)
		}
	}
	middlewareC := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 3
			cc = true
			next(w, r, ps)
		}
	}
	middlewares := Middlewares{
		middlewareA,
		middlewareB,
		middlewareC,
	}

	handler := func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		queue <- 4
		ch = true
	}

	chained := (&middlewares).Chain(handler)
	req := httptest.NewRequest("GET", "/v1/books", nil)
	w := httptest.NewRecorder()
	chained(w, req, nil)

	t.Run("check calling", func(t *testing.T) {
		assert.Equal(t, true, ca)
		assert.Equal(t, true, cb)
		assert.Equal(t, true, cc)
		assert.Equal(t, true, ch)
	})

	t.Run("check ordering", func(t *testing.T) {
		assert.Equal(t, 1, <-queue)
		assert.Equal(t, 2, <-queue)
		assert.Equal(t, 3, <-queue)
		assert.Equal(t, 4, <-queue)
	})
}

// TestRequestsCounterMiddleware ensures the request counter increment.
func TestRequestsCounterMiddleware(t *testing.T) {
	api := newTestAPIHandler(&MockBookStorage{}, true)
	req := httptest.NewRequest("GET", "/v1/books", nil)
	w := httptest.NewRecorder()
	var called bool
	handler := func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		called = true
	}
	wrapped := api.RequestsCounterMiddleware(handler)
	wrapped(w, req, nil)
	assert.Equal(t, true, called)
	assert.Equal(t, uint64(1), api.stats.called)
}

// TestSecurityHeadersMiddleware ensures every response carries the
// expected protection headers.
func TestSecurityHeadersMiddleware(t *testing.T) {
	req := httptest.NewRequest("GET", "/v1/books", nil)
	w := httptest.NewRecorder()
	handler := func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	}
	SecurityHeadersMiddleware(handler)(w, req, nil)
	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, "nosniff", res.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", res.Header.Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", res.Header.Get("X-XSS-Protection"))
}

// TestMaintenanceModeMiddleware ensures public traffic is gated with
// 503 while the maintenance mode is on and flows again once off.
func TestMaintenanceModeMiddleware(t *testing.T) {
	api := newTestAPIHandler(&MockBookStorage{}, true)
	var called bool
	handler := func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		called = true
		w.WriteHeader(http.StatusOK)
	}
	wrapped := api.MaintenanceModeMiddleware(handler)

	api.mode.enabled.Store(true)
	api.mode.message = "upgrading the database"
	req := httptest.NewRequest("GET", "/v1/books", nil)
	w := httptest.NewRecorder()
	wrapped(w, req, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, called)

	api.mode.enabled.Store(false)
	w = httptest.NewRecorder()
	wrapped(w, req, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}

// TestRateLimitMiddleware ensures callers over budget receive 429 and a
// failing limiter backend never blocks the request.
func TestRateLimitMiddleware(t *testing.T) {
	newRateLimitedAPI := func(limiter RateLimiter) *APIHandler {
		config := &Config{}
		config.RateLimit.Enable = true
		bs := NewBookService(zap.NewNop(), config, NewMockClocker(), NewMockUIDHandler(testBookUID, true), NewBookValidator(), NewLevenshteinMatcher(), &MockBookStorage{})
		return NewAPIHandler(zap.NewNop(), config, &Statistics{started: NewMockClocker().Now()}, NewMockClocker(), NewMockUIDHandler(testBookUID, true), limiter, bs)
	}

	var called bool
	handler := func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		called = true
		w.WriteHeader(http.StatusOK)
	}

	t.Run("within budget", func(t *testing.T) {
		called = false
		api := newRateLimitedAPI(&MockRateLimiter{
			AllowFunc: func(ctx context.Context, key string) (bool, error) {
				return true, nil
			},
		})
		w := httptest.NewRecorder()
		api.RateLimitMiddleware(handler)(w, httptest.NewRequest("GET", "/v1/books", nil), nil)
		assert.True(t, called)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("over budget", func(t *testing.T) {
		called = false
		api := newRateLimitedAPI(&MockRateLimiter{
			AllowFunc: func(ctx context.Context, key string) (bool, error) {
				return false, nil
			},
		})
		w := httptest.NewRecorder()
		api.RateLimitMiddleware(handler)(w, httptest.NewRequest("GET", "/v1/books", nil), nil)
		assert.False(t, called)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})

	t.Run("limiter backend failure lets the request through", func(t *testing.T) {
		called = false
		api := newRateLimitedAPI(&MockRateLimiter{
			AllowFunc: func(ctx context.Context, key string) (bool, error) {
				return false, errors.New("redis unreachable")
			},
		})
		w := httptest.NewRecorder()
		api.RateLimitMiddleware(handler)(w, httptest.NewRequest("GET", "/v1/books", nil), nil)
		assert.True(t, called)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("limiter disabled", func(t *testing.T) {
		called = false
		api := newTestAPIHandler(&MockBookStorage{}, true)
		w := httptest.NewRecorder()
		api.RateLimitMiddleware(handler)(w, httptest.NewRequest("GET", "/v1/books", nil), nil)
		assert.True(t, called)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
