package main

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// MiddlewareFunc is a custom type for ease of use.
type MiddlewareFunc func(httprouter.Handle) httprouter.Handle

// Middlewares is a custom type to represent a stack of
// middleware functions used to build a single chain.
type Middlewares []MiddlewareFunc

// StatsResponseWriter is a wrapper for http.ResponseWriter. It is used
// to record response details like status code and body size.
type StatsResponseWriter struct {
	http.ResponseWriter
	code  int
	bytes int
	wrote bool
}

// NewStatsResponseWriter provides StatsResponseWriter with 200 as status code.
func NewStatsResponseWriter(rw http.ResponseWriter) *StatsResponseWriter {
	return &StatsResponseWriter{ResponseWriter: rw, code: http.StatusOK}
}

// WriteHeader implements http.WriteHeader interface.
func (sw *StatsResponseWriter) WriteHeader(code int) {
	if !sw.wrote {
		sw.code = code
		sw.wrote = true
		sw.ResponseWriter.WriteHeader(code)
	}
}

// Write implements http.Write interface.
func (sw *StatsResponseWriter) Write(bytes []byte) (int, error) {
	if !sw.wrote {
		sw.WriteHeader(sw.code)
	}
	n, err := sw.ResponseWriter.Write(bytes)
	sw.bytes += n
	return n, err
}

// Status returns the written status code.
func (sw *StatsResponseWriter) Status() int {
	return sw.code
}

// MiddlewaresStacks provides the middleware stacks applied to
// public-facing and ops endpoints. Ops requests bypass the
// maintenance gate and the rate limiter.
func (api *APIHandler) MiddlewaresStacks() (*Middlewares, *Middlewares) {
	public := Middlewares{
		api.PanicRecoveryMiddleware,
		api.RequestsCounterMiddleware,
		api.RequestIDMiddleware,
		SecurityHeadersMiddleware,
		CORSMiddleware,
		api.MaintenanceModeMiddleware,
		api.RateLimitMiddleware,
		api.CoreMiddleware,
	}
	ops := Middlewares{
		api.PanicRecoveryMiddleware,
		api.RequestsCounterMiddleware,
		api.RequestIDMiddleware,
		SecurityHeadersMiddleware,
		CORSMiddleware,
		api.CoreMiddleware,
	}
	return &public, &ops
}

// CoreMiddleware setup the duration measurement for each request, records
// the response status for the stats and logs the request result.
func (api *APIHandler) CoreMiddleware(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		start := api.clock.Now()
		requestID := GetValueFromContext(r.Context(), RequestIDContextKey)

		api.logger.Info(
			"request",
			zap.String("request.id", requestID),
			zap.String("request.method", r.Method),
			zap.String("request.path", r.URL.Path),
			zap.String("request.ip", GetRequestSourceIP(r)),
			zap.String("request.agent", r.UserAgent()),
			zap.String("request.referer", r.Referer()),
		)

		sw := NewStatsResponseWriter(w)
		next(sw, r, ps)

		api.stats.mu.Lock()
		api.stats.status[sw.Status()]++
		api.stats.mu.Unlock()

		api.logger.Info(
			"request",
			zap.String("request.id", requestID),
			zap.String("request.method", r.Method),
			zap.String("request.path", r.URL.Path),
			zap.Int("response.status", sw.Status()),
			zap.Duration("request.duration", time.Since(start)),
		)
	}
}

// RequestsCounterMiddleware increments the number of received requests statistics and add this
// new value to the request context to be used during logging as `request.num` field.
func (api *APIHandler) RequestsCounterMiddleware(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), RequestNumberContextKey, atomic.AddUint64(&api.stats.called, 1))
		r = r.WithContext(ctx)
		next(w, r, ps)
	}
}

// RequestIDMiddleware generates and add a unique id to the request context.
func (api *APIHandler) RequestIDMiddleware(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		requestID := api.idsHandler.Generate(RequestIDPrefix)
		ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
		r = r.WithContext(ctx)
		next(w, r, ps)
	}
}

// SecurityHeadersMiddleware applies basic security headers on each response.
func SecurityHeadersMiddleware(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "SAMEORIGIN")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		next(w, r, ps)
	}
}

// CORSMiddleware intercepts each incoming HTTP calls then apply cors headers on it.
func CORSMiddleware(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, HEAD")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Access-Control-Request-Method, Access-Control-Request-Headers, Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, User-Agent, Accept-Language, Referer, DNT, Connection, Pragma, Cache-Control, TE")
		next(w, r, ps)
	}
}

// MaintenanceModeMiddleware answers 503 with the maintenance details
// while the maintenance mode is enabled.
func (api *APIHandler) MaintenanceModeMiddleware(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if api.mode.enabled.Load() {
			api.Maintenance(w, r, httprouter.Params{httprouter.Param{Key: "status", Value: "show"}})
			return
		}
		next(w, r, ps)
	}
}

// RateLimitMiddleware enforces the per-caller requests budget. A failing
// limiter backend never blocks traffic, the request proceeds and the
// failure is logged.
func (api *APIHandler) RateLimitMiddleware(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if api.limiter == nil || !api.config.RateLimit.Enable {
			next(w, r, ps)
			return
		}
		requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
		ok, err := api.limiter.Allow(r.Context(), GetRequestSourceIP(r))
		if err != nil {
			api.logger.Error("rate limiter failure", zap.String("request.id", requestID), zap.Error(err))
			next(w, r, ps)
			return
		}
		if !ok {
			errResp := NewAPIError(requestID, http.StatusTooManyRequests, "too many requests. please slow down.", EmptyData)
			if err := WriteErrorResponse(r.Context(), w, errResp); err != nil {
				api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
			}
			return
		}
		next(w, r, ps)
	}
}

// PanicRecoveryMiddleware catches any panic during the request lifecycle and produces
// an error log for further analysis. It sends a failure response to the client with 500.
func (api *APIHandler) PanicRecoveryMiddleware(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		recovery := func() {
			if err := recover(); err != nil {
				requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
				api.logger.Error("panic occurred", zap.String("request.id", requestID), zap.Any("error", err))
				errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to process the request.", EmptyData)
				if err := WriteErrorResponse(r.Context(), w, errResp); err != nil {
					api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
				}
			}
		}
		defer recovery()
		next(w, r, ps)
	}
}

// Chain wraps a given httprouter.Handle with a list of middlewares.
// It does by starting from the last middleware from the list.
func (m *Middlewares) Chain(h httprouter.Handle) httprouter.Handle {
	if len(*m) == 0 {
		return h
	}
	lg := len(*m)
	handle := (*m)[lg-1](h)

	for i := lg - 2; i >= 0; i-- {
		handle = (*m)[i](handle)
	}

	return handle
}
