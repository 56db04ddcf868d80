package main

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
)

// Sentinel errors every storage or service failure is classified into.
// Handlers map them to HTTP status codes.
var (
	ErrBookNotFound  = errors.New("book not found")
	ErrInvalidBookID = errors.New("book id provided is not valid")
	ErrDuplicateISBN = errors.New("book with same isbn already exists")
)

type ContextKey string

const (
	BookIDPrefix            string     = "b"
	RequestIDPrefix         string     = "r"
	RequestIDContextKey     ContextKey = "request.id"
	RequestNumberContextKey ContextKey = "request.number"
)

// Defaults applied when pagination query parameters are absent or unusable.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// GetValueFromContext returns the value of a given key in the context
// if this key is not available, it returns an empty string.
func GetValueFromContext(ctx context.Context, contextKey ContextKey) string {
	if val := ctx.Value(contextKey); val != nil {
		return val.(string)
	}
	return ""
}

// GetRequestNumberFromContext returns the request number set in
// the context. if not previously set then it returns 0.
func GetRequestNumberFromContext(ctx context.Context) uint64 {
	if val := ctx.Value(RequestNumberContextKey); val != nil {
		return val.(uint64)
	}
	return 0
}

// DecodeRequestBody is a helper function to read the json content of a book creation or update request.
func DecodeRequestBody(r *http.Request, into interface{}) error {
	if r.Body == nil {
		return errors.New("invalid request body")
	}
	return json.NewDecoder(r.Body).Decode(into)
}

// ParsePagination extracts page and limit query parameters. Missing or
// unusable values fall back to the defaults, they never fail the request.
func ParsePagination(r *http.Request) (page, limit int) {
	page, limit = DefaultPage, DefaultLimit
	q := r.URL.Query()
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p >= 1 {
		page = p
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l >= 1 {
		limit = l
	}
	return page, limit
}

// GetRequestSourceIP helps find the source IP of the caller.
func GetRequestSourceIP(r *http.Request) string {
	// Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip
	}

	// Get IP from X-FORWARDED-FOR header
	ips := r.Header.Get("X-FORWARDED-FOR")
	splitIps := strings.Split(ips, ",")
	for _, ip := range splitIps {
		netIP = net.ParseIP(ip)
		if netIP != nil {
			return ip
		}
	}

	// Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return ""
	}
	netIP = net.ParseIP(ip)
	if netIP != nil {
		return ip
	}
	return ""
}

// IsAppRunningInDocker checks the existence of the .dockerenv
// file at the root directory and returns a boolean result. This
// helps know if the App is running in a docker container or not.
func IsAppRunningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}
