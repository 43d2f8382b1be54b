// Package httpx writes JSON responses and the error envelope shared by
// every endpoint:
//
//	{"error": {"code": "not_found", "message": "agenda not found"}}
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/httputil"
)

// Error codes carried in the envelope.
const (
	CodeBadRequest       = "bad_request"
	CodeValidationFailed = "validation_failed"
	CodeConflict         = "conflict"
	CodeUnauthenticated  = "unauthenticated"
	CodeForbidden        = "forbidden"
	CodeNotFound         = "not_found"
	CodeNotAcceptable    = "not_acceptable"
	CodeRateLimited      = "rate_limited"
	CodeInternal         = "internal"
)

// MaxBodyBytes bounds JSON request bodies. The router enforces it for
// every request and DecodeJSON enforces it again for handlers mounted
// elsewhere.
const MaxBodyBytes = 1 << 20

// APIError is the body of the error envelope.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Fields  interface{} `json:"fields,omitempty"`
}

type envelope struct {
	Error APIError `json:"error"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	httputil.WriteJSON(w, status, v)
}

// NoCache marks the response as not cacheable. Used for token responses.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// OK writes {"data": v} with 200.
func OK(w http.ResponseWriter, v any) {
	WriteJSON(w, http.StatusOK, map[string]any{"data": v})
}

// Created writes {"data": v} with 201.
func Created(w http.ResponseWriter, v any) {
	WriteJSON(w, http.StatusCreated, map[string]any{"data": v})
}

// List writes {"data": items, "meta": meta} with 200. A nil slice is
// written as [] so clients can always iterate.
func List[T any](w http.ResponseWriter, items []T, meta any) {
	if items == nil {
		items = []T{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"data": items, "meta": meta})
}

// Message writes {"message": msg} with 200.
func Message(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// WriteError writes the error envelope.
func WriteError(w http.ResponseWriter, status int, code, msg string) {
	WriteJSON(w, status, envelope{Error: APIError{Code: code, Message: msg}})
}

func BadRequest(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusBadRequest, CodeBadRequest, msg)
}

// ValidationFailed writes 400 with per-field messages. fields is usually
// an ozzo-validation Errors map.
func ValidationFailed(w http.ResponseWriter, fields error) {
	body := APIError{Code: CodeValidationFailed, Message: "validation failed"}
	if fields != nil {
		var m json.Marshaler
		if errors.As(fields, &m) {
			body.Fields = m
		} else {
			body.Message = fields.Error()
		}
	}
	WriteJSON(w, http.StatusBadRequest, envelope{Error: body})
}

func Conflict(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusBadRequest, CodeConflict, msg)
}

func Unauthenticated(w http.ResponseWriter, msg string) {
	if msg == "" {
		msg = "authentication required"
	}
	WriteError(w, http.StatusUnauthorized, CodeUnauthenticated, msg)
}

func Forbidden(w http.ResponseWriter, msg string) {
	if msg == "" {
		msg = "you do not have permission to do this"
	}
	WriteError(w, http.StatusForbidden, CodeForbidden, msg)
}

func NotFound(w http.ResponseWriter, msg string) {
	if msg == "" {
		msg = "not found"
	}
	WriteError(w, http.StatusNotFound, CodeNotFound, msg)
}

func NotAcceptable(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusNotAcceptable, CodeNotAcceptable, msg)
}

func RateLimited(w http.ResponseWriter, retryAfterSeconds int) {
	if retryAfterSeconds > 0 {
		w.Header().Set("Retry-After", fmt.Sprint(retryAfterSeconds))
	}
	WriteError(w, http.StatusTooManyRequests, CodeRateLimited, "too many requests")
}

// Internal writes a generic 500. The cause is never echoed.
func Internal(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, CodeInternal, "internal server error")
}

// ErrBody is returned by DecodeJSON for malformed or oversized bodies.
var ErrBody = errors.New("invalid JSON body")

// DecodeJSON reads a single JSON object from r into dst. Unknown fields
// are ignored.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		return fmt.Errorf("%w: content type must be application/json", ErrBody)
	}
	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	}
	if err := httputil.BindJSONAllowUnknown(r, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrBody, err)
	}
	return nil
}
