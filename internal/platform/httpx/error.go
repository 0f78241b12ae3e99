// Package httpx renders the JSON error envelope shared by every endpoint of
// the fiscal API: a machine-readable code (empty_cart, order_not_found, ...),
// a human message, and the request/trace ids needed to find the entry in
// Cloud Logging.
package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/hudemas/api/internal/platform/requestctx"
)

// Error is a renderable API error. Code is the stable contract clients switch
// on; Message is advisory.
type Error struct {
	Code    string
	Message string
	Status  int
}

// NewError builds an Error, defaulting a zero status to 500.
func NewError(code, message string, status int) Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return Error{
		Code:    scrub(code, 80),
		Message: scrub(message, 512),
		Status:  status,
	}
}

type errorBody struct {
	Code      string `json:"error"`
	Message   string `json:"message"`
	Status    int    `json:"status"`
	RequestID string `json:"request_id,omitempty"`
	TraceID   string `json:"trace_id,omitempty"`
}

// WriteError renders the error envelope, stamping the request and trace ids
// carried on the context.
func WriteError(ctx context.Context, w http.ResponseWriter, err Error) {
	status := err.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	body := errorBody{
		Code:      err.Code,
		Message:   err.Message,
		Status:    status,
		RequestID: scrub(middleware.GetReqID(ctx), 80),
		TraceID:   scrub(requestctx.TraceID(ctx), 64),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// scrub strips line breaks and caps length so handler-supplied messages cannot
// break the envelope or flood logs.
func scrub(value string, limit int) string {
	value = strings.TrimSpace(strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return ' '
		}
		return r
	}, value))
	if len(value) > limit {
		value = value[:limit]
	}
	return value
}
