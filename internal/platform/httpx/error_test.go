package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hudemas/api/internal/platform/requestctx"
)

func TestWriteErrorEnvelope(t *testing.T) {
	ctx := requestctx.WithTrace(context.Background(), requestctx.TraceInfo{TraceID: "trace-1"})
	rr := httptest.NewRecorder()

	WriteError(ctx, rr, NewError("order_not_found", "order does not exist", http.StatusNotFound))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("unexpected content type %q", got)
	}

	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if payload["error"] != "order_not_found" {
		t.Errorf("unexpected error code %#v", payload["error"])
	}
	if payload["message"] != "order does not exist" {
		t.Errorf("unexpected message %#v", payload["message"])
	}
	if payload["status"] != float64(http.StatusNotFound) {
		t.Errorf("unexpected status field %#v", payload["status"])
	}
	if payload["trace_id"] != "trace-1" {
		t.Errorf("unexpected trace id %#v", payload["trace_id"])
	}
}

func TestWriteErrorDefaultsStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(context.Background(), rr, Error{Code: "export_error", Message: "boom"})

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}

	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if _, present := payload["request_id"]; present {
		t.Error("request_id should be omitted when not set")
	}
	if _, present := payload["trace_id"]; present {
		t.Error("trace_id should be omitted when not set")
	}
}

func TestNewErrorScrubsControlCharacters(t *testing.T) {
	err := NewError("bad\ncode", "line one\r\nline two", http.StatusBadRequest)
	if err.Code != "bad code" {
		t.Errorf("unexpected code %q", err.Code)
	}
	if err.Message != "line one  line two" {
		t.Errorf("unexpected message %q", err.Message)
	}
}
