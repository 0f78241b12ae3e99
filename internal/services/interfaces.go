package services

import (
	"context"
	"time"
)

// FiscalEvent describes a fiscal document lifecycle notification published to
// downstream consumers (bookkeeping sync, mail workers).
type FiscalEvent struct {
	Type           string
	OrderID        string
	DocumentNumber string
	OccurredAt     time.Time
	Attributes     map[string]string
}

// Fiscal event types.
const (
	EventInvoiceIssued   = "invoice.issued"
	EventLabelIssued     = "label.issued"
	EventExportGenerated = "export.generated"
)

// EventPublisher emits fiscal events. Publication is best effort; callers log
// failures and continue.
type EventPublisher interface {
	Publish(ctx context.Context, event FiscalEvent) error
}

// PaymentSessionRequest carries the inputs for a hosted checkout session.
type PaymentSessionRequest struct {
	OrderID       string
	AmountMinor   int64
	Currency      string
	Description   string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

// PaymentSession is the provider-issued hosted payment page reference.
type PaymentSession struct {
	ID          string
	URL         string
	AmountMinor int64
	Currency    string
}

// PaymentProvider creates hosted checkout sessions with the PSP.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, req PaymentSessionRequest) (PaymentSession, error)
}
