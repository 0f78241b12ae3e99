package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hudemas/api/internal/domain"
	"github.com/hudemas/api/internal/repositories"
)

var (
	// ErrOrderNotFound signals an unknown order id.
	ErrOrderNotFound = errors.New("order: not found")
	// ErrOrderNotInvoiceable signals a status that must not produce fiscal documents.
	ErrOrderNotInvoiceable = errors.New("order: status does not allow fiscal documents")
)

// OrderService reads order snapshots and drives fiscal document generation
// over them. It owns the status guard: unpaid or cancelled orders never
// produce an invoice or a label.
type OrderService struct {
	orders   repositories.OrderRepository
	pricing  *PricingEngine
	builder  *FiscalDocumentBuilder
	exporter *AccountingExporter
	events   EventPublisher
	now      func() time.Time
	logger   func(context.Context, string, map[string]any)
}

// OrderServiceDeps lists the collaborators for NewOrderService.
type OrderServiceDeps struct {
	Orders   repositories.OrderRepository
	Pricing  *PricingEngine
	Builder  *FiscalDocumentBuilder
	Exporter *AccountingExporter
	Events   EventPublisher
	Now      func() time.Time
	Logger   func(context.Context, string, map[string]any)
}

// NewOrderService constructs an OrderService.
func NewOrderService(deps OrderServiceDeps) (*OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}
	if deps.Pricing == nil {
		return nil, errors.New("order service: pricing engine is required")
	}
	if deps.Builder == nil {
		return nil, errors.New("order service: fiscal document builder is required")
	}
	if deps.Exporter == nil {
		return nil, errors.New("order service: accounting exporter is required")
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &OrderService{
		orders:   deps.Orders,
		pricing:  deps.Pricing,
		builder:  deps.Builder,
		exporter: deps.Exporter,
		events:   deps.Events,
		now:      func() time.Time { return now().UTC() },
		logger:   logger,
	}, nil
}

// GetOrder fetches a single order snapshot.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, s.wrapRepoError(orderID, err)
	}
	return order, nil
}

// InvoiceForOrder recomputes the breakdown for a stored order and builds its
// invoice. Unpaid and cancelled orders are rejected.
func (s *OrderService) InvoiceForOrder(ctx context.Context, orderID string) (domain.InvoiceDocument, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return domain.InvoiceDocument{}, err
	}
	if !invoiceableStatus(order.Status) {
		return domain.InvoiceDocument{}, fmt.Errorf("%w: %s", ErrOrderNotInvoiceable, order.Status)
	}

	breakdown, err := s.pricing.BreakdownForOrder(ctx, order)
	if err != nil {
		return domain.InvoiceDocument{}, err
	}

	invoice, err := s.builder.BuildInvoice(ctx, order, breakdown)
	if err != nil {
		return domain.InvoiceDocument{}, err
	}

	s.publish(ctx, FiscalEvent{
		Type:           EventInvoiceIssued,
		OrderID:        order.ID,
		DocumentNumber: invoice.DocumentNumber,
		OccurredAt:     s.now(),
	})

	return invoice, nil
}

// ShippingLabelForOrder builds the AWB payload for a stored order under the
// same status guard as invoices.
func (s *OrderService) ShippingLabelForOrder(ctx context.Context, orderID string) (domain.ShippingLabel, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return domain.ShippingLabel{}, err
	}
	if !invoiceableStatus(order.Status) {
		return domain.ShippingLabel{}, fmt.Errorf("%w: %s", ErrOrderNotInvoiceable, order.Status)
	}

	label, err := s.builder.BuildShippingLabel(ctx, order)
	if err != nil {
		return domain.ShippingLabel{}, err
	}

	s.publish(ctx, FiscalEvent{
		Type:           EventLabelIssued,
		OrderID:        order.ID,
		DocumentNumber: label.TrackingCode,
		OccurredAt:     s.now(),
	})

	return label, nil
}

// AccountingRowsForRange exports all orders placed within [from, to).
func (s *OrderService) AccountingRowsForRange(ctx context.Context, from, to time.Time) ([]domain.AccountingRow, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("%w: export range end must follow start", ErrPricingInvalidInput)
	}

	orders, err := s.orders.ListByDateRange(ctx, from.UTC(), to.UTC())
	if err != nil {
		return nil, s.wrapRepoError("", err)
	}

	rows, err := s.exporter.ExportRows(ctx, orders)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, FiscalEvent{
		Type:       EventExportGenerated,
		OccurredAt: s.now(),
		Attributes: map[string]string{
			"from": from.UTC().Format(time.RFC3339),
			"to":   to.UTC().Format(time.RFC3339),
			"rows": fmt.Sprintf("%d", len(rows)),
		},
	})

	return rows, nil
}

func invoiceableStatus(status domain.OrderStatus) bool {
	switch status {
	case domain.OrderStatusPending, domain.OrderStatusPendingPayment, domain.OrderStatusCancelled:
		return false
	default:
		return true
	}
}

func (s *OrderService) publish(ctx context.Context, event FiscalEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger(ctx, "fiscal_event_publish_failed", map[string]any{
			"type":    event.Type,
			"orderId": event.OrderID,
			"error":   err.Error(),
		})
	}
}

func (s *OrderService) wrapRepoError(orderID string, err error) error {
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) && repoErr.IsNotFound() {
		if orderID != "" {
			return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
		}
		return ErrOrderNotFound
	}
	return err
}
