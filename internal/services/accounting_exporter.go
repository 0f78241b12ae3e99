package services

import (
	"context"
	"errors"
	"time"

	"github.com/hudemas/api/internal/domain"
)

// AccountingExporter flattens order snapshots into bookkeeping rows. The
// stored order total excludes shipping, so the exported gross re-adds the
// shipping cost before decomposing net and VAT.
type AccountingExporter struct {
	now    func() time.Time
	logger func(context.Context, string, map[string]any)
}

// AccountingExporterDeps lists the collaborators for NewAccountingExporter.
type AccountingExporterDeps struct {
	Now    func() time.Time
	Logger func(context.Context, string, map[string]any)
}

// NewAccountingExporter constructs an AccountingExporter.
func NewAccountingExporter(deps AccountingExporterDeps) (*AccountingExporter, error) {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &AccountingExporter{
		now:    func() time.Time { return now().UTC() },
		logger: logger,
	}, nil
}

// ExportRows converts orders into accounting rows, one per order, preserving
// input order. Amounts stay at full precision; rounding happens at
// serialisation. Orders with an unknown shipping method export with zero
// shipping and a warning instead of failing the whole batch.
func (e *AccountingExporter) ExportRows(ctx context.Context, orders []domain.Order) ([]domain.AccountingRow, error) {
	if ctx != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}

	rows := make([]domain.AccountingRow, 0, len(orders))
	for _, order := range orders {
		shipping := 0.0
		rate, err := domain.ResolveShippingRate(order.ShippingMethod)
		switch {
		case err == nil:
			shipping = rate.Cost
		case errors.Is(err, domain.ErrUnknownShippingMethod):
			e.logger(ctx, "export_unknown_shipping_method", map[string]any{
				"orderId": order.ID,
				"method":  string(order.ShippingMethod),
			})
		default:
			return nil, err
		}

		gross := order.Total + shipping
		net := gross / (1 + domain.VATRate)
		clientName, taxID := domain.ResolveClient(order.Customer)

		date := order.DocumentDate()
		if date.IsZero() {
			date = e.now()
		}

		rows = append(rows, domain.AccountingRow{
			Date:           date,
			DocumentNumber: domain.DocumentNumberFor(order.ID),
			ClientName:     clientName,
			TaxID:          taxID,
			NetAmount:      net,
			VATAmount:      gross - net,
			GrossAmount:    gross,
		})
	}

	return rows, nil
}
