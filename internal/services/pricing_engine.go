package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hudemas/api/internal/domain"
)

var (
	// ErrPricingEmptyCart signals a quote request without any line items.
	ErrPricingEmptyCart = errors.New("pricing: cart has no items")
	// ErrPricingInvalidInput signals bad quantities, prices, or discount rates.
	ErrPricingInvalidInput = errors.New("pricing: invalid input")
)

// PricingEngine computes the full price breakdown for a cart or a stored
// order snapshot. It is pure and stateless; every derived amount is kept at
// full float precision and rounded only when serialised.
type PricingEngine struct {
	now    func() time.Time
	logger func(context.Context, string, map[string]any)
}

// PricingEngineDeps lists the collaborators for NewPricingEngine.
type PricingEngineDeps struct {
	Now    func() time.Time
	Logger func(context.Context, string, map[string]any)
}

// NewPricingEngine constructs a PricingEngine.
func NewPricingEngine(deps PricingEngineDeps) (*PricingEngine, error) {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &PricingEngine{
		now:    func() time.Time { return now().UTC() },
		logger: logger,
	}, nil
}

// ComputeBreakdownCommand carries the three pricing inputs.
type ComputeBreakdownCommand struct {
	Items          []domain.LineItem
	ShippingMethod domain.ShippingMethod
	DiscountRate   float64
}

// ComputeBreakdown prices the given items with the discount applied before
// shipping. The total is shipping inclusive; VAT is back-calculated from it
// at the statutory inclusive rate.
//
// A negative pre-clamp total is clamped to zero and reported through the
// Clamped flag rather than an error. With the validation above (discount rate
// in [0,1], non-negative unit prices, fixed shipping rates) the pre-clamp
// total cannot go negative, so the clamp never fires today; it is kept as a
// guard so a future pricing rule that can push the total below zero degrades
// to a flagged zero-total breakdown instead of a negative invoice.
func (e *PricingEngine) ComputeBreakdown(ctx context.Context, cmd ComputeBreakdownCommand) (domain.PriceBreakdown, error) {
	if len(cmd.Items) == 0 {
		return domain.PriceBreakdown{}, ErrPricingEmptyCart
	}
	if cmd.DiscountRate < 0 || cmd.DiscountRate > 1 {
		return domain.PriceBreakdown{}, fmt.Errorf("%w: discount rate %v outside [0,1]", ErrPricingInvalidInput, cmd.DiscountRate)
	}

	rate, err := domain.ResolveShippingRate(cmd.ShippingMethod)
	if err != nil {
		return domain.PriceBreakdown{}, err
	}

	var subtotal float64
	for idx, item := range cmd.Items {
		if item.Quantity <= 0 {
			return domain.PriceBreakdown{}, fmt.Errorf("%w: item %d quantity must be positive", ErrPricingInvalidInput, idx)
		}
		if item.UnitPrice < 0 {
			return domain.PriceBreakdown{}, fmt.Errorf("%w: item %d unit price cannot be negative", ErrPricingInvalidInput, idx)
		}
		subtotal += item.UnitPrice * float64(item.Quantity)
	}

	discountAmount := subtotal * cmd.DiscountRate
	total := subtotal - discountAmount + rate.Cost

	clamped := false
	if total < 0 {
		e.logger(ctx, "pricing_total_clamped", map[string]any{
			"subtotal": subtotal,
			"discount": discountAmount,
			"shipping": rate.Cost,
			"total":    total,
		})
		total = 0
		clamped = true
	}

	vat := total - total/(1+domain.VATRate)

	return domain.PriceBreakdown{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		DiscountRate:   cmd.DiscountRate,
		ShippingCost:   rate.Cost,
		TotalBeforeTax: total - vat,
		VATAmount:      vat,
		Total:          total,
		Clamped:        clamped,
	}, nil
}

// BreakdownForOrder recomputes the breakdown for a stored order snapshot
// using its own items, shipping method, and discount rate. Deterministic:
// repeated calls over the same snapshot yield identical breakdowns.
func (e *PricingEngine) BreakdownForOrder(ctx context.Context, order domain.Order) (domain.PriceBreakdown, error) {
	return e.ComputeBreakdown(ctx, ComputeBreakdownCommand{
		Items:          order.Items,
		ShippingMethod: order.ShippingMethod,
		DiscountRate:   order.DiscountRate,
	})
}
