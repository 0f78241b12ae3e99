package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/hudemas/api/internal/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestPricingEngine(t *testing.T) *PricingEngine {
	t.Helper()
	engine, err := NewPricingEngine(PricingEngineDeps{
		Now: fixedClock(time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)),
	})
	if err != nil {
		t.Fatalf("NewPricingEngine returned error: %v", err)
	}
	return engine
}

func TestComputeBreakdownCourierWithDiscount(t *testing.T) {
	engine := newTestPricingEngine(t)

	breakdown, err := engine.ComputeBreakdown(context.Background(), ComputeBreakdownCommand{
		Items: []domain.LineItem{
			{Name: "Goblen Primavara", UnitPrice: 100, Quantity: 2},
		},
		ShippingMethod: domain.ShippingMethodCourier,
		DiscountRate:   0.20,
	})
	if err != nil {
		t.Fatalf("ComputeBreakdown returned error: %v", err)
	}

	if breakdown.Subtotal != 200 {
		t.Errorf("expected subtotal 200, got %v", breakdown.Subtotal)
	}
	if breakdown.DiscountAmount != 40 {
		t.Errorf("expected discount 40, got %v", breakdown.DiscountAmount)
	}
	if breakdown.ShippingCost != 19 {
		t.Errorf("expected shipping 19, got %v", breakdown.ShippingCost)
	}
	if breakdown.Total != 179 {
		t.Errorf("expected total 179, got %v", breakdown.Total)
	}
	// VAT is back-calculated from the shipping-inclusive total and stays at
	// full precision until serialisation.
	expectedVAT := 179 - 179/1.19
	if math.Abs(breakdown.VATAmount-expectedVAT) > 1e-9 {
		t.Errorf("expected vat %v, got %v", expectedVAT, breakdown.VATAmount)
	}
	if got := domain.FormatAmount(breakdown.VATAmount); got != "28.58" {
		t.Errorf("expected serialised vat 28.58, got %s", got)
	}
	if math.Abs(breakdown.TotalBeforeTax+breakdown.VATAmount-breakdown.Total) > 1e-9 {
		t.Errorf("net plus vat should equal total, got %v + %v vs %v", breakdown.TotalBeforeTax, breakdown.VATAmount, breakdown.Total)
	}
	if breakdown.Clamped {
		t.Error("breakdown should not be clamped")
	}
}

func TestComputeBreakdownLockerNoDiscount(t *testing.T) {
	engine := newTestPricingEngine(t)

	breakdown, err := engine.ComputeBreakdown(context.Background(), ComputeBreakdownCommand{
		Items: []domain.LineItem{
			{Name: "Gherghef lemn", UnitPrice: 45.50, Quantity: 1},
		},
		ShippingMethod: domain.ShippingMethodLocker,
		DiscountRate:   0,
	})
	if err != nil {
		t.Fatalf("ComputeBreakdown returned error: %v", err)
	}

	if breakdown.ShippingCost != 12 {
		t.Errorf("expected locker shipping 12, got %v", breakdown.ShippingCost)
	}
	if math.Abs(breakdown.Total-57.50) > 1e-9 {
		t.Errorf("expected total 57.50, got %v", breakdown.Total)
	}
	if breakdown.DiscountAmount != 0 {
		t.Errorf("expected zero discount, got %v", breakdown.DiscountAmount)
	}
}

func TestComputeBreakdownFullDiscountLeavesShipping(t *testing.T) {
	engine := newTestPricingEngine(t)

	breakdown, err := engine.ComputeBreakdown(context.Background(), ComputeBreakdownCommand{
		Items:          []domain.LineItem{{Name: "Set ace", UnitPrice: 30, Quantity: 1}},
		ShippingMethod: domain.ShippingMethodCourier,
		DiscountRate:   1,
	})
	if err != nil {
		t.Fatalf("ComputeBreakdown returned error: %v", err)
	}
	if breakdown.Total != 19 {
		t.Errorf("expected only shipping to remain, got %v", breakdown.Total)
	}
	// Even at the full-discount boundary the total stays non-negative, so the
	// zero-clamp must not report.
	if breakdown.Clamped {
		t.Error("full discount must not clamp the total")
	}
}

func TestComputeBreakdownNeverClampsValidatedInput(t *testing.T) {
	engine := newTestPricingEngine(t)

	// Worst case for the total: free items, maximal discount, cheapest
	// shipping. The shipping cost keeps the total positive.
	breakdown, err := engine.ComputeBreakdown(context.Background(), ComputeBreakdownCommand{
		Items:          []domain.LineItem{{Name: "Mostre fire", UnitPrice: 0, Quantity: 3}},
		ShippingMethod: domain.ShippingMethodLocker,
		DiscountRate:   1,
	})
	if err != nil {
		t.Fatalf("ComputeBreakdown returned error: %v", err)
	}
	if breakdown.Clamped {
		t.Error("validated inputs must never trigger the zero clamp")
	}
	if breakdown.Total < 0 {
		t.Errorf("total must be non-negative, got %v", breakdown.Total)
	}
	if breakdown.Total != 12 {
		t.Errorf("expected shipping-only total 12, got %v", breakdown.Total)
	}
}

func TestComputeBreakdownValidation(t *testing.T) {
	engine := newTestPricingEngine(t)
	ctx := context.Background()

	if _, err := engine.ComputeBreakdown(ctx, ComputeBreakdownCommand{ShippingMethod: domain.ShippingMethodCourier}); !errors.Is(err, ErrPricingEmptyCart) {
		t.Errorf("expected ErrPricingEmptyCart, got %v", err)
	}

	items := []domain.LineItem{{Name: "Goblen", UnitPrice: 10, Quantity: 1}}

	if _, err := engine.ComputeBreakdown(ctx, ComputeBreakdownCommand{Items: items, ShippingMethod: "pigeon"}); !errors.Is(err, domain.ErrUnknownShippingMethod) {
		t.Errorf("expected ErrUnknownShippingMethod, got %v", err)
	}
	if _, err := engine.ComputeBreakdown(ctx, ComputeBreakdownCommand{Items: items, ShippingMethod: domain.ShippingMethodCourier, DiscountRate: 1.2}); !errors.Is(err, ErrPricingInvalidInput) {
		t.Errorf("expected ErrPricingInvalidInput for rate above 1, got %v", err)
	}
	if _, err := engine.ComputeBreakdown(ctx, ComputeBreakdownCommand{Items: items, ShippingMethod: domain.ShippingMethodCourier, DiscountRate: -0.1}); !errors.Is(err, ErrPricingInvalidInput) {
		t.Errorf("expected ErrPricingInvalidInput for negative rate, got %v", err)
	}

	bad := []domain.LineItem{{Name: "Goblen", UnitPrice: 10, Quantity: 0}}
	if _, err := engine.ComputeBreakdown(ctx, ComputeBreakdownCommand{Items: bad, ShippingMethod: domain.ShippingMethodCourier}); !errors.Is(err, ErrPricingInvalidInput) {
		t.Errorf("expected ErrPricingInvalidInput for zero quantity, got %v", err)
	}
}

func TestBreakdownForOrderIsDeterministic(t *testing.T) {
	engine := newTestPricingEngine(t)

	order := domain.Order{
		ID: "01hxyzabcdef",
		Items: []domain.LineItem{
			{Name: "Goblen Iarna", UnitPrice: 129.99, Quantity: 1},
			{Name: "Fir melana", UnitPrice: 7.25, Quantity: 4},
		},
		ShippingMethod: domain.ShippingMethodCourier,
		DiscountRate:   0.10,
	}

	first, err := engine.BreakdownForOrder(context.Background(), order)
	if err != nil {
		t.Fatalf("BreakdownForOrder returned error: %v", err)
	}
	second, err := engine.BreakdownForOrder(context.Background(), order)
	if err != nil {
		t.Fatalf("BreakdownForOrder returned error: %v", err)
	}
	if first != second {
		t.Errorf("expected identical breakdowns, got %#v and %#v", first, second)
	}
}
