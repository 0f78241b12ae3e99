package domain

// PriceBreakdown captures the derived monetary results of pricing an order.
// It is never persisted; every consumer recomputes it from the order snapshot.
//
// Invariant: Total == Subtotal - DiscountAmount + ShippingCost, with VATAmount
// back-calculated from the VAT-inclusive Total. The discount applies before
// shipping while VAT is derived after shipping; this mirrors the storefront's
// historical invoices and must not be "corrected" without a fiscal review.
type PriceBreakdown struct {
	Subtotal       float64
	DiscountAmount float64
	DiscountRate   float64
	ShippingCost   float64
	TotalBeforeTax float64
	VATAmount      float64
	Total          float64

	// Clamped is set when the discount would have driven the total negative
	// and it was clamped to zero. Non-fatal; callers log and continue.
	Clamped bool
}
