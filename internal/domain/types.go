package domain

import (
	"time"
)

// CustomerType distinguishes private individuals from companies for fiscal purposes.
type CustomerType string

const (
	// CustomerTypePrivate is a natural person identified by first and last name.
	CustomerTypePrivate CustomerType = "private"
	// CustomerTypeCompany is a legal entity identified by company name and VAT id.
	CustomerTypeCompany CustomerType = "company"
)

// CustomerDetails captures the checkout identity and delivery contact of an order.
type CustomerDetails struct {
	CustomerType CustomerType
	FirstName    string
	LastName     string
	CompanyName  string
	VATID        string
	Address      string
	City         string
	County       string
	Email        string
	Phone        string
}

// LineItem is a single product entry on an order. Immutable once attached.
type LineItem struct {
	Name      string
	UnitPrice float64
	Quantity  int
	Currency  string
}

// OrderStatus enumerates valid lifecycle states for orders. The lifecycle is
// owned by the order-management side; this module only reads snapshots.
type OrderStatus string

const (
	// OrderStatusPending indicates the order was created at checkout submission.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusPendingPayment indicates the order awaits payment completion.
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	// OrderStatusProcessing indicates payment was confirmed or an admin accepted the order.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusCompleted indicates the order has been shipped.
	OrderStatusCompleted OrderStatus = "completed"
	// OrderStatusRefunded indicates the order was refunded after payment.
	OrderStatusRefunded OrderStatus = "refunded"
	// OrderStatusCancelled indicates the order was cancelled before fulfilment.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are possible from the status.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusRefunded, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is a read-only snapshot of an order header as persisted by the
// storefront backend.
//
// Total is the stored items total after discount, excluding shipping: the
// shipping cost is always derived from the method via the rate table, never
// stored on the order.
type Order struct {
	ID             string
	Status         OrderStatus
	Currency       string
	Items          []LineItem
	ShippingMethod ShippingMethod
	Customer       CustomerDetails
	DiscountRate   float64
	CouponCode     string
	Total          float64
	CreatedAt      time.Time
	PlacedAt       *time.Time
	PaidAt         *time.Time
	UpdatedAt      time.Time
}

// DocumentDate returns the date fiscal documents should carry for the order.
func (o Order) DocumentDate() time.Time {
	if o.PlacedAt != nil && !o.PlacedAt.IsZero() {
		return *o.PlacedAt
	}
	return o.CreatedAt
}

// CouponType enumerates supported coupon discount mechanics.
type CouponType string

const (
	// CouponTypePercentage discounts a percentage of the cart subtotal.
	CouponTypePercentage CouponType = "percentage"
	// CouponTypeFixed discounts a fixed RON amount from the cart subtotal.
	CouponTypeFixed CouponType = "fixed"
)

// Coupon describes an admin-managed discount code. Nil window bounds mean
// the coupon has no start or expiry constraint.
type Coupon struct {
	Code          string
	Type          CouponType
	Value         float64
	MinOrderTotal float64
	Active        bool
	StartsAt      *time.Time
	EndsAt        *time.Time
	UpdatedAt     time.Time
}
