package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hudemas/api/internal/domain"
	"github.com/hudemas/api/internal/repositories"
)

// ErrCheckoutInvalidInput signals malformed checkout submissions.
var ErrCheckoutInvalidInput = errors.New("checkout: invalid input")

// CheckoutService prices carts and turns accepted quotes into pending orders
// with a hosted payment session. The payment page itself is external; this
// service only mints the order and hands back the redirect URL.
type CheckoutService struct {
	pricing  *PricingEngine
	coupons  *CouponService
	payments PaymentProvider
	orders   repositories.OrderRepository

	currency   string
	successURL string
	cancelURL  string

	now    func() time.Time
	logger func(context.Context, string, map[string]any)

	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy
}

// CheckoutServiceDeps lists the collaborators for NewCheckoutService.
type CheckoutServiceDeps struct {
	Pricing    *PricingEngine
	Coupons    *CouponService
	Payments   PaymentProvider
	Orders     repositories.OrderRepository
	Currency   string
	SuccessURL string
	CancelURL  string
	Now        func() time.Time
	Logger     func(context.Context, string, map[string]any)
}

// NewCheckoutService constructs a CheckoutService.
func NewCheckoutService(deps CheckoutServiceDeps) (*CheckoutService, error) {
	if deps.Pricing == nil {
		return nil, errors.New("checkout service: pricing engine is required")
	}
	if deps.Coupons == nil {
		return nil, errors.New("checkout service: coupon service is required")
	}
	if deps.Payments == nil {
		return nil, errors.New("checkout service: payment provider is required")
	}
	if deps.Orders == nil {
		return nil, errors.New("checkout service: order repository is required")
	}
	currency := strings.ToUpper(strings.TrimSpace(deps.Currency))
	if currency == "" {
		currency = "RON"
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	utcNow := func() time.Time { return now().UTC() }

	return &CheckoutService{
		pricing:    deps.Pricing,
		coupons:    deps.Coupons,
		payments:   deps.Payments,
		orders:     deps.Orders,
		currency:   currency,
		successURL: deps.SuccessURL,
		cancelURL:  deps.CancelURL,
		now:        utcNow,
		logger:     logger,
		entropy:    ulid.Monotonic(rand.New(rand.NewSource(utcNow().UnixNano())), 0),
	}, nil
}

// QuoteCartCommand carries a cart to be priced, optionally with a coupon code.
type QuoteCartCommand struct {
	Items          []domain.LineItem
	ShippingMethod domain.ShippingMethod
	CouponCode     string
}

// QuoteResult pairs the breakdown with the rate that produced it.
type QuoteResult struct {
	Breakdown    domain.PriceBreakdown
	DiscountRate float64
	CouponCode   string
}

// Quote resolves the discount rate for the cart and prices it.
func (s *CheckoutService) Quote(ctx context.Context, cmd QuoteCartCommand) (QuoteResult, error) {
	if len(cmd.Items) == 0 {
		return QuoteResult{}, ErrPricingEmptyCart
	}

	var subtotal float64
	for _, item := range cmd.Items {
		subtotal += item.UnitPrice * float64(item.Quantity)
	}

	rate, err := s.coupons.ResolveDiscountRate(ctx, cmd.CouponCode, subtotal)
	if err != nil {
		return QuoteResult{}, err
	}

	breakdown, err := s.pricing.ComputeBreakdown(ctx, ComputeBreakdownCommand{
		Items:          cmd.Items,
		ShippingMethod: cmd.ShippingMethod,
		DiscountRate:   rate,
	})
	if err != nil {
		return QuoteResult{}, err
	}

	return QuoteResult{
		Breakdown:    breakdown,
		DiscountRate: rate,
		CouponCode:   strings.ToUpper(strings.TrimSpace(cmd.CouponCode)),
	}, nil
}

// CreateSessionCommand carries a quoted cart plus the customer placing it.
type CreateSessionCommand struct {
	Items          []domain.LineItem
	ShippingMethod domain.ShippingMethod
	CouponCode     string
	Customer       domain.CustomerDetails
}

// CheckoutSession is the minted order plus the hosted payment redirect.
type CheckoutSession struct {
	OrderID    string
	SessionID  string
	PaymentURL string
	Breakdown  domain.PriceBreakdown
}

// CreateSession prices the cart, persists a pending order snapshot, and opens
// a hosted payment session for the shipping-inclusive total.
func (s *CheckoutService) CreateSession(ctx context.Context, cmd CreateSessionCommand) (CheckoutSession, error) {
	if strings.TrimSpace(cmd.Customer.Email) == "" {
		return CheckoutSession{}, fmt.Errorf("%w: customer email is required", ErrCheckoutInvalidInput)
	}
	if err := validateCustomer(cmd.Customer); err != nil {
		return CheckoutSession{}, fmt.Errorf("%w: %v", ErrCheckoutInvalidInput, err)
	}

	quote, err := s.Quote(ctx, QuoteCartCommand{
		Items:          cmd.Items,
		ShippingMethod: cmd.ShippingMethod,
		CouponCode:     cmd.CouponCode,
	})
	if err != nil {
		return CheckoutSession{}, err
	}

	placedAt := s.now()
	orderID := s.newOrderID(placedAt)

	order := domain.Order{
		ID:             orderID,
		Status:         domain.OrderStatusPendingPayment,
		Currency:       s.currency,
		Items:          cmd.Items,
		ShippingMethod: cmd.ShippingMethod,
		Customer:       cmd.Customer,
		DiscountRate:   quote.DiscountRate,
		CouponCode:     quote.CouponCode,
		Total:          quote.Breakdown.Subtotal - quote.Breakdown.DiscountAmount,
		CreatedAt:      placedAt,
		PlacedAt:       &placedAt,
		UpdatedAt:      placedAt,
	}

	if _, err := s.orders.Insert(ctx, order); err != nil {
		return CheckoutSession{}, err
	}

	session, err := s.payments.CreateCheckoutSession(ctx, PaymentSessionRequest{
		OrderID:       orderID,
		AmountMinor:   amountToMinorUnits(quote.Breakdown.Total),
		Currency:      s.currency,
		Description:   fmt.Sprintf("Comanda %s", domain.DocumentNumberFor(orderID)),
		CustomerEmail: cmd.Customer.Email,
		SuccessURL:    s.successURL,
		CancelURL:     s.cancelURL,
	})
	if err != nil {
		return CheckoutSession{}, err
	}

	s.logger(ctx, "checkout_session_created", map[string]any{
		"orderId":   orderID,
		"sessionId": session.ID,
		"total":     quote.Breakdown.Total,
	})

	return CheckoutSession{
		OrderID:    orderID,
		SessionID:  session.ID,
		PaymentURL: session.URL,
		Breakdown:  quote.Breakdown,
	}, nil
}

func (s *CheckoutService) newOrderID(at time.Time) string {
	s.entropyMu.Lock()
	defer s.entropyMu.Unlock()
	return strings.ToLower(ulid.MustNew(ulid.Timestamp(at), s.entropy).String())
}

func amountToMinorUnits(amount float64) int64 {
	return int64(math.Round(domain.Round2(amount) * 100))
}
