package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hudemas/api/internal/domain"
	"github.com/hudemas/api/internal/platform/httpx"
	"github.com/hudemas/api/internal/services"
)

const maxCheckoutRequestBody = 8 * 1024

// CheckoutService prices carts and mints payment sessions.
type CheckoutService interface {
	Quote(ctx context.Context, cmd services.QuoteCartCommand) (services.QuoteResult, error)
	CreateSession(ctx context.Context, cmd services.CreateSessionCommand) (services.CheckoutSession, error)
}

// CheckoutHandlers exposes cart quoting and payment session endpoints.
type CheckoutHandlers struct {
	checkout CheckoutService
}

// NewCheckoutHandlers constructs checkout handlers.
func NewCheckoutHandlers(checkout CheckoutService) *CheckoutHandlers {
	return &CheckoutHandlers{checkout: checkout}
}

// Routes registers checkout endpoints under the provided router.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/quote", h.quote)
	r.Post("/session", h.createSession)
}

type cartItemRequest struct {
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
}

type quoteRequest struct {
	Items          []cartItemRequest `json:"items"`
	ShippingMethod string            `json:"shippingMethod"`
	CouponCode     string            `json:"couponCode"`
}

type customerRequest struct {
	Type        string `json:"type"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	CompanyName string `json:"companyName"`
	VATID       string `json:"vatId"`
	Address     string `json:"address"`
	City        string `json:"city"`
	County      string `json:"county"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

type sessionRequest struct {
	quoteRequest
	Customer customerRequest `json:"customer"`
}

type breakdownResponse struct {
	Currency       string  `json:"currency"`
	Subtotal       float64 `json:"subtotal"`
	DiscountRate   float64 `json:"discountRate"`
	DiscountAmount float64 `json:"discountAmount"`
	ShippingCost   float64 `json:"shippingCost"`
	VATAmount      float64 `json:"vatAmount"`
	Total          float64 `json:"total"`
}

type quoteResponse struct {
	Breakdown  breakdownResponse `json:"breakdown"`
	CouponCode string            `json:"couponCode,omitempty"`
}

type sessionResponse struct {
	OrderID    string            `json:"orderId"`
	SessionID  string            `json:"sessionId"`
	PaymentURL string            `json:"paymentUrl"`
	Breakdown  breakdownResponse `json:"breakdown"`
}

func (h *CheckoutHandlers) quote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout service unavailable", http.StatusServiceUnavailable))
		return
	}

	var req quoteRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.checkout.Quote(ctx, services.QuoteCartCommand{
		Items:          itemsFromRequest(req.Items),
		ShippingMethod: domain.ShippingMethod(strings.TrimSpace(req.ShippingMethod)),
		CouponCode:     req.CouponCode,
	})
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, quoteResponse{
		Breakdown:  breakdownFromDomain(result.Breakdown),
		CouponCode: result.CouponCode,
	})
}

func (h *CheckoutHandlers) createSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout service unavailable", http.StatusServiceUnavailable))
		return
	}

	var req sessionRequest
	if !h.decode(w, r, &req) {
		return
	}

	session, err := h.checkout.CreateSession(ctx, services.CreateSessionCommand{
		Items:          itemsFromRequest(req.Items),
		ShippingMethod: domain.ShippingMethod(strings.TrimSpace(req.ShippingMethod)),
		CouponCode:     req.CouponCode,
		Customer:       customerFromRequest(req.Customer),
	})
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, sessionResponse{
		OrderID:    session.OrderID,
		SessionID:  session.SessionID,
		PaymentURL: session.PaymentURL,
		Breakdown:  breakdownFromDomain(session.Breakdown),
	})
}

func (h *CheckoutHandlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	ctx := r.Context()
	body, err := readLimitedBody(r, maxCheckoutRequestBody)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), status))
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return false
	}
	return true
}

func itemsFromRequest(items []cartItemRequest) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, domain.LineItem{
			Name:      strings.TrimSpace(item.Name),
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	return out
}

func customerFromRequest(c customerRequest) domain.CustomerDetails {
	return domain.CustomerDetails{
		CustomerType: domain.CustomerType(strings.TrimSpace(c.Type)),
		FirstName:    strings.TrimSpace(c.FirstName),
		LastName:     strings.TrimSpace(c.LastName),
		CompanyName:  strings.TrimSpace(c.CompanyName),
		VATID:        strings.TrimSpace(c.VATID),
		Address:      strings.TrimSpace(c.Address),
		City:         strings.TrimSpace(c.City),
		County:       strings.TrimSpace(c.County),
		Email:        strings.TrimSpace(c.Email),
		Phone:        strings.TrimSpace(c.Phone),
	}
}

func breakdownFromDomain(b domain.PriceBreakdown) breakdownResponse {
	return breakdownResponse{
		Currency:       "RON",
		Subtotal:       domain.Round2(b.Subtotal),
		DiscountRate:   b.DiscountRate,
		DiscountAmount: domain.Round2(b.DiscountAmount),
		ShippingCost:   domain.Round2(b.ShippingCost),
		VATAmount:      domain.Round2(b.VATAmount),
		Total:          domain.Round2(b.Total),
	}
}

func writeCheckoutError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrPricingEmptyCart):
		httpx.WriteError(ctx, w, httpx.NewError("empty_cart", "cart must contain at least one item", http.StatusBadRequest))
	case errors.Is(err, services.ErrPricingInvalidInput),
		errors.Is(err, services.ErrCheckoutInvalidInput),
		errors.Is(err, domain.ErrUnknownShippingMethod):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCouponNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("coupon_not_found", "coupon code does not exist", http.StatusNotFound))
	case errors.Is(err, services.ErrCouponNotEligible):
		httpx.WriteError(ctx, w, httpx.NewError("coupon_not_eligible", "coupon cannot be applied to this cart", http.StatusUnprocessableEntity))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("checkout_error", "failed to process checkout request", http.StatusInternalServerError))
	}
}
