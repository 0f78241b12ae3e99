package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hudemas/api/internal/domain"
	"github.com/hudemas/api/internal/format"
	"github.com/hudemas/api/internal/platform/auth"
	"github.com/hudemas/api/internal/platform/httpx"
	"github.com/hudemas/api/internal/services"
)

// OrderDocumentsService reads orders and derives their fiscal documents.
type OrderDocumentsService interface {
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	InvoiceForOrder(ctx context.Context, orderID string) (domain.InvoiceDocument, error)
	ShippingLabelForOrder(ctx context.Context, orderID string) (domain.ShippingLabel, error)
}

// OrderHandlers exposes order snapshots and their invoice/AWB documents to
// back-office staff.
type OrderHandlers struct {
	authn     *auth.Authenticator
	orders    OrderDocumentsService
	formatter *format.Formatter
}

// NewOrderHandlers constructs order handlers guarded by Firebase authentication.
func NewOrderHandlers(authn *auth.Authenticator, orders OrderDocumentsService, formatter *format.Formatter) *OrderHandlers {
	if formatter == nil {
		formatter = format.NewFormatter("RON")
	}
	return &OrderHandlers{
		authn:     authn,
		orders:    orders,
		formatter: formatter,
	}
}

// Routes registers order document endpoints under the provided router.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	group := r
	if h.authn != nil {
		group = group.With(h.authn.RequireFirebaseAuth(auth.RoleStaff, auth.RoleAdmin))
	}
	group.Get("/{orderID}", h.getOrder)
	group.Get("/{orderID}/invoice", h.getInvoice)
	group.Get("/{orderID}/label", h.getLabel)
}

type orderItemResponse struct {
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
}

type orderResponse struct {
	ID             string              `json:"id"`
	Status         string              `json:"status"`
	Currency       string              `json:"currency"`
	ShippingMethod string              `json:"shippingMethod"`
	Items          []orderItemResponse `json:"items"`
	CouponCode     string              `json:"couponCode,omitempty"`
	DiscountRate   float64             `json:"discountRate"`
	Total          float64             `json:"total"`
	CreatedAt      string              `json:"createdAt"`
	PlacedAt       string              `json:"placedAt,omitempty"`
	PaidAt         string              `json:"paidAt,omitempty"`
}

type invoiceResponse struct {
	DocumentNumber string                      `json:"documentNumber"`
	IssueDate      string                      `json:"issueDate"`
	TotalNet       float64                     `json:"totalNet"`
	TotalVAT       float64                     `json:"totalVat"`
	TotalGross     float64                     `json:"totalGross"`
	Render         format.InvoiceRenderPayload `json:"render"`
}

type labelResponse struct {
	TrackingCode string                    `json:"trackingCode"`
	Carrier      string                    `json:"carrier"`
	CarrierLabel string                    `json:"carrierLabel"`
	Render       format.LabelRenderPayload `json:"render"`
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(ctx, orderID)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			Name:      item.Name,
			UnitPrice: domain.Round2(item.UnitPrice),
			Quantity:  item.Quantity,
		})
	}

	resp := orderResponse{
		ID:             order.ID,
		Status:         string(order.Status),
		Currency:       order.Currency,
		ShippingMethod: string(order.ShippingMethod),
		Items:          items,
		CouponCode:     order.CouponCode,
		DiscountRate:   order.DiscountRate,
		Total:          domain.Round2(order.Total),
		CreatedAt:      formatTime(order.CreatedAt),
	}
	if order.PlacedAt != nil {
		resp.PlacedAt = formatTime(*order.PlacedAt)
	}
	if order.PaidAt != nil {
		resp.PaidAt = formatTime(*order.PaidAt)
	}

	writeJSONResponse(w, http.StatusOK, resp)
}

func (h *OrderHandlers) getInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}

	invoice, err := h.orders.InvoiceForOrder(ctx, orderID)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, invoiceResponse{
		DocumentNumber: invoice.DocumentNumber,
		IssueDate:      formatTime(invoice.IssueDate),
		TotalNet:       domain.Round2(invoice.TotalNet),
		TotalVAT:       domain.Round2(invoice.TotalVAT),
		TotalGross:     domain.Round2(invoice.TotalGross),
		Render:         h.formatter.RenderInvoice(invoice),
	})
}

func (h *OrderHandlers) getLabel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}

	label, err := h.orders.ShippingLabelForOrder(ctx, orderID)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, labelResponse{
		TrackingCode: label.TrackingCode,
		Carrier:      string(label.Carrier),
		CarrierLabel: label.CarrierLabel,
		Render:       h.formatter.RenderLabel(label),
	})
}

func (h *OrderHandlers) orderID(w http.ResponseWriter, r *http.Request) (string, bool) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("orders_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return "", false
	}
	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
	if orderID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "order id is required", http.StatusBadRequest))
		return "", false
	}
	return orderID, true
}

func writeOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order does not exist", http.StatusNotFound))
	case errors.Is(err, services.ErrOrderNotInvoiceable):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_invoiceable", "order status does not allow fiscal documents", http.StatusConflict))
	case errors.Is(err, services.ErrMissingCustomerDetails):
		httpx.WriteError(ctx, w, httpx.NewError("missing_customer_details", err.Error(), http.StatusUnprocessableEntity))
	case errors.Is(err, domain.ErrUnknownShippingMethod):
		httpx.WriteError(ctx, w, httpx.NewError("unknown_shipping_method", err.Error(), http.StatusUnprocessableEntity))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("order_error", "failed to process order request", http.StatusInternalServerError))
	}
}
