package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hudemas/api/internal/domain"
	"github.com/hudemas/api/internal/services"
)

type stubOrderDocuments struct {
	getFunc     func(ctx context.Context, orderID string) (domain.Order, error)
	invoiceFunc func(ctx context.Context, orderID string) (domain.InvoiceDocument, error)
	labelFunc   func(ctx context.Context, orderID string) (domain.ShippingLabel, error)
}

func (s *stubOrderDocuments) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	if s.getFunc == nil {
		return domain.Order{}, services.ErrOrderNotFound
	}
	return s.getFunc(ctx, orderID)
}

func (s *stubOrderDocuments) InvoiceForOrder(ctx context.Context, orderID string) (domain.InvoiceDocument, error) {
	if s.invoiceFunc == nil {
		return domain.InvoiceDocument{}, services.ErrOrderNotFound
	}
	return s.invoiceFunc(ctx, orderID)
}

func (s *stubOrderDocuments) ShippingLabelForOrder(ctx context.Context, orderID string) (domain.ShippingLabel, error) {
	if s.labelFunc == nil {
		return domain.ShippingLabel{}, services.ErrOrderNotFound
	}
	return s.labelFunc(ctx, orderID)
}

func TestOrderHandlersGetOrder(t *testing.T) {
	router := chi.NewRouter()
	placedAt := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	handler := NewOrderHandlers(nil, &stubOrderDocuments{
		getFunc: func(ctx context.Context, orderID string) (domain.Order, error) {
			if orderID != "abcdef1234567890" {
				t.Fatalf("unexpected order id %s", orderID)
			}
			return domain.Order{
				ID:             orderID,
				Status:         domain.OrderStatusProcessing,
				Currency:       "RON",
				ShippingMethod: domain.ShippingMethodCourier,
				Items:          []domain.LineItem{{Name: "Goblen Primavara", UnitPrice: 119, Quantity: 2}},
				Total:          238,
				CreatedAt:      placedAt,
				PlacedAt:       &placedAt,
			}, nil
		},
	}, nil)
	handler.Routes(router)

	req := httptest.NewRequest(http.MethodGet, "/abcdef1234567890", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp orderResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "processing" || resp.Total != 238 {
		t.Fatalf("unexpected response %#v", resp)
	}
	if resp.PlacedAt == "" {
		t.Fatal("expected placedAt to be set")
	}
}

func TestOrderHandlersGetInvoice(t *testing.T) {
	router := chi.NewRouter()
	handler := NewOrderHandlers(nil, &stubOrderDocuments{
		invoiceFunc: func(ctx context.Context, orderID string) (domain.InvoiceDocument, error) {
			return domain.InvoiceDocument{
				DocumentNumber: "HUD-abcdef12",
				IssueDate:      time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
				ClientName:     "Ana Pop",
				ClientTaxID:    "-",
				Lines: []domain.InvoiceLine{
					{Description: "Goblen Primavara", Unit: "buc", Quantity: 2, UnitPrice: 119, Net: 200, VAT: 38, Gross: 238},
				},
				ShippingLine: domain.InvoiceLine{Description: "Transport FanCourier", Unit: "buc", Quantity: 1, UnitPrice: 19, Net: 15.97, VAT: 3.03, Gross: 19},
				TotalNet:     215.97,
				TotalVAT:     41.03,
				TotalGross:   257,
			}, nil
		},
	}, nil)
	handler.Routes(router)

	req := httptest.NewRequest(http.MethodGet, "/abcdef1234567890/invoice", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp invoiceResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.DocumentNumber != "HUD-abcdef12" || resp.TotalGross != 257 {
		t.Fatalf("unexpected response %#v", resp)
	}
	if resp.Render.Title != "FACTURA FISCALA" {
		t.Fatalf("unexpected render title %q", resp.Render.Title)
	}
	if len(resp.Render.Lines) != 2 || resp.Render.Lines[1].Description != "Transport FanCourier" {
		t.Fatalf("unexpected render lines %#v", resp.Render.Lines)
	}
	if resp.Render.TotalGross != "257,00 RON" {
		t.Fatalf("unexpected rendered total %q", resp.Render.TotalGross)
	}
}

func TestOrderHandlersGetLabel(t *testing.T) {
	router := chi.NewRouter()
	handler := NewOrderHandlers(nil, &stubOrderDocuments{
		labelFunc: func(ctx context.Context, orderID string) (domain.ShippingLabel, error) {
			return domain.ShippingLabel{
				TrackingCode: "abcdef12999",
				Carrier:      domain.ShippingMethodLocker,
				CarrierLabel: "Sameday Easybox",
				Recipient: domain.CustomerDetails{
					CustomerType: domain.CustomerTypePrivate,
					FirstName:    "Ana",
					LastName:     "Pop",
					Address:      "Str. Lunga 10",
				},
				Origin: domain.SupplierInfo{LegalName: "HUDEMAS PROD SRL"},
			}, nil
		},
	}, nil)
	handler.Routes(router)

	req := httptest.NewRequest(http.MethodGet, "/abcdef1234567890/label", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp labelResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TrackingCode != "abcdef12999" || resp.CarrierLabel != "Sameday Easybox" {
		t.Fatalf("unexpected response %#v", resp)
	}
	if len(resp.Render.ReceiverBlock) == 0 || resp.Render.ReceiverBlock[0] != "Ana Pop" {
		t.Fatalf("unexpected receiver block %#v", resp.Render.ReceiverBlock)
	}
}

func TestOrderHandlersMapServiceErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", services.ErrOrderNotFound, http.StatusNotFound, "order_not_found"},
		{"not invoiceable", services.ErrOrderNotInvoiceable, http.StatusConflict, "order_not_invoiceable"},
		{"missing details", services.ErrMissingCustomerDetails, http.StatusUnprocessableEntity, "missing_customer_details"},
		{"unknown shipping", domain.ErrUnknownShippingMethod, http.StatusUnprocessableEntity, "unknown_shipping_method"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := chi.NewRouter()
			handler := NewOrderHandlers(nil, &stubOrderDocuments{
				invoiceFunc: func(context.Context, string) (domain.InvoiceDocument, error) {
					return domain.InvoiceDocument{}, tc.err
				},
			}, nil)
			handler.Routes(router)

			req := httptest.NewRequest(http.MethodGet, "/abcdef1234567890/invoice", nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rr.Code)
			}
			var errResp map[string]any
			if err := json.Unmarshal(rr.Body.Bytes(), &errResp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if errResp["error"] != tc.wantCode {
				t.Fatalf("expected error code %s, got %#v", tc.wantCode, errResp["error"])
			}
		})
	}
}
