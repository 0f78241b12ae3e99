package firestore

import (
	"errors"
	"math"
	"testing"
	"time"

	domain "github.com/hudemas/api/internal/domain"
)

func TestDecodeOrderMixedMoneyRepresentations(t *testing.T) {
	createdAt := time.Date(2026, time.February, 28, 10, 0, 0, 0, time.UTC)
	data := map[string]any{
		"status":         "processing",
		"currency":       "RON",
		"shippingMethod": "courier",
		"total":          "1.234,56",
		"discountRate":   0.1,
		"items": []any{
			map[string]any{"name": "Goblen Primavara", "price": "129,99", "quantity": int64(2)},
			map[string]any{"name": "Fir melana", "price": 7.25, "quantity": 4},
		},
		"customer": map[string]any{
			"type":      "private",
			"firstName": "Ana",
			"lastName":  "Pop",
			"email":     "ana@example.com",
		},
		"createdAt": createdAt,
		"paidAt":    createdAt.Add(time.Hour),
	}

	order, err := decodeOrder("abcdef1234567890", data)
	if err != nil {
		t.Fatalf("decodeOrder returned error: %v", err)
	}

	if math.Abs(order.Total-1234.56) > 1e-9 {
		t.Errorf("expected total 1234.56, got %v", order.Total)
	}
	if order.DiscountRate != 0.1 {
		t.Errorf("expected discount rate 0.1, got %v", order.DiscountRate)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(order.Items))
	}
	if math.Abs(order.Items[0].UnitPrice-129.99) > 1e-9 {
		t.Errorf("expected comma-decimal price 129.99, got %v", order.Items[0].UnitPrice)
	}
	if order.Items[0].Quantity != 2 || order.Items[1].Quantity != 4 {
		t.Errorf("unexpected quantities %d / %d", order.Items[0].Quantity, order.Items[1].Quantity)
	}
	if order.Customer.FirstName != "Ana" {
		t.Errorf("unexpected customer %#v", order.Customer)
	}
	if order.PaidAt == nil || !order.PaidAt.Equal(createdAt.Add(time.Hour)) {
		t.Errorf("unexpected paidAt %v", order.PaidAt)
	}
	if order.PlacedAt != nil {
		t.Errorf("expected nil placedAt, got %v", order.PlacedAt)
	}
}

func TestDecodeOrderLegacyFields(t *testing.T) {
	data := map[string]any{
		"status":         "completed",
		"shippingMethod": "locker",
		"total":          200,
		"items": []any{
			map[string]any{"name": "Gherghef", "unitPrice": "45,50"},
		},
		"customer": map[string]any{
			"type":        "company",
			"companyName": "ACME SRL",
			"cui":         "RO123",
		},
	}

	order, err := decodeOrder("0123456789abcdef", data)
	if err != nil {
		t.Fatalf("decodeOrder returned error: %v", err)
	}
	if math.Abs(order.Items[0].UnitPrice-45.50) > 1e-9 {
		t.Errorf("expected legacy unitPrice 45.50, got %v", order.Items[0].UnitPrice)
	}
	if order.Items[0].Quantity != 1 {
		t.Errorf("expected default quantity 1, got %d", order.Items[0].Quantity)
	}
	if order.Customer.VATID != "RO123" {
		t.Errorf("expected cui fallback, got %q", order.Customer.VATID)
	}
}

func TestDecodeOrderRejectsMalformedMoney(t *testing.T) {
	data := map[string]any{
		"status": "processing",
		"total":  "12,34,56",
	}
	if _, err := decodeOrder("bad", data); !errors.Is(err, domain.ErrInvalidMoney) {
		t.Errorf("expected ErrInvalidMoney, got %v", err)
	}
}

func TestEncodeDecodeOrderRoundTrip(t *testing.T) {
	placedAt := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	order := domain.Order{
		ID:             "01hxyzabcdefghijklmnopqrst",
		Status:         domain.OrderStatusPendingPayment,
		Currency:       "RON",
		ShippingMethod: domain.ShippingMethodCourier,
		Items: []domain.LineItem{
			{Name: "Goblen Iarna", UnitPrice: 129.99, Quantity: 1},
		},
		Customer: domain.CustomerDetails{
			CustomerType: domain.CustomerTypePrivate,
			FirstName:    "Ana",
			LastName:     "Pop",
			Email:        "ana@example.com",
		},
		DiscountRate: 0.2,
		CouponCode:   "MARTISOR20",
		Total:        103.99,
		CreatedAt:    placedAt,
		PlacedAt:     &placedAt,
		UpdatedAt:    placedAt,
	}

	encoded := encodeOrder(order)

	// Firestore hands item entries back as []any.
	rawItems := encoded["items"].([]map[string]any)
	items := make([]any, 0, len(rawItems))
	for _, item := range rawItems {
		items = append(items, item)
	}
	encoded["items"] = items

	decoded, err := decodeOrder(order.ID, encoded)
	if err != nil {
		t.Fatalf("decodeOrder returned error: %v", err)
	}

	if decoded.Status != order.Status || decoded.CouponCode != order.CouponCode {
		t.Errorf("unexpected decoded order %#v", decoded)
	}
	if decoded.Total != order.Total || decoded.DiscountRate != order.DiscountRate {
		t.Errorf("amounts did not round-trip: %#v", decoded)
	}
	if decoded.PlacedAt == nil || !decoded.PlacedAt.Equal(placedAt) {
		t.Errorf("placedAt did not round-trip: %v", decoded.PlacedAt)
	}
	if decoded.Customer != order.Customer {
		t.Errorf("customer did not round-trip: %#v", decoded.Customer)
	}
}
