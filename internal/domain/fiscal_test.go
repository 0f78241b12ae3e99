package domain

import (
	"errors"
	"testing"
)

func TestDocumentNumberDerivation(t *testing.T) {
	if got := DocumentNumberFor("abcdef1234567890"); got != "HUD-abcdef12" {
		t.Fatalf("expected HUD-abcdef12, got %s", got)
	}
	if got := TrackingCodeFor("abcdef1234567890"); got != "abcdef12999" {
		t.Fatalf("expected abcdef12999, got %s", got)
	}
	// Short ids are used as-is rather than padded.
	if got := DocumentNumberFor("ab12"); got != "HUD-ab12" {
		t.Fatalf("expected HUD-ab12, got %s", got)
	}
}

func TestResolveClient(t *testing.T) {
	company := CustomerDetails{
		CustomerType: CustomerTypeCompany,
		CompanyName:  "ACME SRL",
		VATID:        "RO123",
		FirstName:    "Ignored",
		LastName:     "Ignored",
	}
	name, taxID := ResolveClient(company)
	if name != "ACME SRL" || taxID != "RO123" {
		t.Fatalf("unexpected company resolution %q / %q", name, taxID)
	}

	private := CustomerDetails{
		CustomerType: CustomerTypePrivate,
		FirstName:    "Ana",
		LastName:     "Pop",
	}
	name, taxID = ResolveClient(private)
	if name != "Ana Pop" {
		t.Fatalf("expected Ana Pop, got %q", name)
	}
	if taxID != EmptyTaxIDPlaceholder {
		t.Fatalf("expected placeholder tax id, got %q", taxID)
	}
}

func TestResolveShippingRate(t *testing.T) {
	courier, err := ResolveShippingRate(ShippingMethodCourier)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if courier.Cost != 19.00 || courier.CarrierLabel != "FanCourier" {
		t.Fatalf("unexpected courier rate %#v", courier)
	}

	locker, err := ResolveShippingRate(ShippingMethodLocker)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if locker.Cost != 12.00 || locker.CarrierLabel != "Sameday Easybox" {
		t.Fatalf("unexpected locker rate %#v", locker)
	}

	if _, err := ResolveShippingRate(ShippingMethod("drone")); !errors.Is(err, ErrUnknownShippingMethod) {
		t.Fatalf("expected ErrUnknownShippingMethod, got %v", err)
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	for _, status := range []OrderStatus{OrderStatusCompleted, OrderStatusRefunded, OrderStatusCancelled} {
		if !status.IsTerminal() {
			t.Fatalf("expected %s to be terminal", status)
		}
	}
	for _, status := range []OrderStatus{OrderStatusPending, OrderStatusPendingPayment, OrderStatusProcessing} {
		if status.IsTerminal() {
			t.Fatalf("expected %s to be non-terminal", status)
		}
	}
}
