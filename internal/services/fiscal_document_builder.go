package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/hudemas/api/internal/domain"
)

// ErrMissingCustomerDetails signals that an order lacks the customer fields a
// fiscal document legally requires. Document generation fails closed.
var ErrMissingCustomerDetails = errors.New("fiscal: missing customer details")

const invoiceLineUnit = "buc"

// FiscalDocumentBuilder assembles invoice and shipping label payloads from
// order snapshots. Pure and deterministic: the same order always produces the
// same document.
type FiscalDocumentBuilder struct {
	supplier domain.SupplierInfo
	now      func() time.Time
	logger   func(context.Context, string, map[string]any)
}

// FiscalDocumentBuilderDeps lists the collaborators for NewFiscalDocumentBuilder.
type FiscalDocumentBuilderDeps struct {
	Supplier domain.SupplierInfo
	Now      func() time.Time
	Logger   func(context.Context, string, map[string]any)
}

// NewFiscalDocumentBuilder constructs a FiscalDocumentBuilder.
func NewFiscalDocumentBuilder(deps FiscalDocumentBuilderDeps) (*FiscalDocumentBuilder, error) {
	if strings.TrimSpace(deps.Supplier.LegalName) == "" {
		return nil, errors.New("fiscal document builder: supplier legal name is required")
	}
	if strings.TrimSpace(deps.Supplier.TaxID) == "" {
		return nil, errors.New("fiscal document builder: supplier tax id is required")
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &FiscalDocumentBuilder{
		supplier: deps.Supplier,
		now:      func() time.Time { return now().UTC() },
		logger:   logger,
	}, nil
}

// BuildInvoice produces the invoice payload for an order and its recomputed
// breakdown. Stored unit prices are VAT inclusive; each line decomposes its
// gross into net plus 19% VAT. Shipping appears as a synthetic line.
func (b *FiscalDocumentBuilder) BuildInvoice(ctx context.Context, order domain.Order, breakdown domain.PriceBreakdown) (domain.InvoiceDocument, error) {
	if err := validateCustomer(order.Customer); err != nil {
		return domain.InvoiceDocument{}, err
	}
	rate, err := domain.ResolveShippingRate(order.ShippingMethod)
	if err != nil {
		return domain.InvoiceDocument{}, err
	}

	clientName, clientTaxID := domain.ResolveClient(order.Customer)

	lines := make([]domain.InvoiceLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, invoiceLine(item.Name, item.Quantity, item.UnitPrice))
	}

	shippingLine := invoiceLine(fmt.Sprintf("Transport %s", rate.CarrierLabel), 1, rate.Cost)

	var totalNet, totalVAT, totalGross float64
	for _, line := range lines {
		totalNet += line.Net
		totalVAT += line.VAT
		totalGross += line.Gross
	}
	totalNet += shippingLine.Net
	totalVAT += shippingLine.VAT
	totalGross += shippingLine.Gross

	// Lines carry no discount, so their sum only matches the breakdown total
	// for discount-free orders. A mismatch is reported, never fatal.
	if math.Abs(totalGross-breakdown.Total) > 0.005 {
		b.logger(ctx, "invoice_total_mismatch", map[string]any{
			"orderId":   order.ID,
			"lineTotal": totalGross,
			"total":     breakdown.Total,
		})
	}

	issueDate := order.DocumentDate()
	if issueDate.IsZero() {
		issueDate = b.now()
	}

	return domain.InvoiceDocument{
		DocumentNumber: domain.DocumentNumberFor(order.ID),
		IssueDate:      issueDate,
		Supplier:       b.supplier,
		Customer:       order.Customer,
		ClientName:     clientName,
		ClientTaxID:    clientTaxID,
		Lines:          lines,
		ShippingLine:   shippingLine,
		TotalNet:       totalNet,
		TotalVAT:       totalVAT,
		TotalGross:     totalGross,
	}, nil
}

// BuildShippingLabel produces the AWB payload for an order. The tracking code
// and carrier label derive from the order id and the shared shipping table.
func (b *FiscalDocumentBuilder) BuildShippingLabel(ctx context.Context, order domain.Order) (domain.ShippingLabel, error) {
	if err := validateCustomer(order.Customer); err != nil {
		return domain.ShippingLabel{}, err
	}
	rate, err := domain.ResolveShippingRate(order.ShippingMethod)
	if err != nil {
		return domain.ShippingLabel{}, err
	}

	return domain.ShippingLabel{
		TrackingCode: domain.TrackingCodeFor(order.ID),
		Carrier:      rate.Method,
		CarrierLabel: rate.CarrierLabel,
		Recipient:    order.Customer,
		Origin:       b.supplier,
	}, nil
}

func invoiceLine(description string, quantity int, unitPrice float64) domain.InvoiceLine {
	gross := unitPrice * float64(quantity)
	net := gross / (1 + domain.VATRate)
	return domain.InvoiceLine{
		Description: description,
		Unit:        invoiceLineUnit,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Net:         net,
		VAT:         gross - net,
		Gross:       gross,
	}
}

func validateCustomer(customer domain.CustomerDetails) error {
	switch customer.CustomerType {
	case domain.CustomerTypeCompany:
		if strings.TrimSpace(customer.CompanyName) == "" {
			return fmt.Errorf("%w: company name", ErrMissingCustomerDetails)
		}
		if strings.TrimSpace(customer.VATID) == "" {
			return fmt.Errorf("%w: vat id", ErrMissingCustomerDetails)
		}
	case domain.CustomerTypePrivate:
		if strings.TrimSpace(customer.FirstName) == "" && strings.TrimSpace(customer.LastName) == "" {
			return fmt.Errorf("%w: customer name", ErrMissingCustomerDetails)
		}
	default:
		return fmt.Errorf("%w: customer type %q", ErrMissingCustomerDetails, customer.CustomerType)
	}
	return nil
}
