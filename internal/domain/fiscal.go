package domain

import (
	"strings"
	"time"
)

const (
	// DocumentNumberPrefix precedes the order-derived invoice number.
	DocumentNumberPrefix = "HUD-"
	// TrackingCodeSuffix follows the order-derived AWB tracking code.
	TrackingCodeSuffix = "999"
	// EmptyTaxIDPlaceholder is emitted for private customers on invoices and exports.
	EmptyTaxIDPlaceholder = "-"

	orderIDDigest = 8
)

// SupplierInfo is the seller's fiscal identity printed on every invoice and
// used as the AWB origin block. Loaded from configuration; the values must
// match the company registry verbatim.
type SupplierInfo struct {
	LegalName       string
	TradeRegisterNo string
	TaxID           string
	ShareCapital    string
	Address         string
	City            string
	County          string
	BankName        string
	IBAN            string
	Email           string
	Phone           string
}

// InvoiceLine is a single row of the invoice item table. Amounts are
// VAT-inclusive as stored; Net and VAT are the decomposed components
// satisfying Net + VAT == Gross and VAT == Net * VATRate.
type InvoiceLine struct {
	Description string
	Unit        string
	Quantity    int
	UnitPrice   float64
	Net         float64
	VAT         float64
	Gross       float64
}

// InvoiceDocument is the structured payload handed to the PDF renderer for
// the fiscal invoice (FACTURA FISCALA layout). Structure only; no rendering.
type InvoiceDocument struct {
	DocumentNumber string
	IssueDate      time.Time
	Supplier       SupplierInfo
	Customer       CustomerDetails
	ClientName     string
	ClientTaxID    string
	Lines          []InvoiceLine
	ShippingLine   InvoiceLine
	TotalNet       float64
	TotalVAT       float64
	TotalGross     float64
}

// ShippingLabel is the structured payload for the AWB renderer
// (100x150mm landscape label with carrier, tracking code, sender/recipient).
type ShippingLabel struct {
	TrackingCode string
	Carrier      ShippingMethod
	CarrierLabel string
	Recipient    CustomerDetails
	Origin       SupplierInfo
}

// AccountingRow is one order flattened for the bookkeeping export. Column
// order matches the CSV header contract exactly.
type AccountingRow struct {
	Date           time.Time
	DocumentNumber string
	ClientName     string
	TaxID          string
	NetAmount      float64
	VATAmount      float64
	GrossAmount    float64
}

// DocumentNumberFor derives the invoice number from an order id. Deterministic
// and stateless: the same order always yields the same number.
func DocumentNumberFor(orderID string) string {
	return DocumentNumberPrefix + shortOrderID(orderID)
}

// TrackingCodeFor derives the AWB tracking code from an order id.
func TrackingCodeFor(orderID string) string {
	return shortOrderID(orderID) + TrackingCodeSuffix
}

func shortOrderID(orderID string) string {
	trimmed := strings.TrimSpace(orderID)
	if len(trimmed) > orderIDDigest {
		return trimmed[:orderIDDigest]
	}
	return trimmed
}

// ResolveClient maps customer details to the fiscal client name and tax id.
// Companies bill under their legal name and VAT id; private customers bill
// under their full name with a placeholder tax id. Every surface that prints
// a client identity (invoice header, AWB recipient, accounting export) must
// go through this resolution.
func ResolveClient(customer CustomerDetails) (name string, taxID string) {
	if customer.CustomerType == CustomerTypeCompany {
		return strings.TrimSpace(customer.CompanyName), strings.TrimSpace(customer.VATID)
	}
	name = strings.TrimSpace(strings.TrimSpace(customer.FirstName) + " " + strings.TrimSpace(customer.LastName))
	return name, EmptyTaxIDPlaceholder
}
