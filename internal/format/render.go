package format

import (
	"strings"

	"github.com/hudemas/api/internal/domain"
)

// InvoiceLineRender is one pre-formatted row of the invoice item table,
// columns matching the FACTURA FISCALA layout.
type InvoiceLineRender struct {
	Description string
	Unit        string
	Quantity    int
	UnitPrice   string
	Net         string
	VAT         string
	Gross       string
}

// InvoiceRenderPayload carries everything the PDF renderer prints on the
// invoice. All strings are final display values.
type InvoiceRenderPayload struct {
	Title          string
	DocumentNumber string
	IssueDate      string
	SupplierBlock  []string
	ClientBlock    []string
	Lines          []InvoiceLineRender
	TotalNet       string
	TotalVAT       string
	TotalGross     string
}

// LabelRenderPayload carries the AWB label content: carrier banner, tracking
// code, and the sender/recipient address blocks.
type LabelRenderPayload struct {
	Carrier       string
	TrackingCode  string
	SenderBlock   []string
	ReceiverBlock []string
}

// RenderInvoice formats an invoice document for the PDF renderer.
func (f *Formatter) RenderInvoice(doc domain.InvoiceDocument) InvoiceRenderPayload {
	lines := make([]InvoiceLineRender, 0, len(doc.Lines)+1)
	for _, line := range doc.Lines {
		lines = append(lines, f.renderLine(line))
	}
	lines = append(lines, f.renderLine(doc.ShippingLine))

	return InvoiceRenderPayload{
		Title:          "FACTURA FISCALA",
		DocumentNumber: doc.DocumentNumber,
		IssueDate:      f.ShortDate(doc.IssueDate),
		SupplierBlock:  supplierBlock(doc.Supplier),
		ClientBlock:    clientBlock(doc.ClientName, doc.ClientTaxID, doc.Customer),
		Lines:          lines,
		TotalNet:       f.AmountWithCurrency(doc.TotalNet),
		TotalVAT:       f.AmountWithCurrency(doc.TotalVAT),
		TotalGross:     f.AmountWithCurrency(doc.TotalGross),
	}
}

// RenderLabel formats a shipping label for the PDF renderer.
func (f *Formatter) RenderLabel(label domain.ShippingLabel) LabelRenderPayload {
	name, _ := domain.ResolveClient(label.Recipient)
	receiver := addressBlock(name,
		label.Recipient.Address,
		joinNonEmpty(", ", label.Recipient.City, label.Recipient.County),
		label.Recipient.Phone,
	)

	return LabelRenderPayload{
		Carrier:      label.CarrierLabel,
		TrackingCode: label.TrackingCode,
		SenderBlock: addressBlock(label.Origin.LegalName,
			label.Origin.Address,
			joinNonEmpty(", ", label.Origin.City, label.Origin.County),
			label.Origin.Phone,
		),
		ReceiverBlock: receiver,
	}
}

func (f *Formatter) renderLine(line domain.InvoiceLine) InvoiceLineRender {
	return InvoiceLineRender{
		Description: line.Description,
		Unit:        line.Unit,
		Quantity:    line.Quantity,
		UnitPrice:   f.Amount(line.UnitPrice),
		Net:         f.Amount(line.Net),
		VAT:         f.Amount(line.VAT),
		Gross:       f.Amount(line.Gross),
	}
}

func supplierBlock(s domain.SupplierInfo) []string {
	return addressBlock(s.LegalName,
		joinNonEmpty(" | ", s.TradeRegisterNo, s.TaxID),
		labelled("Capital social", s.ShareCapital),
		s.Address,
		joinNonEmpty(", ", s.City, s.County),
		joinNonEmpty(": ", s.BankName, s.IBAN),
		joinNonEmpty(" | ", s.Email, s.Phone),
	)
}

func clientBlock(name string, taxID string, customer domain.CustomerDetails) []string {
	return addressBlock(name,
		labelled("CUI/CNP", taxID),
		customer.Address,
		joinNonEmpty(", ", customer.City, customer.County),
		customer.Email,
	)
}

// addressBlock keeps only non-empty lines so optional fields never leave gaps.
func addressBlock(lines ...string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// labelled renders "label: value", or nothing when the value is missing.
func labelled(label string, value string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return label + ": " + trimmed
	}
	return ""
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, sep)
}
