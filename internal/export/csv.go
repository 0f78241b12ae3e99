// Package export serialises accounting rows into the file formats the
// bookkeeping side ingests. Amount rounding happens here and nowhere earlier.
package export

import (
	"strings"
	"time"

	"github.com/hudemas/api/internal/domain"
)

// CSVHeader is the exact header row the downstream accounting software
// expects. Byte-for-byte contract; do not localise or reorder.
const CSVHeader = "Data,Numar Factura,Client,CUI/CNP,Valoare Neta,TVA,Total"

const (
	csvDateLayout     = "2006-01-02"
	fileNamePrefix    = "Export_Contabilitate_"
	csvContentType    = "text/csv; charset=utf-8"
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	crlf              = "\r\n"
	csvFileExtension  = ".csv"
	xlsxFileExtension = ".xlsx"
)

// WriteCSV renders accounting rows as a CSV document. The client name column
// is always double-quoted because legal names regularly contain commas
// ("ACME SRL, punct de lucru Cluj"); the remaining columns never need quoting.
func WriteCSV(rows []domain.AccountingRow) string {
	var b strings.Builder
	b.WriteString(CSVHeader)
	b.WriteString(crlf)

	for _, row := range rows {
		b.WriteString(row.Date.Format(csvDateLayout))
		b.WriteByte(',')
		b.WriteString(row.DocumentNumber)
		b.WriteByte(',')
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(row.ClientName, `"`, `""`))
		b.WriteByte('"')
		b.WriteByte(',')
		b.WriteString(row.TaxID)
		b.WriteByte(',')
		b.WriteString(domain.FormatAmount(row.NetAmount))
		b.WriteByte(',')
		b.WriteString(domain.FormatAmount(row.VATAmount))
		b.WriteByte(',')
		b.WriteString(domain.FormatAmount(row.GrossAmount))
		b.WriteString(crlf)
	}

	return b.String()
}

// CSVFileName builds the download file name for an export generated on the
// given date, e.g. "Export_Contabilitate_2026-03-10.csv".
func CSVFileName(date time.Time) string {
	return fileNamePrefix + date.UTC().Format(csvDateLayout) + csvFileExtension
}

// XLSXFileName builds the download file name for the spreadsheet variant.
func XLSXFileName(date time.Time) string {
	return fileNamePrefix + date.UTC().Format(csvDateLayout) + xlsxFileExtension
}

// CSVContentType is the Content-Type header value for CSV downloads.
func CSVContentType() string { return csvContentType }

// XLSXContentType is the Content-Type header value for XLSX downloads.
func XLSXContentType() string { return xlsxContentType }
