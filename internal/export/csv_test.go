package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hudemas/api/internal/domain"
)

func sampleRows() []domain.AccountingRow {
	return []domain.AccountingRow{
		{
			Date:           time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC),
			DocumentNumber: "HUD-abcdef12",
			ClientName:     "Ana Pop",
			TaxID:          "-",
			NetAmount:      215.9663865546,
			VATAmount:      41.0336134454,
			GrossAmount:    257,
		},
		{
			Date:           time.Date(2026, time.March, 11, 14, 0, 0, 0, time.UTC),
			DocumentNumber: "HUD-0123abcd",
			ClientName:     `ACME SRL, punct de lucru "Cluj"`,
			TaxID:          "RO12345678",
			NetAmount:      81.5126050420,
			VATAmount:      15.4873949580,
			GrossAmount:    97,
		},
	}
}

func TestWriteCSVContract(t *testing.T) {
	got := WriteCSV(sampleRows())

	want := "Data,Numar Factura,Client,CUI/CNP,Valoare Neta,TVA,Total\r\n" +
		"2026-03-10,HUD-abcdef12,\"Ana Pop\",-,215.97,41.03,257.00\r\n" +
		"2026-03-11,HUD-0123abcd,\"ACME SRL, punct de lucru \"\"Cluj\"\"\",RO12345678,81.51,15.49,97.00\r\n"

	if got != want {
		t.Errorf("CSV mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestWriteCSVEmptyBatch(t *testing.T) {
	got := WriteCSV(nil)
	if got != CSVHeader+"\r\n" {
		t.Errorf("expected header-only document, got %q", got)
	}
}

func TestFileNames(t *testing.T) {
	date := time.Date(2026, time.March, 10, 23, 45, 0, 0, time.UTC)
	if name := CSVFileName(date); name != "Export_Contabilitate_2026-03-10.csv" {
		t.Errorf("unexpected csv file name %q", name)
	}
	if name := XLSXFileName(date); name != "Export_Contabilitate_2026-03-10.xlsx" {
		t.Errorf("unexpected xlsx file name %q", name)
	}
}

func TestWriteXLSXRoundTrip(t *testing.T) {
	data, err := WriteXLSX(sampleRows())
	if err != nil {
		t.Fatalf("WriteXLSX returned error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	cells, err := f.GetRows(xlsxSheetName)
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(cells) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(cells))
	}
	if strings.Join(cells[0], ",") != CSVHeader {
		t.Errorf("unexpected header row %v", cells[0])
	}
	if cells[1][1] != "HUD-abcdef12" || cells[1][6] != "257.00" {
		t.Errorf("unexpected first row %v", cells[1])
	}
	if cells[2][2] != `ACME SRL, punct de lucru "Cluj"` {
		t.Errorf("unexpected client cell %q", cells[2][2])
	}
}
