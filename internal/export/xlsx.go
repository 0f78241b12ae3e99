package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/hudemas/api/internal/domain"
)

const xlsxSheetName = "Contabilitate"

var xlsxHeaders = []string{"Data", "Numar Factura", "Client", "CUI/CNP", "Valoare Neta", "TVA", "Total"}

// WriteXLSX renders accounting rows as a single-sheet spreadsheet with the
// same columns as the CSV export. Amounts are serialised as formatted strings
// so the workbook matches the CSV byte-for-byte per cell.
func WriteXLSX(rows []domain.AccountingRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(xlsxSheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}

	for i, header := range xlsxHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell name: %w", err)
		}
		if err := f.SetCellValue(xlsxSheetName, cell, header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for i, row := range rows {
		values := []string{
			row.Date.Format(csvDateLayout),
			row.DocumentNumber,
			row.ClientName,
			row.TaxID,
			domain.FormatAmount(row.NetAmount),
			domain.FormatAmount(row.VATAmount),
			domain.FormatAmount(row.GrossAmount),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellValue(xlsxSheetName, cell, value); err != nil {
				return nil, fmt.Errorf("write row %d: %w", i+1, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("serialise workbook: %w", err)
	}
	return buf.Bytes(), nil
}
