package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
)

var invoiceExportHeader = []string{"Waste Type", "Total Weight (kg)", "Rate per kg", "Amount"}

// ExportInvoice renders an invoice as an .xlsx workbook.
func ExportInvoice(inv *models.Invoice, residentName string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Invoice"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	meta := [][2]any{
		{"Invoice", inv.Number},
		{"Resident", residentName},
		{"Period Start", inv.PeriodStart.Format("2006-01-02")},
		{"Period End", inv.PeriodEnd.Format("2006-01-02")},
		{"Issued", inv.CreatedAt.Format("2006-01-02")},
	}
	for i, kv := range meta {
		row := i + 1
		f.SetCellValue(sheet, cell(1, row), kv[0])
		f.SetCellValue(sheet, cell(2, row), kv[1])
		f.SetCellStyle(sheet, cell(1, row), cell(1, row), bold)
	}

	headerRow := len(meta) + 2
	for col, h := range invoiceExportHeader {
		f.SetCellValue(sheet, cell(col+1, headerRow), h)
	}
	f.SetCellStyle(sheet, cell(1, headerRow), cell(len(invoiceExportHeader), headerRow), headerStyle)

	row := headerRow + 1
	for _, line := range inv.LineItems {
		f.SetCellValue(sheet, cell(1, row), string(line.WasteType))
		f.SetCellValue(sheet, cell(2, row), line.TotalWeight)
		f.SetCellValue(sheet, cell(3, row), line.RatePerKg)
		f.SetCellValue(sheet, cell(4, row), line.Amount)
		row++
	}
	f.SetCellValue(sheet, cell(3, row), "Total")
	f.SetCellValue(sheet, cell(4, row), inv.TotalAmount)
	f.SetCellStyle(sheet, cell(3, row), cell(4, row), bold)
	f.SetColWidth(sheet, "A", "D", 20)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
