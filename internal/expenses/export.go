package expenses

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Expenses"

var exportHeader = []string{"ID", "Date", "Employee", "Category", "Description", "Amount", "Status", "Receipt"}

// WriteXLSX renders claims as a workbook with a header row and a total.
func WriteXLSX(w io.Writer, items []Expense) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("expenses: export: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("expenses: export: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("expenses: export: %w", err)
	}

	for i, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, title); err != nil {
			return fmt.Errorf("expenses: export: %w", err)
		}
	}
	if err := f.SetCellStyle(exportSheet, "A1", "H1", bold); err != nil {
		return fmt.Errorf("expenses: export: %w", err)
	}

	var total float64
	for i, e := range items {
		row := i + 2
		receipt := ""
		if e.ReceiptURL != nil {
			receipt = *e.ReceiptURL
		}
		values := []any{e.ID, e.Date, e.UserName, e.Category, e.Description, e.Amount, string(e.Status), receipt}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return fmt.Errorf("expenses: export: %w", err)
			}
		}
		total += e.Amount
	}

	totalRow := len(items) + 2
	if err := f.SetCellValue(exportSheet, fmt.Sprintf("E%d", totalRow), "Total"); err != nil {
		return fmt.Errorf("expenses: export: %w", err)
	}
	if err := f.SetCellValue(exportSheet, fmt.Sprintf("F%d", totalRow), total); err != nil {
		return fmt.Errorf("expenses: export: %w", err)
	}
	if err := f.SetCellStyle(exportSheet, "F2", fmt.Sprintf("F%d", totalRow), money); err != nil {
		return fmt.Errorf("expenses: export: %w", err)
	}
	if err := f.SetCellStyle(exportSheet, fmt.Sprintf("E%d", totalRow), fmt.Sprintf("E%d", totalRow), bold); err != nil {
		return fmt.Errorf("expenses: export: %w", err)
	}
	_ = f.SetColWidth(exportSheet, "B", "E", 18)
	_ = f.SetColWidth(exportSheet, "H", "H", 40)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("expenses: export: %w", err)
	}
	return nil
}
