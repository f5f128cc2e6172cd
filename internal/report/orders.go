// Package report renders spreadsheet exports
package report

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/jimdaga/vendorhub/internal/models"
	"github.com/xuri/excelize/v2"
)

// OrdersSheet is the worksheet name of the orders export
const OrdersSheet = "Orders"

// ContentTypeXLSX is the MIME type of the generated workbook
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var orderHeader = []interface{}{"Order", "Customer", "Amount", "Status", "Date", "Items", "Created"}

// WriteOrders writes orders as a one-sheet workbook followed by a total row
func WriteOrders(w io.Writer, orders []models.Order) error {
	buf, err := BuildOrders(orders)
	if err != nil {
		return err
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// BuildOrders renders the orders workbook in memory
func BuildOrders(orders []models.Order) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", OrdersSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(OrdersSheet, "A1", &orderHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	if err := f.SetCellStyle(OrdersSheet, "A1", "G1", bold); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, o := range orders {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			o.ID,
			o.Customer,
			o.Amount.InexactFloat64(),
			string(o.Status),
			time.Time(o.Date).Format(time.DateOnly),
			o.Items,
			o.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(OrdersSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write order %s: %w", o.ID, err)
		}
	}

	totalRow := len(orders) + 2
	if err := f.SetCellValue(OrdersSheet, fmt.Sprintf("A%d", totalRow), "Total"); err != nil {
		return nil, err
	}
	if len(orders) > 0 {
		formula := fmt.Sprintf("SUM(C2:C%d)", totalRow-1)
		if err := f.SetCellFormula(OrdersSheet, fmt.Sprintf("C%d", totalRow), formula); err != nil {
			return nil, fmt.Errorf("failed to write total: %w", err)
		}
	}
	if err := f.SetCellStyle(OrdersSheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("G%d", totalRow), bold); err != nil {
		return nil, err
	}

	if err := f.SetColWidth(OrdersSheet, "A", "A", 44); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(OrdersSheet, "B", "B", 24); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf, nil
}
