// Package export renders order snapshots into spreadsheet artifacts and
// persists them as attachments.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
	"stock-ledger-service/internal/models"
)

const orderSheetName = "Order"

// OrderExporter renders an order snapshot into an xlsx workbook.
type OrderExporter struct{}

func NewOrderExporter() *OrderExporter {
	return &OrderExporter{}
}

var orderColumns = []struct {
	Header string
	Width  float64
}{
	{"Supplier", 24},
	{"SKU", 16},
	{"Barcode", 16},
	{"Name", 28},
	{"Description", 28},
	{"Unit", 10},
	{"Cost Price", 12},
	{"Quantity", 10},
	{"Sum", 12},
}

// RenderOrder produces the spreadsheet for one order: a header row, one row
// per line, and a total row.
func (e *OrderExporter) RenderOrder(order *models.Order) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", orderSheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})

	for i, col := range orderColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(orderSheetName, cell, col.Header)
		f.SetCellStyle(orderSheetName, cell, cell, headerStyle)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(orderSheetName, colName, colName, col.Width)
	}

	total := 0.0
	for rowIdx, line := range order.Lines {
		row := rowIdx + 2
		supplier := ""
		if line.SupplierName != nil {
			supplier = *line.SupplierName
		}
		values := []interface{}{
			supplier,
			line.SKU,
			line.Barcode,
			line.Text1,
			line.Text2,
			line.UnitName,
			line.CostPrice,
			line.Quantity,
			line.Sum,
		}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, row)
			f.SetCellValue(orderSheetName, cell, value)
		}
		total += line.Sum
	}

	totalRow := len(order.Lines) + 2
	labelCell, _ := excelize.CoordinatesToCellName(len(orderColumns)-1, totalRow)
	f.SetCellValue(orderSheetName, labelCell, "Total")
	totalCell, _ := excelize.CoordinatesToCellName(len(orderColumns), totalRow)
	f.SetCellValue(orderSheetName, totalCell, total)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to render order %s: %w", order.OrderNumber, err)
	}
	return buf.Bytes(), nil
}
