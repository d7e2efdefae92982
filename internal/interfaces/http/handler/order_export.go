package handler

import (
	"fmt"
	"strings"
	"time"

	orderapp "github.com/shopadmin/backend/internal/application/order"
	"github.com/tealeg/xlsx"
)

// XLSXContentType is the media type of Excel workbooks
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HistoryExportFilename is the download name of the history workbook
const HistoryExportFilename = "order-history.xlsx"

// OrderSheetName is the name of the only sheet of an order workbook
const OrderSheetName = "Orders"

const exportTimeLayout = "2006-01-02 15:04:05"

var orderExportHeaders = []string{
	"Order ID", "User ID", "Customer", "Email", "Order Name", "Phone", "Address",
	"Date", "Status", "Total", "Items", "Cancel Reason", "Archived At",
}

// BuildOrderWorkbook writes one row per order below a header row
func BuildOrderWorkbook(views []orderapp.OrderView) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(OrderSheetName)
	if err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range orderExportHeaders {
		header.AddCell().SetString(h)
	}

	for _, v := range views {
		row := sheet.AddRow()
		row.AddCell().SetString(v.ID)
		row.AddCell().SetString(v.UserID)
		row.AddCell().SetString(v.Name)
		row.AddCell().SetString(v.Email)
		row.AddCell().SetString(v.OrderName)
		row.AddCell().SetString(v.OrderPhone)
		row.AddCell().SetString(v.OrderAddress)
		row.AddCell().SetString(formatExportTime(v.Date))
		row.AddCell().SetString(v.Status.String())
		row.AddCell().SetString(v.Total.StringFixed(2))
		row.AddCell().SetString(formatItems(v.Products))
		row.AddCell().SetString(v.CancelReason)
		row.AddCell().SetString(formatExportTime(v.ArchivedAt))
	}
	return file, nil
}

func formatExportTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(exportTimeLayout)
}

// formatItems renders line items as "2 x Shirt (M); 1 x Cap"
func formatItems(items []orderapp.LineItemView) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		part := fmt.Sprintf("%d x %s", item.Quantity, item.Name)
		if item.Size != "" {
			part += " (" + item.Size + ")"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}
