// Package report renders admin downloads.
package report

import (
	"io"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"

	"github.com/pratyek/grocery-app/internal/domain/model"
)

const ordersSheet = "Orders"

var orderHeader = []string{
	"Order ID", "Created At", "Username", "Status", "Address", "Phone",
	"Product ID", "Product", "Unit Price", "Quantity", "Line Total", "Order Total",
}

// WriteOrdersXLSX writes one row per order line under a header row. An order
// without lines still gets one row so it shows up in the sheet.
func WriteOrdersXLSX(w io.Writer, orders []model.Order) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(ordersSheet)
	if err != nil {
		return err
	}

	header := sheet.AddRow()
	for _, h := range orderHeader {
		header.AddCell().SetValue(h)
	}

	for _, o := range orders {
		if len(o.Items) == 0 {
			addOrderRow(sheet, o, nil)
			continue
		}
		for i := range o.Items {
			addOrderRow(sheet, o, &o.Items[i])
		}
	}

	return file.Write(w)
}

func addOrderRow(sheet *xlsx.Sheet, o model.Order, it *model.OrderItem) {
	row := sheet.AddRow()
	row.AddCell().SetValue(o.OrderRef)
	row.AddCell().SetValue(o.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	row.AddCell().SetValue(o.Username)
	row.AddCell().SetValue(string(o.Status))
	row.AddCell().SetValue(o.DeliveryAddress)
	row.AddCell().SetValue(o.DeliveryPhone)

	if it != nil {
		row.AddCell().SetValue(it.ProductID)
		row.AddCell().SetValue(it.ProductNameSnapshot)
		row.AddCell().SetValue(it.UnitPriceSnapshot.StringFixed(2))
		row.AddCell().SetValue(it.Quantity)
		row.AddCell().SetValue(it.UnitPriceSnapshot.Mul(decimal.NewFromInt(it.Quantity)).StringFixed(2))
	} else {
		for i := 0; i < 5; i++ {
			row.AddCell()
		}
	}
	row.AddCell().SetValue(o.TotalAmount.StringFixed(2))
}
