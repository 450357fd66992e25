package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"proforma/internal/storage"
)

const (
	invoicesSheet = "Invoices"
	ordersSheet   = "Orders"
)

// ExportLedgerToXLSX writes the most recent invoices and their per-order
// totals into a two-sheet workbook. It returns the number of invoices written.
func ExportLedgerToXLSX(db *storage.DB, outputPath string, limit int) (int, error) {
	invoices, err := db.ListInvoices(limit)
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), invoicesSheet); err != nil {
		return 0, err
	}
	if _, err := f.NewSheet(ordersSheet); err != nil {
		return 0, err
	}

	writeHeader(f, invoicesSheet, []string{
		"invoice_number", "issued_on", "issued_to", "orders", "currency",
		"subtotal", "vat", "total", "file_path",
	})
	writeHeader(f, ordersSheet, []string{
		"invoice_number", "position", "sub_number", "name", "tracking", "lines",
		"subtotal", "shipping", "vat", "total",
	})

	orderRow := 2
	for i, inv := range invoices {
		set := rowSetter(f, invoicesSheet, i+2)
		set(1, inv.InvoiceNumber)
		set(2, inv.IssuedOn)
		set(3, inv.IssuedTo)
		set(4, inv.OrderCount)
		set(5, inv.Currency)
		set(6, inv.Subtotal)
		set(7, inv.VATAmount)
		set(8, inv.Total)
		set(9, inv.FilePath)

		orders, err := db.ListInvoiceOrders(inv.ID)
		if err != nil {
			return 0, err
		}
		for _, o := range orders {
			set := rowSetter(f, ordersSheet, orderRow)
			set(1, inv.InvoiceNumber)
			set(2, o.Position)
			set(3, o.SubNumber)
			set(4, o.Name)
			set(5, o.Tracking)
			set(6, o.LineCount)
			set(7, o.Subtotal)
			set(8, o.ShippingAmount)
			set(9, o.VATAmount)
			set(10, o.Total)
			orderRow++
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return 0, err
	}
	if err := f.SaveAs(outputPath); err != nil {
		return 0, err
	}
	return len(invoices), nil
}

func writeHeader(f *excelize.File, sheet string, headers []string) {
	set := rowSetter(f, sheet, 1)
	for i, h := range headers {
		set(i+1, h)
	}
}

func rowSetter(f *excelize.File, sheet string, row int) func(col int, value any) {
	return func(col int, value any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, value)
	}
}
