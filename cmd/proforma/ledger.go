package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"proforma/internal/pipeline"
)

var historyOpts struct {
	limit  int
	number string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List committed invoices",
	Example: `  proforma history --limit 5
  proforma history --number INV-2026-00007`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if historyOpts.number != "" {
			return showInvoice(a, historyOpts.number)
		}
		rows, err := a.db.ListInvoices(historyOpts.limit)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Println("no invoices yet")
			return nil
		}
		for _, r := range rows {
			fmt.Printf("%-22s %s  %-28s %3d orders  %10.2f %s\n", r.InvoiceNumber, r.IssuedOn, r.IssuedTo, r.OrderCount, r.Total, r.Currency)
		}
		return nil
	},
}

func showInvoice(a *app, number string) error {
	inv, err := a.db.GetInvoiceByNumber(number)
	if err != nil {
		return err
	}
	if inv == nil {
		return fmt.Errorf("invoice %s not found", number)
	}
	fmt.Printf("%s  %s  %s\n", inv.InvoiceNumber, inv.IssuedOn, inv.IssuedTo)
	fmt.Printf("file %s\n", inv.FilePath)
	orders, err := a.db.ListInvoiceOrders(inv.ID)
	if err != nil {
		return err
	}
	for _, o := range orders {
		fmt.Printf("%-24s %-28s %-20s %3d lines  %10.2f\n", o.SubNumber, o.Name, o.Tracking, o.LineCount, o.Total)
	}
	fmt.Printf("subtotal %.2f  vat %.2f  total %.2f %s\n", inv.Subtotal, inv.VATAmount, inv.Total, inv.Currency)
	return nil
}

var exportOpts struct {
	out   string
	limit int
}

var exportCmd = &cobra.Command{
	Use:     "export:xlsx",
	Short:   "Export the invoice ledger to a workbook",
	Example: "  proforma export:xlsx --out ledger.xlsx --limit 500",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := pipeline.ExportLedgerToXLSX(a.db, exportOpts.out, exportOpts.limit)
		if err != nil {
			return err
		}
		fmt.Printf("exported %d invoices to %s\n", n, exportOpts.out)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyOpts.limit, "limit", 20, "maximum invoices to list")
	historyCmd.Flags().StringVar(&historyOpts.number, "number", "", "show one invoice with its orders")
	exportCmd.Flags().StringVar(&exportOpts.out, "out", "ledger.xlsx", "output workbook")
	exportCmd.Flags().IntVar(&exportOpts.limit, "limit", 1000, "maximum invoices to export")
	rootCmd.AddCommand(historyCmd, exportCmd)
}
