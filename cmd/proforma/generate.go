package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"proforma/internal/invoice"
	"proforma/internal/pipeline"
	"proforma/internal/settings"
	"proforma/internal/util"
)

var generateOpts struct {
	packlist string
	guide    string
	out      string
	preview  bool
	draftTo  string
	prefix   string
	currency string
	batch    string
	next     int
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Build the invoice PDF for a packlist",
	Example: `  proforma generate --packlist orders.csv
  proforma generate --packlist orders.xlsx --guide db: --preview
  proforma generate --packlist mail.eml --draft-to "Shop <orders@shop.test>"`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&generateOpts.packlist, "packlist", "", "packlist file (.csv, .txt, .xlsx, .html, .eml)")
	f.StringVar(&generateOpts.guide, "guide", "", "SKU guide: file, http(s) URL or db:")
	f.StringVar(&generateOpts.out, "out", "", "output PDF path")
	f.BoolVar(&generateOpts.preview, "preview", false, "do not advance the invoice number")
	f.StringVar(&generateOpts.draftTo, "draft-to", "", "also write an .eml draft addressed to this recipient")
	f.StringVar(&generateOpts.prefix, "prefix", "", "invoice number prefix for this run")
	f.StringVar(&generateOpts.currency, "currency", "", "currency code for this run")
	f.StringVar(&generateOpts.batch, "batch", "", "batch number for lines without one")
	f.IntVar(&generateOpts.next, "next", 0, "sequence number to use instead of the stored one")
	_ = generateCmd.MarkFlagRequired("packlist")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	pl, err := pipeline.ReadPacklistFile(generateOpts.packlist)
	if err != nil {
		return err
	}
	if len(pl.Orders) == 0 {
		return fmt.Errorf("%s: %w", generateOpts.packlist, invoice.ErrNoOrders)
	}

	overrides := settings.InvoiceOverrides{
		Prefix:      generateOpts.prefix,
		Currency:    generateOpts.currency,
		BatchNumber: generateOpts.batch,
	}
	if cmd.Flags().Changed("next") {
		overrides.NextNumber = &generateOpts.next
	}

	out, err := a.gen.Generate(cmd.Context(), pipeline.GenerateRequest{
		Orders:      pl.Orders,
		GuideSource: generateOpts.guide,
		OutPath:     generateOpts.out,
		Preview:     generateOpts.preview,
		Overrides:   overrides,
	})
	if err != nil {
		return err
	}

	agg := invoice.SumTotals(out.Totals)
	fmt.Printf("invoice %s orders=%d lines=%d total=%.2f %s\n", out.BaseNumber, len(pl.Orders), pl.LineCount(), agg.Total, out.Currency)
	fmt.Printf("written %s\n", out.Path)
	if out.Committed {
		fmt.Printf("next number %d\n", out.NextNumber)
	}

	if to := strings.TrimSpace(generateOpts.draftTo); to != "" {
		blob, err := pipeline.BuildDraft(pipeline.InvoiceDraft(a.cfg.MailFrom, to, out.BaseNumber, filepath.Base(out.Path), out.Bytes, out.IssuedAt))
		if err != nil {
			return err
		}
		draftPath := strings.TrimSuffix(out.Path, filepath.Ext(out.Path)) + ".eml"
		if err := util.WriteFileAtomic(draftPath, blob, 0o644); err != nil {
			return err
		}
		fmt.Printf("draft %s\n", draftPath)
	}
	return nil
}
