package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"proforma/internal/pipeline"
)

var ordersOpts struct {
	packlist string
	asJSON   bool
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Show how a packlist groups into orders",
	Example: `  proforma orders --packlist orders.csv
  proforma orders --packlist mail.eml --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if _, err := env(); err != nil {
			return err
		}
		pl, err := pipeline.ReadPacklistFile(ordersOpts.packlist)
		if err != nil {
			return err
		}
		if ordersOpts.asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(pl.Orders)
		}
		fmt.Printf("%s (%s): %d orders, %d lines\n", pl.Name, pl.Source, len(pl.Orders), pl.LineCount())
		for i, o := range pl.Orders {
			fmt.Printf("%3d  %-30s %-20s %d lines\n", i+1, o.Name, o.Tracking, len(o.Lines))
		}
		return nil
	},
}

func init() {
	ordersCmd.Flags().StringVar(&ordersOpts.packlist, "packlist", "", "packlist file")
	ordersCmd.Flags().BoolVar(&ordersOpts.asJSON, "json", false, "print the grouped orders as JSON")
	_ = ordersCmd.MarkFlagRequired("packlist")
	rootCmd.AddCommand(ordersCmd)
}
