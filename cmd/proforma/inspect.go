package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"proforma/internal/pipeline"
)

var inspectOpts struct {
	file string
	text bool
}

var inspectCmd = &cobra.Command{
	Use:     "inspect",
	Short:   "Show page count and text of a generated PDF",
	Example: "  proforma inspect --file output/2026-01-30/INV-2026-00007.pdf --text",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		info, err := pipeline.InspectPDFFile(inspectOpts.file)
		if err != nil {
			return err
		}
		fmt.Printf("pages: %d\n", info.Pages)
		if !inspectOpts.text {
			return nil
		}
		for i, t := range info.Text {
			fmt.Printf("--- page %d ---\n%s\n", i+1, t)
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectOpts.file, "file", "", "PDF to inspect")
	inspectCmd.Flags().BoolVar(&inspectOpts.text, "text", false, "print the extracted text per page")
	_ = inspectCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(inspectCmd)
}
