package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"proforma/internal/connectors"
	"proforma/internal/listener"
	"proforma/internal/pipeline"
)

var inboxOpts struct {
	max     int
	process bool
}

var inboxFetchCmd = &cobra.Command{
	Use:   "inbox:fetch",
	Short: "Fetch packlist mails once, optionally invoicing them",
	Example: `  proforma inbox:fetch --max 10
  proforma inbox:fetch --process`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		conn, err := listener.NewConnector(ctx, a.cfg)
		if err != nil {
			return err
		}
		limit := inboxOpts.max
		if limit <= 0 {
			limit = a.cfg.InboxFetchMax
		}
		res, err := connectors.NewFetchService(a.db, a.cfg.InboxDir, conn).FetchAndStore(ctx, a.cfg.InboxLabel, limit)
		if err != nil {
			return err
		}
		fmt.Printf("fetched %d, stored %d\n", res.Fetched, res.Stored)
		if !inboxOpts.process {
			return nil
		}

		out, err := pipeline.NewInboxProcessor(a.db, a.gen, a.cfg).ProcessPending(ctx, limit*2, a.cfg.InboxProvider)
		if err != nil {
			return err
		}
		fmt.Printf("invoiced %d, skipped %d, failed %d\n", out.Invoiced, out.Skipped, out.Failed)
		return nil
	},
}

func init() {
	inboxFetchCmd.Flags().IntVar(&inboxOpts.max, "max", 0, "maximum messages to fetch (default INBOX_FETCH_MAX)")
	inboxFetchCmd.Flags().BoolVar(&inboxOpts.process, "process", false, "invoice the fetched messages")
	rootCmd.AddCommand(inboxFetchCmd)
}
