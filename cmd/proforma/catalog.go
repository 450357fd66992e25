package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"proforma/internal/catalog"
)

var catalogSyncCmd = &cobra.Command{
	Use:   "catalog:sync",
	Short: "Mirror the remote SKU catalog into the local database",
	Long: `catalog:sync pulls the SKU guide from CATALOG_API_BASE_URL and stores it
locally. Later builds can use it with --guide db:.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.cfg.Require("CATALOG_API_BASE_URL", a.cfg.CatalogAPIBaseURL); err != nil {
			return err
		}
		svc := catalog.NewSyncService(a.db, a.cfg)
		prev, err := svc.LastSync()
		if err != nil {
			return err
		}
		if prev != nil {
			fmt.Printf("previous sync %s\n", prev.Format(time.RFC3339))
		}
		n, err := svc.Sync(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("synced %d products\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogSyncCmd)
}
