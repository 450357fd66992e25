package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"proforma/internal/settings"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change the stored invoice settings",
}

func openStore() (*settings.Store, error) {
	cfg, err := env()
	if err != nil {
		return nil, err
	}
	return settings.NewStore(cfg.SettingsPath, cfg.DefaultSettingsPath), nil
}

func printSettings(st settings.Settings) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(st)
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		st, err := store.Load()
		if err != nil {
			return err
		}
		return printSettings(st)
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Replace the settings with the defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if _, err := store.Reset(); err != nil {
			return err
		}
		fmt.Printf("settings reset: %s\n", store.Path())
		return nil
	},
}

var configImportCmd = &cobra.Command{
	Use:     "import <file>",
	Short:   "Load settings from a JSON file",
	Example: "  proforma config import backup.json",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		st, err := store.Import(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("imported %d senders, %d receivers\n", len(st.SenderProfiles), len(st.ReceiverProfiles))
		return nil
	},
}

var configExportCmd = &cobra.Command{
	Use:     "export <file>",
	Short:   "Write the current settings to a JSON file",
	Example: "  proforma config export backup.json",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		st, err := store.Load()
		if err != nil {
			return err
		}
		if err := store.Export(args[0], st); err != nil {
			return err
		}
		fmt.Printf("exported %s\n", args[0])
		return nil
	},
}

var configSenderCmd = &cobra.Command{
	Use:   "set-active-sender <id>",
	Short: "Select the sender profile used for new invoices",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateSettings(func(st *settings.Settings) error { return st.SetActiveSender(args[0]) })
	},
}

var configReceiverCmd = &cobra.Command{
	Use:   "set-active-receiver <id>",
	Short: "Select the receiver profile used for new invoices",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateSettings(func(st *settings.Settings) error { return st.SetActiveReceiver(args[0]) })
	},
}

func updateSettings(fn func(*settings.Settings) error) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	st, err := store.Update(fn)
	if err != nil {
		return err
	}
	fmt.Printf("active sender=%q receiver=%q\n", st.ActiveSenderID, st.ActiveReceiverID)
	return nil
}

func init() {
	configCmd.AddCommand(configShowCmd, configResetCmd, configImportCmd, configExportCmd, configSenderCmd, configReceiverCmd)
	rootCmd.AddCommand(configCmd)
}
