// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ot-tools/otbconvert/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List recorded conversion outcomes",
	Long: `Catalog prints the conversion ledger, newest first. The ledger is only
populated when conversions run with a catalog configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := stringSetting(cmd, "catalog", "catalog_path")
		if path == "" {
			return fmt.Errorf("no catalog configured: pass --catalog or set catalog_path")
		}

		store, err := catalog.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.List()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(os.Stderr, "Catalog is empty.")
			return nil
		}

		for _, e := range entries {
			switch e.Status {
			case "converted":
				fmt.Printf("%s  %-9s  %s  (%d channels, %d samples, %.3f s)\n",
					e.RecordedAt, e.Status, e.Archive, e.Channels, e.Samples, e.Duration)
			case "failed":
				fmt.Printf("%s  %-9s  %s  (%s)\n", e.RecordedAt, e.Status, e.Archive, e.Error)
			default:
				fmt.Printf("%s  %-9s  %s\n", e.RecordedAt, e.Status, e.Archive)
			}
		}
		return nil
	},
}

func init() {
	catalogCmd.Flags().String("catalog", "", "SQLite catalog to read")

	rootCmd.AddCommand(catalogCmd)
}
