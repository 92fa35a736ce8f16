// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ot-tools/otbconvert/internal/catalog"
	"github.com/ot-tools/otbconvert/internal/convert"
	"github.com/ot-tools/otbconvert/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [archives...]",
	Short: "Convert recording archives to header and data artifacts",
	Long: `Convert processes .otb+ archives, either the ones listed as arguments or
every archive found under --dir. Each archive yields a YAML header document
and a CSV data matrix as siblings of the archive file. Archives whose
artifacts already exist are skipped; a failing archive is reported and the
batch continues.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" && len(args) == 0 {
			return fmt.Errorf("nothing to convert: pass archive paths or --dir")
		}
		if dir != "" && len(args) > 0 {
			return fmt.Errorf("pass archive paths or --dir, not both")
		}

		cfg := types.ConvertConfig{
			ScratchDir:       stringSetting(cmd, "scratch-dir", "scratch_dir"),
			HeaderExt:        stringSetting(cmd, "header-ext", "header_ext"),
			DataExt:          stringSetting(cmd, "data-ext", "data_ext"),
			StrictSampleRate: boolSetting(cmd, "strict-fsample", "strict_fsample"),
		}

		var rec convert.Recorder
		if path := stringSetting(cmd, "catalog", "catalog_path"); path != "" {
			store, err := catalog.Open(path)
			if err != nil {
				return err
			}
			defer store.Close()
			rec = store
		}

		var result convert.BatchResult
		if dir != "" {
			var err error
			result, err = convert.ConvertTree(dir, cfg, rec, os.Stdout)
			if err != nil {
				return err
			}
		} else {
			result = convert.ConvertPaths(args, cfg, rec, os.Stdout)
		}

		if result.HasFailures() {
			return fmt.Errorf("%d of %d archives failed", result.Failed, result.Total())
		}
		return nil
	},
}

// stringSetting resolves a setting from the flag when set, the config
// otherwise.
func stringSetting(cmd *cobra.Command, flag, key string) string {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetString(flag)
		return v
	}
	return viper.GetString(key)
}

func boolSetting(cmd *cobra.Command, flag, key string) bool {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetBool(flag)
		return v
	}
	return viper.GetBool(key)
}

func init() {
	convertCmd.Flags().String("dir", "", "walk a directory tree for .otb+ archives")
	convertCmd.Flags().String("scratch-dir", "", "base directory for extraction scratch space (default: system temp)")
	convertCmd.Flags().String("header-ext", "yaml", "extension of the header artifact")
	convertCmd.Flags().String("data-ext", "csv", "extension of the data artifact")
	convertCmd.Flags().Bool("strict-fsample", false, "reject archives whose channels declare differing fsample values")
	convertCmd.Flags().String("catalog", "", "SQLite catalog recording conversion outcomes")

	rootCmd.AddCommand(convertCmd)
}
