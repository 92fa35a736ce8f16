// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the otbconvert CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the otbconvert CLI.
var rootCmd = &cobra.Command{
	Use:   "otbconvert",
	Short: "Convert .otb+ recording archives to YAML headers and CSV data",
	Long: `otbconvert extracts physiological signal recordings from .otb+ archives
and converts them into two plain artifacts next to each archive: a YAML
document holding the per-channel headers, and a CSV matrix holding the
calibrated signals in volts with a time column appended.

Only live-acquired channels are exported; channels derived by the device's
real-time processing are skipped. Archives whose artifacts already exist
are never overwritten.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./otbconvert.yaml or ~/.config/otbconvert/config.yaml)")
}

func initConfig() {
	viper.SetDefault("scratch_dir", "")
	viper.SetDefault("header_ext", "yaml")
	viper.SetDefault("data_ext", "csv")
	viper.SetDefault("strict_fsample", false)
	viper.SetDefault("catalog_path", "")

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("otbconvert")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "otbconvert"))
		}
	}

	viper.SetEnvPrefix("OTBCONVERT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
