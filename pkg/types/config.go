// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ConvertConfig holds settings for archive conversion.
type ConvertConfig struct {
	// ScratchDir is the base directory for per-archive extraction
	// directories. Empty means the system temp directory.
	ScratchDir string `json:"scratch_dir" yaml:"scratch_dir"`

	// HeaderExt is the extension of the header artifact (default "yaml").
	HeaderExt string `json:"header_ext" yaml:"header_ext"`

	// DataExt is the extension of the data artifact (default "csv").
	DataExt string `json:"data_ext" yaml:"data_ext"`

	// StrictSampleRate rejects archives whose channels declare differing
	// fsample values. Off by default: the acquisition software writes one
	// rate archive-wide and only the first channel's value is read.
	StrictSampleRate bool `json:"strict_fsample" yaml:"strict_fsample"`
}

// CatalogConfig holds settings for the conversion catalog.
type CatalogConfig struct {
	// Path is the SQLite database file. Empty disables the catalog.
	Path string `json:"catalog_path" yaml:"catalog_path"`
}
