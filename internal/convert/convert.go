// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert runs the per-archive conversion pipeline: extract the
// container, parse the metadata document, decode and calibrate the raw
// samples, and write the header and data artifacts.
//
// Failures are distinguishable with errors.Is against the stage sentinels:
// export.ErrAlreadyProcessed, metadata.ErrMalformedArchive,
// metadata.ErrFieldCoercion, decode.ErrShapeMismatch and
// calibrate.ErrUnrecognizedUnit. Every failure aborts the archive before
// any artifact is committed, so outputs appear as a complete pair or not
// at all.
package convert

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/ot-tools/otbconvert/internal/archive"
	"github.com/ot-tools/otbconvert/internal/calibrate"
	"github.com/ot-tools/otbconvert/internal/decode"
	"github.com/ot-tools/otbconvert/internal/export"
	"github.com/ot-tools/otbconvert/internal/metadata"
	"github.com/ot-tools/otbconvert/pkg/types"
)

// ArchiveExt is the recording container extension the batch driver looks for.
const ArchiveExt = ".otb+"

// Result summarizes one successful conversion.
type Result struct {
	// Archive is the converted container path.
	Archive string

	// Channels is the number of exported channels.
	Channels int

	// Samples is the number of time instants in the data artifact.
	Samples int

	// Duration is the recording length in seconds.
	Duration float64
}

// ConvertArchive converts a single archive, writing its two artifacts as
// siblings of the archive file. The scratch extraction directory is
// released on every exit path.
func ConvertArchive(archivePath string, cfg types.ConvertConfig) (*Result, error) {
	cfg = withDefaults(cfg)

	paths := export.OutputPaths(archivePath, cfg.HeaderExt, cfg.DataExt)
	if err := export.CheckNew(paths); err != nil {
		return nil, err
	}

	scratch, err := archive.Extract(archivePath, cfg.ScratchDir)
	if err != nil {
		return nil, err
	}
	defer scratch.Close()

	set, err := metadata.ParseFile(scratch.Path(metadata.Filename), metadata.Options{
		StrictSampleRate: cfg.StrictSampleRate,
	})
	if err != nil {
		return nil, err
	}

	selected, err := decode.ReadFile(scratch.Path(set.SignalPath), *set)
	if err != nil {
		return nil, err
	}

	calibrated, err := calibrate.Apply(selected, *set)
	if err != nil {
		return nil, err
	}

	if err := export.Write(paths, types.NewHeaderDocument(*set), calibrated); err != nil {
		return nil, err
	}

	return &Result{
		Archive:  archivePath,
		Channels: len(set.Records),
		Samples:  len(calibrated),
		Duration: float64(len(calibrated)) / set.SampleRate,
	}, nil
}

func withDefaults(cfg types.ConvertConfig) types.ConvertConfig {
	if cfg.HeaderExt == "" {
		cfg.HeaderExt = "yaml"
	}
	if cfg.DataExt == "" {
		cfg.DataExt = "csv"
	}
	return cfg
}

// Status classifies a batch outcome for one archive.
type Status string

const (
	StatusConverted Status = "converted"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Record is one catalog entry describing a conversion outcome.
type Record struct {
	Archive  string
	Status   Status
	Channels int
	Samples  int
	Duration float64
	Error    string
}

// Recorder persists conversion outcomes. A nil Recorder disables recording;
// a Recorder failure never affects the conversion itself.
type Recorder interface {
	Record(rec Record) error
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of archives processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any archives failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ConvertPaths converts the listed archives sequentially, printing per-file
// status to w and returning a summary. A failure in one archive never stops
// the others.
func ConvertPaths(archives []string, cfg types.ConvertConfig, rec Recorder, w io.Writer) BatchResult {
	var result BatchResult
	for _, path := range archives {
		switch convertOne(path, cfg, rec, w) {
		case StatusConverted:
			result.Converted++
		case StatusSkipped:
			result.Skipped++
		case StatusFailed:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}

// ConvertTree walks root for recording containers and converts each one.
func ConvertTree(root string, cfg types.ConvertConfig, rec Recorder, w io.Writer) (BatchResult, error) {
	var archives []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ArchiveExt) {
			archives = append(archives, path)
		}
		return nil
	})
	if err != nil {
		return BatchResult{}, fmt.Errorf("walking %s: %w", root, err)
	}
	return ConvertPaths(archives, cfg, rec, w), nil
}

func convertOne(path string, cfg types.ConvertConfig, rec Recorder, w io.Writer) Status {
	base := filepath.Base(path)
	res, err := ConvertArchive(path, cfg)

	var entry Record
	var status Status
	switch {
	case err == nil:
		status = StatusConverted
		fmt.Fprintf(w, "converted: %s (%d channels, %d samples)\n", base, res.Channels, res.Samples)
		entry = Record{Archive: path, Status: status, Channels: res.Channels, Samples: res.Samples, Duration: res.Duration}
	case errors.Is(err, export.ErrAlreadyProcessed):
		status = StatusSkipped
		fmt.Fprintf(w, "skipped:   %s (already converted)\n", base)
		entry = Record{Archive: path, Status: status}
	default:
		status = StatusFailed
		fmt.Fprintf(w, "warning: could not convert %s: %v\n", base, err)
		entry = Record{Archive: path, Status: status, Error: err.Error()}
	}

	if rec != nil {
		if recErr := rec.Record(entry); recErr != nil {
			fmt.Fprintf(w, "warning: could not record %s in catalog: %v\n", base, recErr)
		}
	}
	return status
}
