// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes the two conversion artifacts: the YAML header
// document and the CSV data matrix.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/ot-tools/otbconvert/pkg/types"
)

// ErrAlreadyProcessed indicates a target artifact already exists for the
// archive. Nothing is written and existing files are left untouched.
var ErrAlreadyProcessed = errors.New("converted files already exist")

// Paths names the two artifacts for one archive.
type Paths struct {
	Header string
	Data   string
}

// OutputPaths derives the artifact paths for an archive: siblings of the
// archive file with its extension replaced.
func OutputPaths(archivePath, headerExt, dataExt string) Paths {
	base := strings.TrimSuffix(archivePath, filepath.Ext(archivePath))
	return Paths{
		Header: base + "." + headerExt,
		Data:   base + "." + dataExt,
	}
}

// CheckNew returns ErrAlreadyProcessed when either artifact already exists.
func CheckNew(p Paths) error {
	for _, path := range []string{p.Header, p.Data} {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrAlreadyProcessed, path)
		}
	}
	return nil
}

// Write serializes the header document and the calibrated matrix. Both
// artifacts are staged as temporary siblings and renamed into place only
// after both are complete, so a failure leaves no partial outputs.
func Write(p Paths, doc types.HeaderDocument, matrix [][]float64) error {
	if err := CheckNew(p); err != nil {
		return err
	}

	headerTmp := p.Header + ".tmp"
	dataTmp := p.Data + ".tmp"
	cleanup := func() {
		os.Remove(headerTmp)
		os.Remove(dataTmp)
	}

	if err := writeHeader(headerTmp, doc); err != nil {
		cleanup()
		return err
	}
	if err := writeMatrix(dataTmp, matrix); err != nil {
		cleanup()
		return err
	}

	if err := os.Rename(headerTmp, p.Header); err != nil {
		cleanup()
		return fmt.Errorf("committing header artifact: %w", err)
	}
	if err := os.Rename(dataTmp, p.Data); err != nil {
		os.Remove(p.Header)
		cleanup()
		return fmt.Errorf("committing data artifact: %w", err)
	}
	return nil
}

func writeHeader(path string, doc types.HeaderDocument) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling header document: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing header document: %w", err)
	}
	return nil
}

// writeMatrix writes the calibrated matrix as comma-separated rows with no
// header line, floats in shortest round-trip precision.
func writeMatrix(path string, matrix [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating data artifact: %w", err)
	}

	w := csv.NewWriter(f)
	record := make([]string, 0, 16)
	for _, row := range matrix {
		record = record[:0]
		for _, v := range row {
			record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(record); err != nil {
			f.Close()
			return fmt.Errorf("writing data row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flushing data artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing data artifact: %w", err)
	}
	return nil
}
