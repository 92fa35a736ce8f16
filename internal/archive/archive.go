// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive extracts the tar-style recording container into a scratch
// directory scoped to one conversion.
package archive

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Scratch is a per-archive extraction directory. It must be released with
// Close on every exit path so batch runs do not leak temp trees.
type Scratch struct {
	dir string
}

// Dir returns the scratch directory path.
func (s *Scratch) Dir() string { return s.dir }

// Path resolves a path inside the scratch directory.
func (s *Scratch) Path(rel string) string {
	return filepath.Join(s.dir, rel)
}

// Close deletes the scratch directory and everything extracted into it.
func (s *Scratch) Close() error {
	return os.RemoveAll(s.dir)
}

// Extract opens the container at archivePath and extracts all entries into
// a fresh scratch directory under baseDir (the system temp directory when
// baseDir is empty). Gzip-compressed containers are detected by magic bytes.
func Extract(archivePath, baseDir string) (*Scratch, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	dir, err := os.MkdirTemp(baseDir, "otbconvert-*")
	if err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	s := &Scratch{dir: dir}

	if err := extractInto(f, dir); err != nil {
		s.Close()
		return nil, fmt.Errorf("extracting %s: %w", filepath.Base(archivePath), err)
	}
	return s, nil
}

func extractInto(f io.Reader, dir string) error {
	br := bufio.NewReader(f)

	var r io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return fmt.Errorf("opening gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading container entry: %w", err)
		}

		name := filepath.FromSlash(hdr.Name)
		if !filepath.IsLocal(name) {
			return fmt.Errorf("container entry %q escapes the scratch directory", hdr.Name)
		}
		target := filepath.Join(dir, name)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating directory entry: %w", err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("creating entry parent: %w", err)
			}
			if err := writeEntry(target, tr); err != nil {
				return err
			}
		default:
			// Links and special files never appear in recording containers.
			return fmt.Errorf("container entry %q has unsupported type %d", hdr.Name, hdr.Typeflag)
		}
	}
}

func writeEntry(target string, tr io.Reader) error {
	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(target), err)
	}
	if _, err := io.Copy(out, tr); err != nil {
		out.Close()
		return fmt.Errorf("extracting %s: %w", filepath.Base(target), err)
	}
	return out.Close()
}
