// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package decode turns the raw interleaved sample file into a
// channel-selected float matrix.
package decode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/ot-tools/otbconvert/pkg/types"
)

// ErrShapeMismatch indicates the raw byte stream cannot be reshaped into
// the declared number of interleaved channels.
var ErrShapeMismatch = errors.New("sample stream shape mismatch")

// ReadFile reads the whole raw sample file at path and returns the matrix
// of selected channels. Rows are time instants, columns follow the channel
// order of set.Records.
func ReadFile(path string, set types.ChannelSet) ([][]float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sample file: %w", err)
	}
	return Decode(raw, set)
}

// Decode interprets raw as little-endian signed 16-bit samples interleaved
// across set.TotalChannels channels and selects the columns named by
// set.Records. Sample values are widened to float64 for calibration.
func Decode(raw []byte, set types.ChannelSet) ([][]float64, error) {
	if set.TotalChannels <= 0 {
		return nil, fmt.Errorf("%w: %d interleaved channels declared", ErrShapeMismatch, set.TotalChannels)
	}
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of 16-bit samples", ErrShapeMismatch, len(raw))
	}

	flat := len(raw) / 2
	if flat%set.TotalChannels != 0 {
		return nil, fmt.Errorf("%w: %d samples do not divide into %d interleaved channels",
			ErrShapeMismatch, flat, set.TotalChannels)
	}
	rows := flat / set.TotalChannels

	selected := make([][]float64, rows)
	for i := range selected {
		row := make([]float64, len(set.Records))
		base := i * set.TotalChannels * 2
		for j, rec := range set.Records {
			off := base + rec.Index*2
			row[j] = float64(int16(binary.LittleEndian.Uint16(raw[off : off+2])))
		}
		selected[i] = row
	}
	return selected, nil
}
