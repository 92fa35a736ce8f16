// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package calibrate converts raw ADC codes into physical volts and appends
// the synthesized time axis.
package calibrate

import (
	"errors"
	"fmt"
	"math"

	"github.com/ot-tools/otbconvert/pkg/types"
)

// ErrUnrecognizedUnit indicates a channel declares a unit of measurement
// other than the two the calibration math defines factors for.
var ErrUnrecognizedUnit = errors.New("unity of measurement not recognized (only mV and V are predefined)")

// UnitFactor returns the scale that brings a channel's values to volts.
// Only "mV" and "V" are defined; there is no default.
func UnitFactor(unit *string) (float64, error) {
	if unit == nil {
		return 0, fmt.Errorf("%w: unit absent", ErrUnrecognizedUnit)
	}
	switch *unit {
	case "mV":
		return 1000, nil
	case "V":
		return 1, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnrecognizedUnit, *unit)
	}
}

// Apply maps the selected raw matrix to physical volts and appends the time
// column as the last column. For channel n the transform is
//
//	cal = raw * power_supply / 2^ad_bits * factor / gain
//
// applied in exactly that order so results match the reference converter
// bit for bit. time[i] = i / fsample, starting at zero.
func Apply(selected [][]float64, set types.ChannelSet) ([][]float64, error) {
	factors := make([]float64, len(set.Records))
	for n, rec := range set.Records {
		f, err := UnitFactor(rec.Unit)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", rec.Index, err)
		}
		factors[n] = f
	}

	out := make([][]float64, len(selected))
	for i, row := range selected {
		cal := make([]float64, len(set.Records)+1)
		for n, rec := range set.Records {
			cal[n] = row[n] * rec.PowerSupply / math.Pow(2, float64(rec.ADBits)) * factors[n] / rec.Gain
		}
		cal[len(set.Records)] = float64(i) / set.SampleRate
		out[i] = cal
	}
	return out, nil
}
