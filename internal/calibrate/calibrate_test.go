// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package calibrate

import (
	"errors"
	"testing"

	"github.com/ot-tools/otbconvert/pkg/types"
)

func strptr(s string) *string { return &s }

func TestUnitFactor(t *testing.T) {
	tests := []struct {
		name    string
		unit    *string
		want    float64
		wantErr bool
	}{
		{name: "millivolts", unit: strptr("mV"), want: 1000},
		{name: "volts", unit: strptr("V"), want: 1},
		{name: "unknown symbol", unit: strptr("uV"), wantErr: true},
		{name: "empty", unit: strptr(""), wantErr: true},
		{name: "absent", unit: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnitFactor(tt.unit)
			if tt.wantErr {
				if !errors.Is(err, ErrUnrecognizedUnit) {
					t.Errorf("UnitFactor error = %v, want ErrUnrecognizedUnit", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("UnitFactor: %v", err)
			}
			if got != tt.want {
				t.Errorf("UnitFactor = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyReferenceValue(t *testing.T) {
	// Raw code 2048 at 5 V excitation, 12-bit resolution, unit V, gain 2
	// must come out as 2048 * 5 / 4096 * 1 / 2 = 1.25.
	set := types.ChannelSet{
		Records: []types.ChannelRecord{{
			Index:       0,
			Unit:        strptr("V"),
			PowerSupply: 5,
			ADBits:      12,
			Gain:        2,
		}},
		TotalChannels: 1,
		SampleRate:    2048,
	}

	out, err := Apply([][]float64{{2048}}, set)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out[0][0] != 1.25 {
		t.Errorf("calibrated value = %v, want 1.25", out[0][0])
	}
}

func TestApplyUnitScaling(t *testing.T) {
	set := types.ChannelSet{
		Records: []types.ChannelRecord{
			{Index: 0, Unit: strptr("mV"), PowerSupply: 5, ADBits: 12, Gain: 500},
			{Index: 1, Unit: strptr("V"), PowerSupply: 5, ADBits: 12, Gain: 500},
		},
		TotalChannels: 2,
		SampleRate:    1000,
	}

	out, err := Apply([][]float64{{100, 100}}, set)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	// Identical raw codes, so the mV column is exactly 1000x the V column.
	if out[0][0] != out[0][1]*1000 {
		t.Errorf("mV column = %v, V column = %v; want a 1000x ratio", out[0][0], out[0][1])
	}
}

func TestApplyTimeColumn(t *testing.T) {
	set := types.ChannelSet{
		Records:       []types.ChannelRecord{{Index: 0, Unit: strptr("V"), PowerSupply: 5, ADBits: 12, Gain: 1}},
		TotalChannels: 1,
		SampleRate:    512,
	}

	selected := make([][]float64, 100)
	for i := range selected {
		selected[i] = []float64{0}
	}

	out, err := Apply(selected, set)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(out) != len(selected) {
		t.Fatalf("rows = %d, want %d", len(out), len(selected))
	}

	prev := -1.0
	for i, row := range out {
		tcol := row[len(row)-1]
		if want := float64(i) / 512; tcol != want {
			t.Fatalf("time[%d] = %v, want %v", i, tcol, want)
		}
		if tcol <= prev {
			t.Fatalf("time[%d] = %v is not strictly increasing past %v", i, tcol, prev)
		}
		prev = tcol
	}
}

func TestApplyUnrecognizedUnit(t *testing.T) {
	set := types.ChannelSet{
		Records: []types.ChannelRecord{
			{Index: 0, Unit: strptr("V"), PowerSupply: 5, ADBits: 12, Gain: 1},
			{Index: 1, Unit: strptr("ADC counts"), PowerSupply: 5, ADBits: 12, Gain: 1},
		},
		TotalChannels: 2,
		SampleRate:    1000,
	}

	// One bad channel fails the whole archive, not just that channel.
	_, err := Apply([][]float64{{1, 1}}, set)
	if !errors.Is(err, ErrUnrecognizedUnit) {
		t.Errorf("Apply error = %v, want ErrUnrecognizedUnit", err)
	}
}
