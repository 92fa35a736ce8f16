// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PowerSupply is the sensor excitation voltage. The acquisition hardware
// does not record it in the metadata document; it is 5 V on every channel.
const PowerSupply = 5.0

// ChannelRecord holds one acquired channel's metadata as read from the
// archive's metadata document. Optional descriptive fields are pointers so
// that an absent element stays distinguishable from an empty or zero value.
type ChannelRecord struct {
	// Index is the channel's column position in the raw interleaved stream.
	Index int

	// Description is the free-text channel label, nil when absent.
	Description *string

	// Unit is the unit-of-measurement symbol ("mV" or "V"), nil when absent.
	Unit *string

	// PowerSupply is the excitation voltage (always the PowerSupply constant).
	PowerSupply float64

	// SampleRate is the sampling frequency in Hz, shared archive-wide.
	SampleRate float64

	// ADBits is the converter bit resolution (e.g. 12 or 16).
	ADBits int

	// Gain is the channel-specific amplification factor.
	Gain float64

	// LowPass and HighPass are filter cutoff frequencies in Hz. They are
	// descriptive only and never enter calibration math; nil when absent.
	LowPass  *float64
	HighPass *float64
}

// ChannelSet is the ordered collection of acquired channels plus the
// archive-wide layout parameters needed to decode the raw sample stream.
type ChannelSet struct {
	// Records lists the acquired channels in document order.
	Records []ChannelRecord

	// TotalChannels is the number of interleaved channels in the raw
	// stream, including channels that are not exported.
	TotalChannels int

	// SignalPath is the raw sample file's path inside the extracted archive.
	SignalPath string

	// SampleRate is the archive sampling frequency in Hz, taken from the
	// first acquired channel.
	SampleRate float64
}

// Period returns the sampling period in seconds.
func (s ChannelSet) Period() float64 {
	return 1 / s.SampleRate
}

// HeaderDocument maps header fields to per-channel value sequences, one
// entry per acquired channel in discovery order. It is the structured
// artifact written next to the archive. Optional fields serialize absent
// entries as YAML nulls.
type HeaderDocument struct {
	TrackIndex  []int      `yaml:"track_index"`
	Description []*string  `yaml:"description"`
	Unit        []*string  `yaml:"unity_of_measurement"`
	PowerSupply []float64  `yaml:"power_supply"`
	SampleRate  []float64  `yaml:"fsample"`
	ADBits      []int      `yaml:"ad_bits"`
	Gain        []float64  `yaml:"signal_gain"`
	LowPass     []*float64 `yaml:"low_pass_filter"`
	HighPass    []*float64 `yaml:"high_pass_filter"`
}

// NewHeaderDocument builds the header document from a channel set.
func NewHeaderDocument(set ChannelSet) HeaderDocument {
	n := len(set.Records)
	doc := HeaderDocument{
		TrackIndex:  make([]int, n),
		Description: make([]*string, n),
		Unit:        make([]*string, n),
		PowerSupply: make([]float64, n),
		SampleRate:  make([]float64, n),
		ADBits:      make([]int, n),
		Gain:        make([]float64, n),
		LowPass:     make([]*float64, n),
		HighPass:    make([]*float64, n),
	}
	for i, rec := range set.Records {
		doc.TrackIndex[i] = rec.Index
		doc.Description[i] = rec.Description
		doc.Unit[i] = rec.Unit
		doc.PowerSupply[i] = rec.PowerSupply
		doc.SampleRate[i] = rec.SampleRate
		doc.ADBits[i] = rec.ADBits
		doc.Gain[i] = rec.Gain
		doc.LowPass[i] = rec.LowPass
		doc.HighPass[i] = rec.HighPass
	}
	return doc
}
