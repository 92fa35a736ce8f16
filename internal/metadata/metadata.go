// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metadata parses the XML metadata document found inside an
// extracted archive and selects the acquired channels.
package metadata

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ot-tools/otbconvert/pkg/types"
)

// Filename is the fixed name of the metadata document inside the archive.
const Filename = "form_dock00.xml"

// pluginAcquired marks live-acquired channels. Channels derived by the
// device's real-time processing carry "LoaderProcessing" and are never
// exported.
const pluginAcquired = "LoaderOTComm"

var (
	// ErrMalformedArchive indicates the metadata document lacks required
	// shared fields or contains no acquired channels.
	ErrMalformedArchive = errors.New("malformed archive metadata")

	// ErrFieldCoercion indicates a required channel field is absent or
	// not numeric.
	ErrFieldCoercion = errors.New("channel field coercion")
)

// Options control parsing behavior.
type Options struct {
	// StrictSampleRate rejects archives whose channels declare differing
	// fsample values instead of silently trusting the first channel.
	StrictSampleRate bool
}

// signalElement mirrors one <signal> element. Every field is a pointer so
// an absent child element stays nil rather than decoding to a zero value.
type signalElement struct {
	Plugin      *string `xml:"plugin"`
	TrackIndex  *string `xml:"track_index"`
	Description *string `xml:"description"`
	Unit        *string `xml:"unity_of_measurement"`
	SampleRate  *string `xml:"fsample"`
	ADBits      *string `xml:"ad_bits"`
	Gain        *string `xml:"signal_gain"`
	LowPass     *string `xml:"low_pass_filter"`
	HighPass    *string `xml:"high_pass_filter"`
	SignalPath  *string `xml:"signal_path"`
	TrackTotal  *string `xml:"track_totalnumber"`
}

// ParseFile parses the metadata document at path.
func ParseFile(path string, opts Options) (*types.ChannelSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening metadata document: %v", ErrMalformedArchive, err)
	}
	defer f.Close()
	return Parse(f, opts)
}

// Parse reads the metadata document from r and returns the channel set of
// acquired signals in document order. The shared layout parameters
// (signal_path, track_totalnumber, fsample) are taken from the first
// acquired channel.
func Parse(r io.Reader, opts Options) (*types.ChannelSet, error) {
	signals, err := collectSignals(r)
	if err != nil {
		return nil, err
	}

	set := &types.ChannelSet{}
	for _, sig := range signals {
		if sig.Plugin == nil || strings.TrimSpace(*sig.Plugin) != pluginAcquired {
			continue
		}

		rec, err := newRecord(sig, len(set.Records))
		if err != nil {
			return nil, err
		}

		if len(set.Records) == 0 {
			set.SampleRate = rec.SampleRate
			if sig.SignalPath != nil {
				set.SignalPath = strings.TrimSpace(*sig.SignalPath)
			}
			if sig.TrackTotal != nil {
				total, err := coerceInt("track_totalnumber", sig.TrackTotal, 0)
				if err != nil {
					return nil, err
				}
				set.TotalChannels = total
			}
		} else if opts.StrictSampleRate && rec.SampleRate != set.SampleRate {
			return nil, fmt.Errorf("%w: channel %d declares fsample %v, archive uses %v",
				ErrMalformedArchive, rec.Index, rec.SampleRate, set.SampleRate)
		}

		set.Records = append(set.Records, rec)
	}

	if len(set.Records) == 0 {
		return nil, fmt.Errorf("%w: no %s signals in metadata document", ErrMalformedArchive, pluginAcquired)
	}
	if set.SignalPath == "" {
		return nil, fmt.Errorf("%w: signal_path missing", ErrMalformedArchive)
	}
	if !filepath.IsLocal(filepath.FromSlash(set.SignalPath)) {
		return nil, fmt.Errorf("%w: signal_path %q escapes the extracted archive", ErrMalformedArchive, set.SignalPath)
	}
	if set.TotalChannels <= 0 {
		return nil, fmt.Errorf("%w: track_totalnumber missing", ErrMalformedArchive)
	}
	for _, rec := range set.Records {
		if rec.Index < 0 || rec.Index >= set.TotalChannels {
			return nil, fmt.Errorf("%w: track_index %d outside %d interleaved channels",
				ErrMalformedArchive, rec.Index, set.TotalChannels)
		}
	}

	return set, nil
}

// collectSignals walks the document token stream and decodes every <signal>
// element, at any depth, in document order.
func collectSignals(r io.Reader) ([]signalElement, error) {
	dec := xml.NewDecoder(r)
	var signals []signalElement
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: parsing metadata document: %v", ErrMalformedArchive, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "signal" {
			continue
		}
		var sig signalElement
		if err := dec.DecodeElement(&sig, &start); err != nil {
			return nil, fmt.Errorf("%w: decoding signal element: %v", ErrMalformedArchive, err)
		}
		signals = append(signals, sig)
	}
	return signals, nil
}

// newRecord coerces one acquired signal element into a ChannelRecord.
// ord is the channel's position among acquired channels, used in errors.
func newRecord(sig signalElement, ord int) (types.ChannelRecord, error) {
	var rec types.ChannelRecord
	var err error

	if rec.Index, err = coerceInt("track_index", sig.TrackIndex, ord); err != nil {
		return rec, err
	}
	if rec.SampleRate, err = coerceFloat("fsample", sig.SampleRate, ord); err != nil {
		return rec, err
	}
	if rec.ADBits, err = coerceInt("ad_bits", sig.ADBits, ord); err != nil {
		return rec, err
	}
	if rec.Gain, err = coerceFloat("signal_gain", sig.Gain, ord); err != nil {
		return rec, err
	}
	if rec.LowPass, err = coerceOptFloat("low_pass_filter", sig.LowPass, ord); err != nil {
		return rec, err
	}
	if rec.HighPass, err = coerceOptFloat("high_pass_filter", sig.HighPass, ord); err != nil {
		return rec, err
	}

	rec.Description = trimmed(sig.Description)
	rec.Unit = trimmed(sig.Unit)
	rec.PowerSupply = types.PowerSupply
	return rec, nil
}

func coerceInt(field string, v *string, ord int) (int, error) {
	if v == nil {
		return 0, fmt.Errorf("%w: channel %d: %s absent", ErrFieldCoercion, ord, field)
	}
	n, err := strconv.Atoi(strings.TrimSpace(*v))
	if err != nil {
		return 0, fmt.Errorf("%w: channel %d: %s %q is not an integer", ErrFieldCoercion, ord, field, *v)
	}
	return n, nil
}

func coerceFloat(field string, v *string, ord int) (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("%w: channel %d: %s absent", ErrFieldCoercion, ord, field)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(*v), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: channel %d: %s %q is not numeric", ErrFieldCoercion, ord, field, *v)
	}
	return f, nil
}

// coerceOptFloat coerces a filter cutoff. The element may be absent (nil
// result), but text that is present must be numeric.
func coerceOptFloat(field string, v *string, ord int) (*float64, error) {
	if v == nil {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(*v), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: channel %d: %s %q is not numeric", ErrFieldCoercion, ord, field, *v)
	}
	return &f, nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	return &s
}
