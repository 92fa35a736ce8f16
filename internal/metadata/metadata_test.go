// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metadata

import (
	"errors"
	"strings"
	"testing"
)

// docWith wraps signal elements in a device document envelope, mimicking the
// nesting the acquisition software produces.
func docWith(signals ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?><forms><form>`)
	for _, s := range signals {
		b.WriteString(s)
	}
	b.WriteString(`</form></forms>`)
	return b.String()
}

const acquiredSignal = `<signal>
	<plugin>LoaderOTComm</plugin>
	<track_index>0</track_index>
	<description>biceps brachii</description>
	<unity_of_measurement>mV</unity_of_measurement>
	<fsample>2048</fsample>
	<ad_bits>12</ad_bits>
	<signal_gain>500</signal_gain>
	<low_pass_filter>500</low_pass_filter>
	<high_pass_filter>10</high_pass_filter>
	<signal_path>trace.sig</signal_path>
	<track_totalnumber>4</track_totalnumber>
</signal>`

const processedSignal = `<signal>
	<plugin>LoaderProcessing</plugin>
	<track_index>1</track_index>
	<fsample>2048</fsample>
</signal>`

func TestParseSelectsAcquiredChannels(t *testing.T) {
	second := `<signal>
		<plugin>LoaderOTComm</plugin>
		<track_index>2</track_index>
		<unity_of_measurement>V</unity_of_measurement>
		<fsample>2048</fsample>
		<ad_bits>16</ad_bits>
		<signal_gain>1</signal_gain>
	</signal>`

	set, err := Parse(strings.NewReader(docWith(acquiredSignal, processedSignal, second)), Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(set.Records) != 2 {
		t.Fatalf("len(Records) = %d, want 2 (processed signal must be filtered out)", len(set.Records))
	}
	if set.SignalPath != "trace.sig" {
		t.Errorf("SignalPath = %q, want %q", set.SignalPath, "trace.sig")
	}
	if set.TotalChannels != 4 {
		t.Errorf("TotalChannels = %d, want 4", set.TotalChannels)
	}
	if set.SampleRate != 2048 {
		t.Errorf("SampleRate = %v, want 2048", set.SampleRate)
	}
	if got := set.Period(); got != 1.0/2048 {
		t.Errorf("Period() = %v, want %v", got, 1.0/2048)
	}

	first := set.Records[0]
	if first.Index != 0 || first.ADBits != 12 || first.Gain != 500 {
		t.Errorf("first record = %+v", first)
	}
	if first.Description == nil || *first.Description != "biceps brachii" {
		t.Errorf("first description = %v", first.Description)
	}
	if first.Unit == nil || *first.Unit != "mV" {
		t.Errorf("first unit = %v", first.Unit)
	}
	if first.PowerSupply != 5 {
		t.Errorf("PowerSupply = %v, want the fixed 5 V excitation", first.PowerSupply)
	}
	if first.LowPass == nil || *first.LowPass != 500 {
		t.Errorf("LowPass = %v, want 500", first.LowPass)
	}

	second2 := set.Records[1]
	if second2.Index != 2 {
		t.Errorf("second index = %d, want 2", second2.Index)
	}
	if second2.Description != nil {
		t.Errorf("second description should be nil when the element is absent, got %q", *second2.Description)
	}
	if second2.LowPass != nil || second2.HighPass != nil {
		t.Error("absent filter cutoffs should stay nil")
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name:    "no acquired signals",
			doc:     docWith(processedSignal),
			wantErr: ErrMalformedArchive,
		},
		{
			name: "missing signal_path",
			doc: docWith(`<signal><plugin>LoaderOTComm</plugin><track_index>0</track_index>
				<fsample>2048</fsample><ad_bits>12</ad_bits><signal_gain>1</signal_gain>
				<track_totalnumber>1</track_totalnumber></signal>`),
			wantErr: ErrMalformedArchive,
		},
		{
			name: "signal_path escaping the extracted archive",
			doc: docWith(`<signal><plugin>LoaderOTComm</plugin><track_index>0</track_index>
				<fsample>2048</fsample><ad_bits>12</ad_bits><signal_gain>1</signal_gain>
				<signal_path>../../etc/passwd</signal_path><track_totalnumber>1</track_totalnumber></signal>`),
			wantErr: ErrMalformedArchive,
		},
		{
			name: "absolute signal_path",
			doc: docWith(`<signal><plugin>LoaderOTComm</plugin><track_index>0</track_index>
				<fsample>2048</fsample><ad_bits>12</ad_bits><signal_gain>1</signal_gain>
				<signal_path>/tmp/outside.sig</signal_path><track_totalnumber>1</track_totalnumber></signal>`),
			wantErr: ErrMalformedArchive,
		},
		{
			name: "missing track_totalnumber",
			doc: docWith(`<signal><plugin>LoaderOTComm</plugin><track_index>0</track_index>
				<fsample>2048</fsample><ad_bits>12</ad_bits><signal_gain>1</signal_gain>
				<signal_path>trace.sig</signal_path></signal>`),
			wantErr: ErrMalformedArchive,
		},
		{
			name: "track_index beyond interleaved channel count",
			doc: docWith(`<signal><plugin>LoaderOTComm</plugin><track_index>7</track_index>
				<fsample>2048</fsample><ad_bits>12</ad_bits><signal_gain>1</signal_gain>
				<signal_path>trace.sig</signal_path><track_totalnumber>4</track_totalnumber></signal>`),
			wantErr: ErrMalformedArchive,
		},
		{
			name: "absent required numeric field",
			doc: docWith(`<signal><plugin>LoaderOTComm</plugin><track_index>0</track_index>
				<fsample>2048</fsample><signal_gain>1</signal_gain>
				<signal_path>trace.sig</signal_path><track_totalnumber>1</track_totalnumber></signal>`),
			wantErr: ErrFieldCoercion,
		},
		{
			name: "non-numeric gain",
			doc: docWith(`<signal><plugin>LoaderOTComm</plugin><track_index>0</track_index>
				<fsample>2048</fsample><ad_bits>12</ad_bits><signal_gain>high</signal_gain>
				<signal_path>trace.sig</signal_path><track_totalnumber>1</track_totalnumber></signal>`),
			wantErr: ErrFieldCoercion,
		},
		{
			name: "non-numeric filter cutoff",
			doc: docWith(`<signal><plugin>LoaderOTComm</plugin><track_index>0</track_index>
				<fsample>2048</fsample><ad_bits>12</ad_bits><signal_gain>1</signal_gain>
				<low_pass_filter>none</low_pass_filter>
				<signal_path>trace.sig</signal_path><track_totalnumber>1</track_totalnumber></signal>`),
			wantErr: ErrFieldCoercion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc), Options{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseSampleRateFromFirstChannelOnly(t *testing.T) {
	mismatched := `<signal>
		<plugin>LoaderOTComm</plugin>
		<track_index>1</track_index>
		<fsample>1024</fsample>
		<ad_bits>12</ad_bits>
		<signal_gain>1</signal_gain>
	</signal>`
	doc := docWith(acquiredSignal, mismatched)

	// Default behavior trusts the first channel and ignores the mismatch.
	set, err := Parse(strings.NewReader(doc), Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if set.SampleRate != 2048 {
		t.Errorf("SampleRate = %v, want the first channel's 2048", set.SampleRate)
	}

	// Strict mode rejects the archive.
	_, err = Parse(strings.NewReader(doc), Options{StrictSampleRate: true})
	if !errors.Is(err, ErrMalformedArchive) {
		t.Errorf("strict Parse error = %v, want ErrMalformedArchive", err)
	}
}
