package sample

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/puRe1337/water-level/pkg/ads"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToVoltage(t *testing.T) {
	tests := []struct {
		name string
		raw  int16
		gain ads.Gain
		want float64
	}{
		{
			name: "zero",
			raw:  0,
			gain: ads.Gain4_096V,
			want: 0.0,
		},
		{
			name: "positive at 4.096V",
			raw:  10000,
			gain: ads.Gain4_096V,
			want: 1.25,
		},
		{
			name: "negative at 4.096V",
			raw:  -10000,
			gain: ads.Gain4_096V,
			want: -1.25,
		},
		{
			name: "full scale",
			raw:  32767,
			gain: ads.Gain4_096V,
			want: 4.095875,
		},
		{
			name: "negative full scale",
			raw:  -32768,
			gain: ads.Gain4_096V,
			want: -4.096,
		},
		{
			name: "different gain",
			raw:  16000,
			gain: ads.Gain2_048V,
			want: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToVoltage(tt.raw, tt.gain.LSB())
			assert.InDelta(t, tt.want, float64(got), 1e-5, "ToVoltage(%d, %v) = %f, want %f", tt.raw, tt.gain, got, tt.want)
		})
	}
}

func TestNew(t *testing.T) {
	ts := time.Unix(1700000000, 500)

	s := New(10000, ads.Gain4_096V, ts, 500)
	assert.Equal(t, int16(10000), s.Raw)
	assert.InDelta(t, 1.25, float64(s.Voltage), 1e-6)
	assert.Equal(t, uint64(1700000000), s.Timestamp)
	assert.Equal(t, int32(500), s.Threshold)
	assert.True(t, s.Exceeds())
}

func TestExceeds(t *testing.T) {
	tests := []struct {
		raw       int16
		threshold int32
		want      bool
	}{
		{100, 99, true},
		{100, 100, false},
		{100, 101, false},
		{-5, -10, true},
		{32767, 32767, false},
		{-32768, -40000, true},
	}

	for _, tt := range tests {
		s := Sample{Raw: tt.raw, Threshold: tt.threshold}
		assert.Equal(t, tt.want, s.Exceeds(), "raw=%d threshold=%d", tt.raw, tt.threshold)
	}
}

func TestSample_JSON(t *testing.T) {
	s := Sample{Raw: -1, Voltage: 0.5, Timestamp: 42, Threshold: 7}

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"raw_value":-1,"voltage":0.5,"timestamp":42,"threshold":7}`, string(data))
}

func TestNew_PreEpoch(t *testing.T) {
	s := New(1, ads.Gain4_096V, time.Unix(-10, 0), 0)
	assert.Equal(t, uint64(0), s.Timestamp)
}
