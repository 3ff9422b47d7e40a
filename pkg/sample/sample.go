package sample

import (
	"time"

	"github.com/puRe1337/water-level/pkg/ads"
)

// Sample represents a converted measurement with its physical value.
// Samples are immutable values; subscribers each receive their own copy.
type Sample struct {
	Raw       int16   `json:"raw_value"` // conversion register contents
	Voltage   float32 `json:"voltage"`   // input voltage (V)
	Timestamp uint64  `json:"timestamp"` // seconds since the Unix epoch
	Threshold int32   `json:"threshold"` // alert threshold at capture time
}

// New converts a raw conversion result taken with gain at ts.
func New(raw int16, gain ads.Gain, ts time.Time, threshold int32) Sample {
	return Sample{
		Raw:       raw,
		Voltage:   ToVoltage(raw, gain.LSB()),
		Timestamp: unixSeconds(ts),
		Threshold: threshold,
	}
}

// Exceeds reports whether the raw value is strictly above the threshold
// captured with the sample.
func (s Sample) Exceeds() bool {
	return int32(s.Raw) > s.Threshold
}

// ToVoltage converts a raw ADC reading to volts.
func ToVoltage(raw int16, lsb float32) float32 {
	return float32(raw) * lsb
}

func unixSeconds(ts time.Time) uint64 {
	sec := ts.Unix()
	if sec < 0 {
		return 0
	}
	return uint64(sec)
}
