// Package ads encodes and decodes the registers of the ADS1115 16-bit
// analog-to-digital converter.
//
// See https://cdn-shop.adafruit.com/datasheets/ads1115.pdf
package ads

import (
	"errors"
	"fmt"
	"time"
)

// DefaultAddress is the I2C address of the ADS1115 with ADDR tied to ground.
const DefaultAddress uint8 = 0x48

// Register addresses.
const (
	RegConversion uint8 = 0x00
	RegConfig     uint8 = 0x01
)

// Field masks of the configuration register.
const (
	MaskOS           uint16 = 0x8000 // bit 15
	MaskMux          uint16 = 0x7000 // bits 14:12
	MaskGain         uint16 = 0x0E00 // bits 11:9
	MaskMode         uint16 = 0x0100 // bit 8
	MaskDataRate     uint16 = 0x00E0 // bits 7:5
	MaskCompMode     uint16 = 0x0010 // bit 4
	MaskCompPolarity uint16 = 0x0008 // bit 3
	MaskCompLatch    uint16 = 0x0004 // bit 2
	MaskCompQueue    uint16 = 0x0003 // bits 1:0
)

// ErrInvalidField is returned when a field value has bits outside its range.
var ErrInvalidField = errors.New("ads: invalid field value")

// OS is the operational status bit. Writing OSStart begins a single-shot
// conversion.
type OS uint16

const (
	OSIdle  OS = 0x0000
	OSStart OS = 0x8000
)

// Mux selects the input pair of a conversion.
type Mux uint16

const (
	MuxAIN0AIN1 Mux = 0x0000 // 000: default
	MuxAIN0AIN3 Mux = 0x1000 // 001
	MuxAIN1AIN3 Mux = 0x2000 // 010
	MuxAIN2AIN3 Mux = 0x3000 // 011
	MuxAIN0GND  Mux = 0x4000 // 100
	MuxAIN1GND  Mux = 0x5000 // 101
	MuxAIN2GND  Mux = 0x6000 // 110
	MuxAIN3GND  Mux = 0x7000 // 111
)

var muxNames = map[Mux]string{
	MuxAIN0AIN1: "ain0_ain1",
	MuxAIN0AIN3: "ain0_ain3",
	MuxAIN1AIN3: "ain1_ain3",
	MuxAIN2AIN3: "ain2_ain3",
	MuxAIN0GND:  "ain0_gnd",
	MuxAIN1GND:  "ain1_gnd",
	MuxAIN2GND:  "ain2_gnd",
	MuxAIN3GND:  "ain3_gnd",
}

func (m Mux) String() string {
	if s, ok := muxNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mux(0x%04x)", uint16(m))
}

// ParseMux returns the multiplexer option with the given name, e.g. "ain0_gnd".
func ParseMux(name string) (Mux, error) {
	for m, s := range muxNames {
		if s == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("ads: unknown input multiplexer %q", name)
}

// Gain selects the full-scale range of the programmable gain amplifier.
type Gain uint16

const (
	Gain6_144V   Gain = 0x0000 // 000: ±6.144V
	Gain4_096V   Gain = 0x0200 // 001: ±4.096V
	Gain2_048V   Gain = 0x0400 // 010: ±2.048V (default)
	Gain1_024V   Gain = 0x0600 // 011: ±1.024V
	Gain0_512V   Gain = 0x0800 // 100: ±0.512V
	Gain0_256V   Gain = 0x0A00 // 101: ±0.256V
	Gain0_256V_2 Gain = 0x0C00 // 110: ±0.256V
	Gain0_256V_3 Gain = 0x0E00 // 111: ±0.256V
)

// FullScale returns the full-scale input range in volts.
func (g Gain) FullScale() float32 {
	switch g {
	case Gain6_144V:
		return 6.144
	case Gain4_096V:
		return 4.096
	case Gain2_048V:
		return 2.048
	case Gain1_024V:
		return 1.024
	case Gain0_512V:
		return 0.512
	case Gain0_256V, Gain0_256V_2, Gain0_256V_3:
		return 0.256
	default:
		return 0
	}
}

// LSB returns the weight of one least-significant bit in volts.
func (g Gain) LSB() float32 {
	return g.FullScale() / 32768
}

func (g Gain) String() string {
	fs := g.FullScale()
	if fs == 0 {
		return fmt.Sprintf("Gain(0x%04x)", uint16(g))
	}
	return fmt.Sprintf("±%.3fV", fs)
}

// ParseGain returns the gain whose full-scale range is volts.
func ParseGain(volts float64) (Gain, error) {
	for _, g := range []Gain{Gain6_144V, Gain4_096V, Gain2_048V, Gain1_024V, Gain0_512V, Gain0_256V} {
		if float32(volts) == g.FullScale() {
			return g, nil
		}
	}
	return 0, fmt.Errorf("ads: no gain with full-scale range %gV", volts)
}

// Mode selects continuous or single-shot conversions.
type Mode uint16

const (
	ModeContinuous Mode = 0x0000
	ModeSingle     Mode = 0x0100 // power-down single-shot (default)
)

// DataRate selects the conversion rate.
type DataRate uint16

const (
	DR8SPS   DataRate = 0x0000
	DR16SPS  DataRate = 0x0020
	DR32SPS  DataRate = 0x0040
	DR64SPS  DataRate = 0x0060
	DR128SPS DataRate = 0x0080 // default
	DR250SPS DataRate = 0x00A0
	DR475SPS DataRate = 0x00C0
	DR860SPS DataRate = 0x00E0
)

var dataRates = []int{8, 16, 32, 64, 128, 250, 475, 860}

// SamplesPerSecond returns the nominal conversion rate.
func (r DataRate) SamplesPerSecond() int {
	idx := int(uint16(r)&MaskDataRate) >> 5
	return dataRates[idx]
}

// ConversionTime returns how long a single-shot conversion takes at this
// rate, rounded up to whole milliseconds.
func (r DataRate) ConversionTime() time.Duration {
	sps := r.SamplesPerSecond()
	ms := (1000 + sps - 1) / sps
	return time.Duration(ms) * time.Millisecond
}

func (r DataRate) String() string {
	return fmt.Sprintf("%dSPS", r.SamplesPerSecond())
}

// ParseDataRate returns the data rate option for sps samples per second.
func ParseDataRate(sps int) (DataRate, error) {
	for i, v := range dataRates {
		if v == sps {
			return DataRate(i << 5), nil
		}
	}
	return 0, fmt.Errorf("ads: unsupported data rate %d SPS", sps)
}

// CompMode selects the comparator mode.
type CompMode uint16

const (
	CompModeTraditional CompMode = 0x0000
	CompModeWindow      CompMode = 0x0010
)

// CompPolarity selects the polarity of the ALERT/RDY pin.
type CompPolarity uint16

const (
	CompPolActiveLow  CompPolarity = 0x0000
	CompPolActiveHigh CompPolarity = 0x0008
)

// CompLatch selects whether the comparator latches.
type CompLatch uint16

const (
	CompLatchNone CompLatch = 0x0000
	CompLatchOn   CompLatch = 0x0004
)

// CompQueue selects after how many conversions the comparator asserts, or
// disables it.
type CompQueue uint16

const (
	CompQueueAssert1 CompQueue = 0x0000
	CompQueueAssert2 CompQueue = 0x0001
	CompQueueAssert4 CompQueue = 0x0002
	CompQueueDisable CompQueue = 0x0003
)
