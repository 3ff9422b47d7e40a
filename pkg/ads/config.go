package ads

import (
	"encoding/binary"
	"fmt"
)

// Config holds one option per field of the configuration register.
type Config struct {
	OS           OS
	Mux          Mux
	Gain         Gain
	Mode         Mode
	DataRate     DataRate
	CompMode     CompMode
	CompPolarity CompPolarity
	CompLatch    CompLatch
	CompQueue    CompQueue
}

// DefaultConfig returns the configuration used for every conversion:
// single-shot on AIN0/AIN1 at ±4.096V and 128 SPS with the comparator
// disabled (0x8383).
func DefaultConfig() Config {
	return Config{
		OS:           OSStart,
		Mux:          MuxAIN0AIN1,
		Gain:         Gain4_096V,
		Mode:         ModeSingle,
		DataRate:     DR128SPS,
		CompMode:     CompModeTraditional,
		CompPolarity: CompPolActiveLow,
		CompLatch:    CompLatchNone,
		CompQueue:    CompQueueDisable,
	}
}

// Encode ORs the fields into a configuration word.
func (c Config) Encode() (uint16, error) {
	fields := []struct {
		name string
		v    uint16
		mask uint16
	}{
		{"os", uint16(c.OS), MaskOS},
		{"mux", uint16(c.Mux), MaskMux},
		{"gain", uint16(c.Gain), MaskGain},
		{"mode", uint16(c.Mode), MaskMode},
		{"data rate", uint16(c.DataRate), MaskDataRate},
		{"comparator mode", uint16(c.CompMode), MaskCompMode},
		{"comparator polarity", uint16(c.CompPolarity), MaskCompPolarity},
		{"comparator latch", uint16(c.CompLatch), MaskCompLatch},
		{"comparator queue", uint16(c.CompQueue), MaskCompQueue},
	}

	var word uint16
	for _, f := range fields {
		if f.v&^f.mask != 0 {
			return 0, fmt.Errorf("%w: %s=0x%04x (mask=0x%04x)", ErrInvalidField, f.name, f.v, f.mask)
		}
		word |= f.v
	}
	return word, nil
}

// Decode splits a configuration word into its fields.
func Decode(word uint16) Config {
	return Config{
		OS:           OS(word & MaskOS),
		Mux:          Mux(word & MaskMux),
		Gain:         Gain(word & MaskGain),
		Mode:         Mode(word & MaskMode),
		DataRate:     DataRate(word & MaskDataRate),
		CompMode:     CompMode(word & MaskCompMode),
		CompPolarity: CompPolarity(word & MaskCompPolarity),
		CompLatch:    CompLatch(word & MaskCompLatch),
		CompQueue:    CompQueue(word & MaskCompQueue),
	}
}

func (c Config) String() string {
	return fmt.Sprintf("mux=%v gain=%v rate=%v single=%v", c.Mux, c.Gain, c.DataRate, c.Mode == ModeSingle)
}

// EncodeWord returns word as the two big-endian bytes sent over the bus.
func EncodeWord(word uint16) [2]byte {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], word)
	return buf
}

// DecodeWord is the inverse of EncodeWord.
func DecodeWord(buf [2]byte) uint16 {
	return binary.BigEndian.Uint16(buf[:])
}

// DecodeSample interprets the conversion register as a big-endian two's
// complement value.
func DecodeSample(buf [2]byte) int16 {
	return int16(DecodeWord(buf))
}
