package ads

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Encode(t *testing.T) {
	word, err := DefaultConfig().Encode()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x8383), word)
	assert.Equal(t, [2]byte{0x83, 0x83}, EncodeWord(word))
}

func TestEncode_FieldIndependence(t *testing.T) {
	base := DefaultConfig()
	baseWord, err := base.Encode()
	require.NoError(t, err)

	muxes := []Mux{MuxAIN0AIN1, MuxAIN0AIN3, MuxAIN1AIN3, MuxAIN2AIN3, MuxAIN0GND, MuxAIN1GND, MuxAIN2GND, MuxAIN3GND}
	for i, m := range muxes {
		cfg := base
		cfg.Mux = m
		word, err := cfg.Encode()
		require.NoError(t, err)
		assert.Equal(t, uint16(i), (word&MaskMux)>>12, "mux %v", m)
		assert.Equal(t, baseWord&^MaskMux, word&^MaskMux, "mux %v touched other fields", m)
	}

	gains := []Gain{Gain6_144V, Gain4_096V, Gain2_048V, Gain1_024V, Gain0_512V, Gain0_256V, Gain0_256V_2, Gain0_256V_3}
	for i, g := range gains {
		cfg := base
		cfg.Gain = g
		word, err := cfg.Encode()
		require.NoError(t, err)
		assert.Equal(t, uint16(i), (word&MaskGain)>>9, "gain %v", g)
		assert.Equal(t, baseWord&^MaskGain, word&^MaskGain, "gain %v touched other fields", g)
	}

	rates := []DataRate{DR8SPS, DR16SPS, DR32SPS, DR64SPS, DR128SPS, DR250SPS, DR475SPS, DR860SPS}
	for i, r := range rates {
		cfg := base
		cfg.DataRate = r
		word, err := cfg.Encode()
		require.NoError(t, err)
		assert.Equal(t, uint16(i), (word&MaskDataRate)>>5, "rate %v", r)
		assert.Equal(t, baseWord&^MaskDataRate, word&^MaskDataRate, "rate %v touched other fields", r)
	}
}

func TestEncode_SingleBitFields(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want uint16
	}{
		{"zero", Config{}, 0x0000},
		{"start", Config{OS: OSStart}, 0x8000},
		{"single-shot", Config{Mode: ModeSingle}, 0x0100},
		{"window comparator", Config{CompMode: CompModeWindow}, 0x0010},
		{"active high", Config{CompPolarity: CompPolActiveHigh}, 0x0008},
		{"latching", Config{CompLatch: CompLatchOn}, 0x0004},
		{"assert after 2", Config{CompQueue: CompQueueAssert2}, 0x0001},
		{"assert after 4", Config{CompQueue: CompQueueAssert4}, 0x0002},
		{"queue disabled", Config{CompQueue: CompQueueDisable}, 0x0003},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.Encode()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.cfg, Decode(got))
		})
	}
}

func TestEncode_InvalidField(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"mux outside range", Config{Mux: Mux(0x0200)}},
		{"gain overlapping mode", Config{Gain: Gain(0x0300)}},
		{"rate overlapping comparator", Config{DataRate: DataRate(0x0090)}},
		{"queue overflow", Config{CompQueue: CompQueue(0x0004)}},
		{"os low bits", Config{OS: OS(0x0001)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Encode()
			assert.ErrorIs(t, err, ErrInvalidField)
		})
	}
}

func TestDecodeSample(t *testing.T) {
	tests := []struct {
		in   [2]byte
		want int16
	}{
		{[2]byte{0x00, 0x00}, 0},
		{[2]byte{0x00, 0x01}, 1},
		{[2]byte{0x7F, 0xFF}, 32767},
		{[2]byte{0x80, 0x00}, -32768},
		{[2]byte{0xFF, 0xFF}, -1},
		{[2]byte{0x27, 0x10}, 10000},
		{[2]byte{0xD8, 0xF0}, -10000},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DecodeSample(tt.in), "DecodeSample(% x)", tt.in[:])
	}
}

func TestEncodeWord_BigEndian(t *testing.T) {
	assert.Equal(t, [2]byte{0x12, 0x34}, EncodeWord(0x1234))
	assert.Equal(t, uint16(0x1234), DecodeWord([2]byte{0x12, 0x34}))
}

func TestGain_LSB(t *testing.T) {
	tests := []struct {
		gain Gain
		fs   float32
		lsb  float64
	}{
		{Gain6_144V, 6.144, 0.0001875},
		{Gain4_096V, 4.096, 0.000125},
		{Gain2_048V, 2.048, 0.0000625},
		{Gain1_024V, 1.024, 0.00003125},
		{Gain0_512V, 0.512, 0.000015625},
		{Gain0_256V, 0.256, 0.0000078125},
		{Gain0_256V_2, 0.256, 0.0000078125},
		{Gain0_256V_3, 0.256, 0.0000078125},
	}

	for _, tt := range tests {
		t.Run(tt.gain.String(), func(t *testing.T) {
			assert.Equal(t, tt.fs, tt.gain.FullScale())
			assert.Equal(t, float32(tt.lsb), tt.gain.LSB())
		})
	}
}

func TestDataRate_ConversionTime(t *testing.T) {
	tests := []struct {
		rate DataRate
		sps  int
		want time.Duration
	}{
		{DR8SPS, 8, 125 * time.Millisecond},
		{DR16SPS, 16, 63 * time.Millisecond},
		{DR32SPS, 32, 32 * time.Millisecond},
		{DR64SPS, 64, 16 * time.Millisecond},
		{DR128SPS, 128, 8 * time.Millisecond},
		{DR250SPS, 250, 4 * time.Millisecond},
		{DR475SPS, 475, 3 * time.Millisecond},
		{DR860SPS, 860, 2 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.rate.String(), func(t *testing.T) {
			assert.Equal(t, tt.sps, tt.rate.SamplesPerSecond())
			assert.Equal(t, tt.want, tt.rate.ConversionTime())
		})
	}
}

func TestParse(t *testing.T) {
	m, err := ParseMux("ain2_gnd")
	require.NoError(t, err)
	assert.Equal(t, MuxAIN2GND, m)
	_, err = ParseMux("ain9")
	assert.Error(t, err)

	g, err := ParseGain(4.096)
	require.NoError(t, err)
	assert.Equal(t, Gain4_096V, g)
	_, err = ParseGain(5)
	assert.Error(t, err)

	r, err := ParseDataRate(860)
	require.NoError(t, err)
	assert.Equal(t, DR860SPS, r)
	_, err = ParseDataRate(100)
	assert.Error(t, err)
}
