package adc

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/chewxy/math32"
	"github.com/puRe1337/water-level/pkg/ads"
	"github.com/puRe1337/water-level/pkg/config"
)

// Mock synthesizes samples for hosts without an ADS1115 attached.
//
// Each value is Bias + Amplitude*sin(2πt/Period) + uniform noise in
// [-Noise, +Noise], clamped to the int16 range. With the default config this
// is a uniformly distributed pseudo-random 16-bit value.
type Mock struct {
	cfg  config.MockConfig
	gain ads.Gain

	mu    sync.Mutex
	rnd   *rand.Rand
	start time.Time
	now   func() time.Time
}

// NewMock creates a new mocked sampler. A nil cfg selects the defaults.
func NewMock(cfg *config.MockConfig, gain ads.Gain) *Mock {
	if cfg == nil {
		def := config.Default().Mock
		cfg = &def
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	m := &Mock{
		cfg:  *cfg,
		gain: gain,
		rnd:  rand.New(rand.NewSource(seed)),
		now:  time.Now,
	}
	m.start = m.now()

	return m
}

// SampleOnce returns the next synthetic value.
func (m *Mock) SampleOnce(ctx context.Context) (int16, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	v := float32(m.cfg.Bias)

	if m.cfg.Amplitude != 0 && m.cfg.Period > 0 {
		phase := float32(m.now().Sub(m.start).Seconds() / m.cfg.Period.Seconds())
		v += float32(m.cfg.Amplitude) * math32.Sin(2*math32.Pi*phase)
	}

	if m.cfg.Noise != 0 {
		v += float32(m.cfg.Noise) * (2*m.rnd.Float32() - 1)
	}

	v = math32.Max(v, -32768)
	v = math32.Min(v, 32767)

	return int16(math32.Floor(v + 0.5)), nil
}

// Gain returns the gain the synthetic values are scaled with.
func (m *Mock) Gain() ads.Gain {
	return m.gain
}

// Close is a no-op.
func (m *Mock) Close() error {
	return nil
}
