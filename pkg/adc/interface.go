package adc

import (
	"context"

	"github.com/puRe1337/water-level/pkg/ads"
)

// Sampler defines the interface for ADC samplers (real or mocked).
type Sampler interface {
	// SampleOnce runs one conversion and returns the raw result.
	SampleOnce(ctx context.Context) (int16, error)
	// Gain returns the gain the raw results are scaled with.
	Gain() ads.Gain
	Close() error
}

// Ensure Device implements Sampler.
var _ Sampler = (*Device)(nil)

// Ensure Mock implements Sampler.
var _ Sampler = (*Mock)(nil)
