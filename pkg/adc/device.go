package adc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/puRe1337/water-level/pkg/ads"
	"go.uber.org/zap"
)

// Device samples an ADS1115 over a Bus.
// The bus handle is owned by the Device and closed with it.
type Device struct {
	bus    Bus
	cfg    ads.Config
	word   [2]byte
	settle time.Duration
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
}

// New creates a Device that converts with cfg on every sample.
// cfg.OS is forced to OSStart so that each write triggers a conversion.
func New(bus Bus, cfg ads.Config, logger *zap.Logger) (*Device, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg.OS = ads.OSStart
	word, err := cfg.Encode()
	if err != nil {
		return nil, fmt.Errorf("could not encode ADS1115 configuration: %w", err)
	}

	dev := &Device{
		bus:    bus,
		cfg:    cfg,
		word:   ads.EncodeWord(word),
		settle: cfg.DataRate.ConversionTime(),
		logger: logger,
	}

	logger.Info("[adc] device configured",
		zap.Stringer("config", cfg),
		zap.String("word", fmt.Sprintf("0x%04x", word)),
		zap.Duration("settle", dev.settle),
	)

	return dev, nil
}

// SampleOnce writes the configuration word, waits for the conversion to
// settle and reads back the result.
func (d *Device) SampleOnce(ctx context.Context) (int16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, &BusError{Op: "write", Reg: ads.RegConfig, Err: fmt.Errorf("device closed")}
	}

	err := d.bus.WriteBlock(ads.RegConfig, d.word[:])
	if err != nil {
		return 0, &BusError{Op: "write", Reg: ads.RegConfig, Err: err}
	}

	timer := time.NewTimer(d.settle)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	var buf [2]byte
	err = d.bus.ReadBlock(ads.RegConversion, buf[:])
	if err != nil {
		return 0, &BusError{Op: "read", Reg: ads.RegConversion, Err: err}
	}

	return ads.DecodeSample(buf), nil
}

// Gain returns the configured gain.
func (d *Device) Gain() ads.Gain {
	return d.cfg.Gain
}

// Close closes the underlying bus.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	return d.bus.Close()
}
