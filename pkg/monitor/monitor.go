// Package monitor runs the acquisition loop: sample, compare against the
// threshold, alert, publish.
package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/puRe1337/water-level/pkg/adc"
	"github.com/puRe1337/water-level/pkg/alert"
	"github.com/puRe1337/water-level/pkg/sample"
	"github.com/puRe1337/water-level/pkg/threshold"
	"go.uber.org/zap"
)

// DefaultInterval is the delay between two sampling cycles.
const DefaultInterval = 100 * time.Millisecond

// Publisher receives every successfully acquired sample.
type Publisher interface {
	Publish(s sample.Sample)
}

// Alerter is notified when a sample exceeds the threshold. Dispatch must not
// block the loop.
type Alerter interface {
	Dispatch(message string)
}

// Stats holds loop counters.
type Stats struct {
	Cycles    uint64    `json:"cycles"`
	Published uint64    `json:"published"`
	BusErrors uint64    `json:"bus_errors"`
	Alerts    uint64    `json:"alerts"`
	LastRaw   int16     `json:"last_raw"`
	LastTime  time.Time `json:"last_time"`
}

// Options configures a Loop. Zero values select the defaults.
type Options struct {
	Interval time.Duration // delay between two cycles
	Cooldown time.Duration // minimum delay between two alerts (0 = alert on every exceeding sample)
	Logger   *zap.Logger
	Now      func() time.Time
}

// Loop drives the sampler at a fixed cadence.
// The sampler is owned by the loop and must not be shared.
type Loop struct {
	sampler   adc.Sampler
	threshold *threshold.Cell
	pub       Publisher
	alerts    Alerter

	interval time.Duration
	cooldown time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu        sync.RWMutex
	stats     Stats
	lastAlert time.Time
	failing   bool
}

// New creates a sampling loop.
func New(s adc.Sampler, th *threshold.Cell, pub Publisher, alerts Alerter, opts Options) *Loop {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Loop{
		sampler:   s,
		threshold: th,
		pub:       pub,
		alerts:    alerts,
		interval:  opts.Interval,
		cooldown:  opts.Cooldown,
		logger:    opts.Logger,
		now:       opts.Now,
	}
}

// Run samples until ctx is done. It only returns when ctx is done; bus
// errors skip a cycle and never stop the loop.
// Cycles start every interval regardless of how long a conversion takes. A
// cycle that overruns the interval delays the next one; missed ticks are not
// replayed.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("[monitor] sampling loop started", zap.Duration("interval", l.interval))

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		l.Step(ctx)

		select {
		case <-ctx.Done():
			l.logger.Info("[monitor] received shutdown signal", zap.Any("stats", l.Stats()))
			return nil
		case <-ticker.C:
		}
	}
}

// Step runs a single cycle and reports whether a sample was published.
func (l *Loop) Step(ctx context.Context) bool {
	raw, err := l.sampler.SampleOnce(ctx)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return false
		}
		l.busError(err)
		return false
	}

	ts := l.now()
	thr := l.threshold.Get()
	s := sample.New(raw, l.sampler.Gain(), ts, thr)

	alerted := s.Exceeds() && l.shouldAlert(ts)
	if alerted {
		l.alerts.Dispatch(alert.Message(thr, raw))
		l.logger.Info("[monitor] threshold exceeded",
			zap.Int16("raw", raw),
			zap.Int32("threshold", thr),
			zap.Float32("voltage", s.Voltage),
		)
	}

	l.pub.Publish(s)

	l.mu.Lock()
	l.stats.Cycles++
	l.stats.Published++
	if alerted {
		l.stats.Alerts++
	}
	l.stats.LastRaw = raw
	l.stats.LastTime = ts
	recovered := l.failing
	l.failing = false
	l.mu.Unlock()

	if recovered {
		l.logger.Info("[monitor] bus recovered", zap.Int16("raw", raw))
	}

	return true
}

// Stats returns a snapshot of the loop counters.
func (l *Loop) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stats
}

// shouldAlert applies the cooldown. It records ts as the last alert time when
// it returns true.
func (l *Loop) shouldAlert(ts time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cooldown > 0 && !l.lastAlert.IsZero() && ts.Sub(l.lastAlert) < l.cooldown {
		return false
	}
	l.lastAlert = ts
	return true
}

// busError records a failed cycle. Only the first failure of a streak is
// logged at warn level.
func (l *Loop) busError(err error) {
	l.mu.Lock()
	l.stats.Cycles++
	l.stats.BusErrors++
	first := !l.failing
	l.failing = true
	l.mu.Unlock()

	if first {
		l.logger.Warn("[monitor] could not sample, skipping cycle", zap.Error(err))
		return
	}
	l.logger.Debug("[monitor] could not sample, skipping cycle", zap.Error(err))
}
