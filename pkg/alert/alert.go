// Package alert delivers threshold notifications to external services.
package alert

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/puRe1337/water-level/pkg/config"
	"go.uber.org/zap"
)

// Notifier delivers one plain-text message.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Nop discards every message.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(context.Context, string) error { return nil }

var (
	_ Notifier = Nop{}
	_ Notifier = (*Ntfy)(nil)
	_ Notifier = (*Mail)(nil)
)

// Message formats the notification sent when raw exceeds threshold.
func Message(threshold int32, raw int16) string {
	return fmt.Sprintf("Water level alert: value %d exceeds threshold %d", raw, threshold)
}

// Dispatcher delivers messages in the background. Delivery is best-effort:
// failures are logged and never reported to the caller.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	logger   *zap.Logger

	wg sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. A non-positive timeout disables the
// per-delivery deadline.
func NewDispatcher(n Notifier, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if n == nil {
		n = Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		notifier: n,
		timeout:  timeout,
		logger:   logger,
	}
}

// Dispatch sends message on its own goroutine and returns immediately.
func (d *Dispatcher) Dispatch(message string) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx := context.Background()
		if d.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d.timeout)
			defer cancel()
		}

		err := d.notifier.Notify(ctx, message)
		if err != nil {
			d.logger.Warn("[alert] could not deliver notification", zap.Error(err), zap.String("message", message))
			return
		}
		d.logger.Info("[alert] notification delivered", zap.String("message", message))
	}()
}

// Wait blocks until all in-flight deliveries have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// FromConfig builds the notifier selected by cfg.Backend.
func FromConfig(cfg config.AlertConfig) (Notifier, error) {
	switch cfg.Backend {
	case config.AlertNone:
		return Nop{}, nil
	case config.AlertNtfy:
		return NewNtfy(cfg.Ntfy.URL, cfg.Ntfy.User, cfg.Ntfy.Password, &http.Client{Timeout: cfg.Timeout}), nil
	case config.AlertMail:
		m := cfg.Mail
		return NewMail(m.Server, m.Port, m.User, m.Password, m.From, m.To), nil
	default:
		return nil, fmt.Errorf("alert: unknown backend %q", cfg.Backend)
	}
}
