// Command waterlevel samples an ADS1115 over I2C, streams the readings to
// web clients and sends an alert when the level crosses a threshold.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/puRe1337/water-level/pkg/adc"
	"github.com/puRe1337/water-level/pkg/ads"
	"github.com/puRe1337/water-level/pkg/alert"
	"github.com/puRe1337/water-level/pkg/broadcast"
	"github.com/puRe1337/water-level/pkg/config"
	"github.com/puRe1337/water-level/pkg/monitor"
	"github.com/puRe1337/water-level/pkg/threshold"
	"github.com/puRe1337/water-level/pkg/web"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use a simulated ADC instead of the I2C device")
		addrFlag   = flag.String("addr", "", "HTTP listen address override (e.g. :3000)")
		debugFlag  = flag.Bool("debug", false, "Enable development logging")
	)
	flag.Parse()

	logger, err := newLogger(*debugFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		logger.Fatal("[main] failed to load configuration", zap.String("file", *configFlag), zap.Error(err))
	}
	if *addrFlag != "" {
		cfg.Web.Addr = *addrFlag
	}
	err = cfg.Validate()
	if err != nil {
		logger.Fatal("[main] invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = run(ctx, cfg, *mockFlag, logger)
	if err != nil {
		logger.Fatal("[main] terminated", zap.Error(err))
	}
	logger.Info("[main] shutdown complete")
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(ctx context.Context, cfg *config.Config, mock bool, logger *zap.Logger) error {
	sampler, err := openSampler(cfg, mock, logger)
	if err != nil {
		return err
	}
	defer sampler.Close()

	notifier, err := alert.FromConfig(cfg.Alert)
	if err != nil {
		return err
	}
	dispatcher := alert.NewDispatcher(notifier, cfg.Alert.Timeout, logger)
	defer dispatcher.Wait()

	th := threshold.New(cfg.Threshold.Default)
	samples := broadcast.New(cfg.Sampling.Backlog)
	defer samples.Close()

	loop := monitor.New(sampler, th, samples, dispatcher, monitor.Options{
		Interval: cfg.Sampling.Interval,
		Cooldown: cfg.Alert.Cooldown,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:              cfg.Web.Addr,
		Handler:           web.New(th, samples, loop.Stats, cfg.Web.StaticDir, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("[main] starting",
		zap.String("addr", cfg.Web.Addr),
		zap.String("alert_backend", cfg.Alert.Backend),
		zap.Int32("threshold", cfg.Threshold.Default),
		zap.Bool("mock", mock),
	)

	grp, ctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		return loop.Run(ctx)
	})
	grp.Go(func() error {
		logger.Info("[web] listening", zap.String("addr", srv.Addr))
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("web: %w", err)
	})
	grp.Go(func() error {
		<-ctx.Done()
		// Event streams only end once their subscription is closed.
		samples.Close()

		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	return grp.Wait()
}

func openSampler(cfg *config.Config, mock bool, logger *zap.Logger) (adc.Sampler, error) {
	dc := cfg.Device

	gain, err := ads.ParseGain(dc.Gain)
	if err != nil {
		return nil, err
	}

	if mock {
		logger.Info("[main] using mock ADC")
		return adc.NewMock(&cfg.Mock, gain), nil
	}

	mux, err := ads.ParseMux(dc.Mux)
	if err != nil {
		return nil, err
	}
	rate, err := ads.ParseDataRate(dc.DataRate)
	if err != nil {
		return nil, err
	}

	acfg := ads.DefaultConfig()
	acfg.Mux = mux
	acfg.Gain = gain
	acfg.DataRate = rate

	bus, err := adc.OpenSMBus(dc.Bus, dc.Address)
	if err != nil {
		return nil, err
	}

	dev, err := adc.New(bus, acfg, logger)
	if err != nil {
		bus.Close()
		return nil, err
	}
	return dev, nil
}
