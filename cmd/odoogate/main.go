// Command odoogate runs the credential-scoping RPC gateway.
//
// All configuration comes from ODOOGATE_* environment variables; the process
// refuses to start without an encryption key. See the config package for the
// full surface.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"

	"github.com/jonwraymond/odoogate/broker"
	"github.com/jonwraymond/odoogate/config"
	"github.com/jonwraymond/odoogate/health"
	"github.com/jonwraymond/odoogate/observe"
	"github.com/jonwraymond/odoogate/odoorpc"
	"github.com/jonwraymond/odoogate/pool"
	"github.com/jonwraymond/odoogate/server"
	"github.com/jonwraymond/odoogate/token"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "odoogate:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	figure.NewFigure(cfg.ServiceName, "cybermedium", true).Print()

	obs, err := observe.NewObserver(ctx, cfg.Observe())
	if err != nil {
		return fmt.Errorf("observer: %w", err)
	}
	defer shutdownObserver(obs)

	logger := obs.Logger()
	logger.Info(ctx, "starting", observe.Field{Key: "config", Value: cfg.Summary()})

	codec, err := token.NewCodec([]byte(cfg.EncryptionKey))
	if err != nil {
		return fmt.Errorf("token codec: %w", err)
	}

	p := pool.New(cfg.Pool())
	defer p.Close()

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return fmt.Errorf("middleware: %w", err)
	}

	b, err := broker.New(broker.Config{
		Dialer:     odoorpc.NewDialer(cfg.Dialer()),
		Pool:       p,
		Middleware: mw,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("broker: %w", err)
	}

	poolGauges, err := observe.RegisterPoolGauges(obs.Meter(), b.PoolSnapshot)
	if err != nil {
		return fmt.Errorf("pool metrics: %w", err)
	}
	defer func() { _ = poolGauges.Unregister() }()

	agg := health.NewAggregator(health.AggregatorConfig{})
	agg.Register(health.NewPoolChecker(p))
	agg.Register(health.NewCodecChecker(codec))
	agg.Register(health.NewRuntimeChecker(health.RuntimeCheckerConfig{}))

	srv, err := server.New(server.Config{
		Broker:      b,
		Codec:       codec,
		Health:      agg,
		Logger:      logger,
		ServiceName: cfg.ServiceName,
		Version:     cfg.Version,
	})
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "listening", observe.Field{Key: "addr", Value: cfg.ListenAddr})
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "shutting down",
		observe.Field{Key: "grace", Value: cfg.ShutdownGrace.String()})

	graceCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()
	if err := httpSrv.Shutdown(graceCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func shutdownObserver(obs observe.Observer) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = obs.Shutdown(ctx)
}
