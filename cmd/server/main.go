package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"smartstore/internal/app"
	"smartstore/internal/platform/config"
	"smartstore/internal/platform/httpserver"
	"smartstore/internal/platform/logger"
	"smartstore/internal/platform/metrics"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "smartstore: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := app.Build(ctx, cfg, log, reg)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := httpserver.New(cfg.Addr, app.NewRouter(a, log, metrics.New(reg), reg))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.RunWorker(ctx)
	})
	g.Go(func() error {
		log.Info("starting smartstore", "addr", cfg.Addr, "datastore", cfg.Datastore)
		return httpserver.Serve(ctx, srv, cfg.ShutdownTimeout)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("smartstore stopped")
	return nil
}
