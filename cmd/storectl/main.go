// Command storectl runs store scripts against the configured datastore.
//
//	storectl internal/script/testdata/store.script
//	cat setup.script | storectl -
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"smartstore/internal/app"
	"smartstore/internal/platform/config"
	"smartstore/internal/platform/logger"
	"smartstore/internal/script"
)

func main() {
	code, err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "storectl: %v\n", err)
	}
	os.Exit(code)
}

// run returns 0 when every command succeeded, 1 when some command failed and
// 2 when the run itself could not proceed.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	fs := flag.NewFlagSet("storectl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	logLevel := fs.String("log-level", "warn", "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return 2, err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2, fmt.Errorf("no script given")
	}

	cfg, err := config.FromEnv()
	if err != nil {
		return 2, err
	}
	log := logger.NewWithWriter(stderr, *logLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := app.Build(ctx, cfg, log, prometheus.NewRegistry())
	if err != nil {
		return 2, err
	}
	defer a.Close()

	workerCtx, stopWorker := context.WithCancel(ctx)
	var g errgroup.Group
	g.Go(func() error { return a.RunWorker(workerCtx) })

	proc := script.NewProcessor(a.Stores, stdout, log)
	failed := 0
	for _, name := range fs.Args() {
		n, err := runScript(ctx, proc, name, stdin, stderr)
		failed += n
		if err != nil {
			stopWorker()
			_ = g.Wait()
			return 2, err
		}
	}

	stopWorker()
	if err := g.Wait(); err != nil {
		return 2, err
	}
	if failed > 0 {
		return 1, fmt.Errorf("%d command(s) failed", failed)
	}
	return 0, nil
}

func runScript(ctx context.Context, proc *script.Processor, name string, stdin io.Reader, stderr io.Writer) (int, error) {
	r := stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return 0, err
		}
		defer f.Close()
		r = f
	}
	failures, err := proc.Run(ctx, name, r)
	for _, f := range failures {
		fmt.Fprintf(stderr, "%s: %v\n", name, f)
	}
	return len(failures), err
}
