package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/seitarof/gen-derive/internal/cli"
	"github.com/seitarof/gen-derive/internal/generator"
	"github.com/seitarof/gen-derive/internal/parser"
)

var version = "dev"

func main() {
	cfg, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "gen-derive:", err)
		os.Exit(2)
	}
	if cfg.ShowVersion {
		fmt.Println(version)
		return
	}

	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "gen-derive:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	w := generator.NewFileWriter()
	runner := cli.NewRunner(
		parser.New(),
		generator.New(generator.NewGoimportsFormatter(), w),
		generator.NewPlanGenerator(w),
		logger.Named("gen-derive"),
	)
	if err := runner.Run(ctx, cfg); err != nil {
		fields := []zap.Field{zap.Error(err)}
		if hint := errors.FlattenHints(err); hint != "" {
			fields = append(fields, zap.String("hint", hint))
		}
		logger.Error("generation failed", fields...)
		stop()
		_ = logger.Sync()
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	return cfg.Build()
}
