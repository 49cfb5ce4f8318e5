package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/matbench/internal/bench"
	"github.com/samcharles93/matbench/internal/kernel"
	"github.com/samcharles93/matbench/internal/logger"
	"github.com/samcharles93/matbench/internal/matrix"
)

func runCmd(s *settings) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Time every kernel on N x N matrices and verify the results",
		UsageText: "matbench run [--size N] [--kernels a,b] [--format text|json]",
		Action:    s.runAction,
	}
}

// setup merges the config file into s and installs the logger in ctx.
func (s *settings) setup(ctx context.Context, cmd *cli.Command) (context.Context, Config, error) {
	cfg, err := LoadConfig(s.configPath)
	if err != nil {
		return ctx, Config{}, err
	}
	applyConfig(cmd, cfg, s)
	log, err := logger.Setup(cmd.Root().ErrWriter, s.logFormat, s.logLevel, s.debug)
	if err != nil {
		return ctx, Config{}, err
	}
	return logger.WithContext(ctx, log), cfg, nil
}

func (s *settings) runAction(ctx context.Context, cmd *cli.Command) error {
	ctx, _, err := s.setup(ctx, cmd)
	if err != nil {
		return cli.Exit(err, exitFailure)
	}
	log := logger.FromContext(ctx)

	opts, err := s.options(cmd)
	if err != nil {
		return cli.Exit(err, exitFailure)
	}
	opts.Logger = log

	log.Debug("starting benchmark",
		"size", opts.Size,
		"block_size", opts.BlockSize,
		"workers", opts.Workers,
		"allocator", opts.Allocator.Name(),
	)
	report, err := bench.Execute(opts)
	if err != nil {
		return cli.Exit(err, exitFailure)
	}
	if err := bench.Write(cmd.Root().Writer, s.format, report); err != nil {
		return cli.Exit(err, exitFailure)
	}
	if err := report.Err(); err != nil {
		return cli.Exit(err, exitMismatch)
	}
	return nil
}

// options resolves the flag values into bench.Options. The matrix size is
// read from the command's input when --size is absent.
func (s *settings) options(cmd *cli.Command) (bench.Options, error) {
	switch s.format {
	case "text", "json":
	default:
		return bench.Options{}, fmt.Errorf("%w: unknown format %q (want text or json)", bench.ErrInvalidInput, s.format)
	}

	alloc, ok := matrix.AllocatorByName(s.allocator)
	if !ok {
		return bench.Options{}, fmt.Errorf("%w: unknown allocator %q (want mmap or heap)", bench.ErrInvalidInput, s.allocator)
	}

	kernels, err := kernel.Select(s.kernels)
	if err != nil {
		if errors.Is(err, kernel.ErrUnknownKernel) {
			return bench.Options{}, fmt.Errorf("%w: %v", bench.ErrInvalidInput, err)
		}
		return bench.Options{}, err
	}

	size := s.size
	if !cmd.IsSet("size") {
		size, err = bench.ReadSize(cmd.Root().Reader)
		if err != nil {
			return bench.Options{}, err
		}
	} else if err := bench.ValidateSize(size); err != nil {
		return bench.Options{}, err
	}

	return bench.Options{
		Size:      size,
		BlockSize: s.blockSize,
		Workers:   s.workers,
		Allocator: alloc,
		Kernels:   kernels,
	}, nil
}
