package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/matbench/internal/api"
	"github.com/samcharles93/matbench/internal/logger"
	"github.com/samcharles93/matbench/internal/matrix"
)

func serveCmd(s *settings) *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
		maxSize     int
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve benchmark runs over a REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.IntFlag{
				Name:        "max-size",
				Usage:       "largest matrix size accepted per run",
				Value:       api.DefaultMaxSize,
				Destination: &maxSize,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, cfg, err := s.setup(ctx, cmd)
			if err != nil {
				return cli.Exit(err, exitFailure)
			}
			applyServeConfig(cmd, cfg, &addr, &maxSize)
			log := logger.FromContext(ctx)

			if _, ok := matrix.AllocatorByName(s.allocator); !ok {
				return cli.Exit(fmt.Sprintf("unknown allocator %q (want mmap or heap)", s.allocator), exitFailure)
			}

			server := api.NewServer(api.NewRunStore(), api.ServerConfig{
				BlockSize: s.blockSize,
				Workers:   s.workers,
				Allocator: s.allocator,
				MaxSize:   maxSize,
				Logger:    log,
			})
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr, "max_size", maxSize)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
