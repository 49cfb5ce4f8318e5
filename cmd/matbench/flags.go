package main

import (
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/matbench/internal/kernel"
)

// settings holds the values bound to command-line flags.
type settings struct {
	size       int
	blockSize  int
	workers    int
	kernels    []string
	allocator  string
	format     string
	configPath string

	logLevel  string
	logFormat string
	debug     bool
}

func benchFlags(s *settings) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "size",
			Aliases:     []string{"n"},
			Usage:       "matrix dimension N (read from stdin when unset)",
			Destination: &s.size,
		},
		&cli.IntFlag{
			Name:        "block-size",
			Aliases:     []string{"bs"},
			Usage:       "tile edge for the 2D-tiled kernels",
			Value:       kernel.DefaultBlockSize,
			Destination: &s.blockSize,
		},
		&cli.IntFlag{
			Name:        "workers",
			Aliases:     []string{"w"},
			Usage:       "worker goroutines for parallel kernels (0 = GOMAXPROCS)",
			Destination: &s.workers,
		},
		&cli.StringSliceFlag{
			Name:        "kernels",
			Aliases:     []string{"k"},
			Usage:       "kernels to time after the reference (default: all)",
			Destination: &s.kernels,
		},
		&cli.StringFlag{
			Name:        "allocator",
			Usage:       "matrix storage (mmap, heap)",
			Value:       "mmap",
			Destination: &s.allocator,
		},
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       "report format (text, json)",
			Value:       "text",
			Destination: &s.format,
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml",
			Destination: &s.configPath,
		},
	}
}

func loggingFlags(s *settings) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "warn",
			Destination: &s.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &s.logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &s.debug,
		},
	}
}
