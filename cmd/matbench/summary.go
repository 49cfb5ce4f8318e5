package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/matbench/internal/bench"
)

func summaryCmd() *cli.Command {
	return &cli.Command{
		Name:      "summary",
		Usage:     "Summarise saved text reports: speedup and efficiency per kernel",
		UsageText: "matbench summary [report.txt ...]  (reads stdin when no file is given)",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var timings []bench.Timing
			if cmd.Args().Len() == 0 {
				ts, err := bench.ParseTimings(cmd.Root().Reader)
				if err != nil {
					return cli.Exit(err, exitFailure)
				}
				timings = ts
			}
			for _, path := range cmd.Args().Slice() {
				ts, err := parseFile(path)
				if err != nil {
					return cli.Exit(err, exitFailure)
				}
				timings = append(timings, ts...)
			}
			if len(timings) == 0 {
				return cli.Exit("no timing lines found", exitFailure)
			}
			if err := bench.WriteSummary(cmd.Root().Writer, bench.Summarize(timings)); err != nil {
				return cli.Exit(err, exitFailure)
			}
			return nil
		},
	}
}

func parseFile(path string) ([]bench.Timing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	ts, err := bench.ParseTimings(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ts, nil
}
