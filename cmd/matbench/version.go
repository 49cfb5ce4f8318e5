package main

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/matbench/internal/hostinfo"
	"github.com/samcharles93/matbench/internal/version"
)

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version and host information",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			w := cmd.Root().Writer
			info := version.Resolve()
			host := hostinfo.Detect()
			if cmd.String("format") == "json" {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					version.Info
					Host hostinfo.Host `json:"host"`
				}{info, host})
			}
			fmt.Fprintf(w, "version:    %s\n", info.Version)
			if info.Commit != "" {
				fmt.Fprintf(w, "commit:     %s\n", info.Commit)
			}
			if info.BuildTime != "" {
				fmt.Fprintf(w, "build time: %s\n", info.BuildTime)
			}
			fmt.Fprintf(w, "go:         %s %s/%s\n", info.GoVersion, host.GOOS, host.GOARCH)
			fmt.Fprintf(w, "cpus:       %d (GOMAXPROCS %d)\n", host.NumCPU, host.GOMAXPROCS)
			if len(host.Features) > 0 {
				fmt.Fprintf(w, "features:   %v\n", host.Features)
			}
			return nil
		},
	}
}
