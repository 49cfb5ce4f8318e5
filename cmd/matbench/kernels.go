package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/matbench/internal/api"
	"github.com/samcharles93/matbench/internal/kernel"
)

func kernelsCmd() *cli.Command {
	return &cli.Command{
		Name:  "kernels",
		Usage: "List the available kernels",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			w := cmd.Root().Writer
			if cmd.String("format") == "json" {
				return writeKernelsJSON(w, kernel.All())
			}
			return writeKernels(w, kernel.All())
		},
	}
}

func writeKernels(w io.Writer, ks []kernel.Kernel) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tLOOP ORDER\tPARALLEL\tTILED\tPARTITION")
	for _, k := range ks {
		part := k.Partition
		if part == "" {
			part = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%t\t%t\t%s\n", k.Name, k.LoopOrder, k.Parallel, k.Tiled, part)
	}
	return tw.Flush()
}

func writeKernelsJSON(w io.Writer, ks []kernel.Kernel) error {
	out := make([]api.KernelInfo, 0, len(ks))
	for _, k := range ks {
		out = append(out, api.KernelInfo{
			Name:      k.Name,
			LoopOrder: k.LoopOrder,
			Parallel:  k.Parallel,
			Tiled:     k.Tiled,
			Partition: k.Partition,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
