package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/matbench/internal/version"
)

func main() {
	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(context.Background(), os.Args); err != nil {
		os.Exit(reportError(os.Stderr, err))
	}
}

// reportError prints err and returns the process exit code it maps to.
func reportError(w io.Writer, err error) int {
	_, _ = fmt.Fprintln(w, err)
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return exitFailure
}

const (
	exitFailure  = 1
	exitMismatch = 2
)

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.Command {
	s := &settings{}
	return &cli.Command{
		Name:      "matbench",
		Usage:     "Benchmark int32 matrix multiplication kernels",
		UsageText: "echo 1024 | matbench [flags]\nmatbench run --size 1024 --format json",
		Version:   version.String(),
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     append(benchFlags(s), loggingFlags(s)...),
		Action:    s.runAction,
		// Errors are printed and mapped to exit codes by main.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Commands: []*cli.Command{
			runCmd(s),
			kernelsCmd(),
			summaryCmd(),
			serveCmd(s),
			versionCmd(),
		},
	}
}
