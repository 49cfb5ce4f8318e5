// Package bench drives the kernel set: it owns the benchmark matrices, times
// each kernel, checks every result against the reference kernel and builds
// a Report.
package bench

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/samcharles93/matbench/internal/hostinfo"
	"github.com/samcharles93/matbench/internal/kernel"
	"github.com/samcharles93/matbench/internal/logger"
	"github.com/samcharles93/matbench/internal/matrix"
	"github.com/samcharles93/matbench/internal/parallel"
)

// Options configures a Harness.
type Options struct {
	// Size is the edge N of the square benchmark matrices.
	Size int
	// BlockSize is passed to the tiled kernels. Values < 1 select
	// kernel.DefaultBlockSize.
	BlockSize int
	// Workers sizes the worker pool. Values < 1 select GOMAXPROCS.
	Workers int
	// Allocator provides matrix storage. Nil selects matrix.MmapAllocator.
	Allocator matrix.Allocator
	// Kernels to time after the reference. An empty list selects every
	// kernel. The
	// reference kernel always runs first and is skipped here.
	Kernels []kernel.Kernel
	// Logger receives progress records. Nil discards them.
	Logger logger.Logger
}

// Harness owns the four N x N matrices of one benchmark run: inputs A and
// B, the scratch output C and the reference result R. Create it with New and
// release it with Close.
type Harness struct {
	opts    Options
	log     logger.Logger
	pool    *parallel.Pool
	kernels []kernel.Kernel

	a, b, c, r *matrix.Matrix
}

// New allocates and initialises the benchmark matrices: A[i] = i+1 and
// B[i] = 2i+1 in flat row-major order. On error nothing stays allocated.
func New(opts Options) (*Harness, error) {
	if err := ValidateSize(opts.Size); err != nil {
		return nil, err
	}
	if opts.BlockSize < 1 {
		opts.BlockSize = kernel.DefaultBlockSize
	}
	if opts.Allocator == nil {
		opts.Allocator = matrix.MmapAllocator{}
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	h := &Harness{
		opts:    opts,
		log:     log,
		kernels: selectKernels(opts.Kernels),
	}

	n := opts.Size
	for _, slot := range []**matrix.Matrix{&h.a, &h.b, &h.c, &h.r} {
		m, err := opts.Allocator.Alloc(n, n)
		if err != nil {
			_ = h.Close()
			return nil, fmt.Errorf("allocate benchmark matrices: %w", err)
		}
		*slot = m
	}
	matrix.InitSequence(h.a, 1, 1)
	matrix.InitSequence(h.b, 2, 1)

	h.pool = parallel.New(opts.Workers)
	log.Debug("benchmark matrices allocated",
		"size", n,
		"allocator", opts.Allocator.Name(),
		"bytes_per_matrix", h.a.Bytes(),
		"workers", h.pool.Workers())
	return h, nil
}

// selectKernels drops the reference kernel and duplicates from ks. An empty
// selection means every kernel.
func selectKernels(ks []kernel.Kernel) []kernel.Kernel {
	if len(ks) == 0 {
		ks = kernel.All()
	}
	ref := kernel.Reference().Name
	seen := map[string]bool{ref: true}
	out := make([]kernel.Kernel, 0, len(ks))
	for _, k := range ks {
		if seen[k.Name] {
			continue
		}
		seen[k.Name] = true
		out = append(out, k)
	}
	return out
}

// Close stops the worker pool and releases all matrices.
func (h *Harness) Close() error {
	if h.pool != nil {
		h.pool.Close()
		h.pool = nil
	}
	var errs []error
	for _, m := range []*matrix.Matrix{h.a, h.b, h.c, h.r} {
		if m != nil {
			errs = append(errs, m.Release())
		}
	}
	h.a, h.b, h.c, h.r = nil, nil, nil, nil
	return errors.Join(errs...)
}

func (h *Harness) config() kernel.Config {
	return kernel.Config{BlockSize: h.opts.BlockSize, Pool: h.pool}
}

// Run times the reference kernel into R, then each selected kernel into C.
// Kernels run one at a time; timing covers only the kernel call, not the
// verification against R that follows it. A kernel whose output differs is
// recorded as unverified; use Report.Err to turn that into an error.
func (h *Harness) Run() (*Report, error) {
	if h.a == nil {
		return nil, errors.New("bench: harness is closed")
	}
	report := &Report{
		ID:        uuid.NewString(),
		Size:      h.opts.Size,
		MemoryMB:  float64(h.a.Bytes()) / 1e6,
		BlockSize: h.opts.BlockSize,
		Workers:   h.pool.Workers(),
		Allocator: h.opts.Allocator.Name(),
		Host:      hostinfo.Detect(),
		StartedAt: time.Now().UTC(),
	}
	log := h.log.With("run", report.ID)
	cfg := h.config()

	ref := kernel.Reference()
	elapsed, err := timeKernel(ref, cfg, h.r, h.a, h.b)
	if err != nil {
		return nil, err
	}
	report.Results = append(report.Results, Result{
		Kernel:    ref.Name,
		Seconds:   elapsed.Seconds(),
		Reference: true,
		Verified:  true,
	})
	log.Debug("reference done", "kernel", ref.Name, "elapsed", elapsed)

	for _, k := range h.kernels {
		// Kernels must overwrite C, so the previous kernel's result is
		// never left in place for verification.
		parallel.Fill(h.pool, h.c.Data, staleFill)
		elapsed, err := timeKernel(k, cfg, h.c, h.a, h.b)
		if err != nil {
			return nil, err
		}
		res := Result{Kernel: k.Name, Seconds: elapsed.Seconds(), Verified: true}
		if matrix.Equal(h.c, h.r) {
			log.Debug("kernel done", "kernel", k.Name, "elapsed", elapsed)
		} else {
			mm, _ := matrix.FirstMismatch(h.c, h.r)
			res.Verified = false
			res.Mismatch = &mm
			log.Error("kernel output differs from reference",
				"kernel", k.Name, "row", mm.Row, "col", mm.Col, "got", mm.Got, "want", mm.Want)
		}
		report.Results = append(report.Results, res)
	}

	report.Duration = time.Since(report.StartedAt).Seconds()
	log.Info("benchmark complete", "size", report.Size, "kernels", len(report.Results))
	return report, nil
}

// staleFill marks C between kernels (0xDEADBEEF).
const staleFill int32 = -559038737

func timeKernel(k kernel.Kernel, cfg kernel.Config, c, a, b *matrix.Matrix) (time.Duration, error) {
	start := time.Now()
	if err := k.Multiply(cfg, c, a, b); err != nil {
		return 0, fmt.Errorf("run %s: %w", k.Name, err)
	}
	return time.Since(start), nil
}

// Execute allocates a harness, runs it once and releases it.
func Execute(opts Options) (report *Report, err error) {
	h, err := New(opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := h.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("release benchmark matrices: %w", cerr)
		}
	}()
	return h.Run()
}
