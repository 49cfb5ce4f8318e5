// Package kernel implements the dense int32 matrix multiplication strategies
// compared by the benchmark.
//
// Every kernel computes C = A*B for A (n x m) and B (m x p) into C (n x p),
// zeroing C before accumulating. Products use int32 wraparound arithmetic,
// so all kernels are bit-exact with the naive reference regardless of the
// order in which partial sums are added.
package kernel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samcharles93/matbench/internal/matrix"
	"github.com/samcharles93/matbench/internal/parallel"
)

// DefaultBlockSize is the tile edge used by the 2D-tiled kernels.
const DefaultBlockSize = 64

// Config carries the per-call execution parameters.
type Config struct {
	// BlockSize is the tile edge for tiled kernels. Values < 1 select
	// DefaultBlockSize.
	BlockSize int
	// Pool distributes work for parallel kernels. A nil pool runs them on
	// the calling goroutine.
	Pool *parallel.Pool
}

func (c Config) blockSize() int {
	if c.BlockSize < 1 {
		return DefaultBlockSize
	}
	return c.BlockSize
}

// Kernel is one multiplication strategy.
type Kernel struct {
	Name      string
	LoopOrder string
	Parallel  bool
	Tiled     bool
	// Partition names the parallel.Strategy used, empty for sequential
	// kernels.
	Partition string

	fn Func
}

// Func is a kernel body. It runs after shape validation and must zero c
// before accumulating into it.
type Func func(cfg Config, c, a, b *matrix.Matrix)

// New wraps fn as a sequential kernel named name, for experimenting with
// strategies outside the built-in set.
func New(name, loopOrder string, fn Func) Kernel {
	return Kernel{Name: name, LoopOrder: loopOrder, fn: fn}
}

// Multiply validates operand shapes and computes c = a*b.
func (k Kernel) Multiply(cfg Config, c, a, b *matrix.Matrix) error {
	if err := CheckShapes(k.Name, c, a, b); err != nil {
		return err
	}
	k.fn(cfg, c, a, b)
	return nil
}

var kernels = []Kernel{
	{
		Name:      "MatMul",
		LoopOrder: "i-j-k",
		fn:        naive,
	},
	{
		Name:      "MatMulParallel",
		LoopOrder: "(i,j)-k",
		Parallel:  true,
		Partition: parallel.RowBlocked.String(),
		fn:        parallelNaive,
	},
	{
		Name:      "MatMulCacheOptimized",
		LoopOrder: "i-k-j",
		fn:        cacheOrdered,
	},
	{
		Name:      "MatMulCacheOptimizedParallel",
		LoopOrder: "i-k-j",
		Parallel:  true,
		Partition: parallel.RowBlocked.String(),
		fn:        parallelCacheOrdered,
	},
	{
		Name:      "MatMul2D",
		LoopOrder: "tiled i-j-k",
		Parallel:  true,
		Tiled:     true,
		Partition: parallel.Dynamic.String(),
		fn:        tiled,
	},
	{
		Name:      "MatMul2DCache",
		LoopOrder: "tiled i-k-j",
		Parallel:  true,
		Tiled:     true,
		Partition: parallel.Dynamic.String(),
		fn:        tiledCacheOrdered,
	},
}

// All returns every kernel in benchmark order. The first entry is the
// reference kernel.
func All() []Kernel {
	out := make([]Kernel, len(kernels))
	copy(out, kernels)
	return out
}

// Reference returns the naive sequential kernel used as the correctness
// oracle.
func Reference() Kernel {
	return kernels[0]
}

// Lookup finds a kernel by name, ignoring case.
func Lookup(name string) (Kernel, bool) {
	for _, k := range kernels {
		if strings.EqualFold(k.Name, name) {
			return k, true
		}
	}
	return Kernel{}, false
}

// ErrUnknownKernel is returned by Select for names that match no kernel.
var ErrUnknownKernel = errors.New("unknown kernel")

// Select resolves kernel names in order. Blank names are ignored.
func Select(names []string) ([]Kernel, error) {
	out := make([]Kernel, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		k, ok := Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownKernel, name)
		}
		out = append(out, k)
	}
	return out, nil
}
