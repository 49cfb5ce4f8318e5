package kernel

import (
	"github.com/samcharles93/matbench/internal/matrix"
	"github.com/samcharles93/matbench/internal/parallel"
)

// parallelNaive collapses the i and j loops into one space of n*p output
// cells and splits it into contiguous chunks. Each cell is a k reduction
// held in registers and written once, so chunks never share an element.
func parallelNaive(cfg Config, c, a, b *matrix.Matrix) {
	m, p := a.Cols, b.Cols
	cells := a.Rows * p

	cfg.Pool.For(cells, parallel.RowBlocked, func(start, end int) {
		for idx := start; idx < end; idx++ {
			i, j := idx/p, idx%p
			c.Data[idx] = dotStrided(a, b, i, j, 0, m)
		}
	})
}

// parallelCacheOrdered runs the i-k-j loop nest with rows of C split across
// workers. Each worker zeroes the rows it owns before accumulating.
func parallelCacheOrdered(cfg Config, c, a, b *matrix.Matrix) {
	cfg.Pool.For(a.Rows, parallel.RowBlocked, func(rs, re int) {
		matrix.FillRows(c, rs, re, 0)
		rowsIKJ(c, a, b, rs, re)
	})
}
