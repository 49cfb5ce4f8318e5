package kernel

import (
	"github.com/samcharles93/matbench/internal/matrix"
	"github.com/samcharles93/matbench/internal/parallel"
)

// tile is one block of C: rows [i0, i1) x cols [j0, j1).
type tile struct {
	i0, i1 int
	j0, j1 int
}

// tileGrid maps a flat tile index over the (n/bs) x (p/bs) grid of C to its
// clamped bounds.
type tileGrid struct {
	n, p, bs  int
	tilesWide int
}

func newTileGrid(n, p, bs int) tileGrid {
	return tileGrid{n: n, p: p, bs: bs, tilesWide: (p + bs - 1) / bs}
}

func (g tileGrid) count() int {
	return ((g.n + g.bs - 1) / g.bs) * g.tilesWide
}

func (g tileGrid) at(idx int) tile {
	i0 := (idx / g.tilesWide) * g.bs
	j0 := (idx % g.tilesWide) * g.bs
	return tile{
		i0: i0,
		i1: min(i0+g.bs, g.n),
		j0: j0,
		j1: min(j0+g.bs, g.p),
	}
}

// runTiled distributes the tiles of C dynamically. The worker that claims a
// tile zeroes it and then sweeps the k dimension in blocks, so each element
// of C is written by exactly one worker.
func runTiled(cfg Config, c, a, b *matrix.Matrix, block func(c, a, b *matrix.Matrix, t tile, k0, k1 int)) {
	bs := cfg.blockSize()
	m := a.Cols
	grid := newTileGrid(a.Rows, b.Cols, bs)

	cfg.Pool.For(grid.count(), parallel.Dynamic, func(start, end int) {
		for idx := start; idx < end; idx++ {
			t := grid.at(idx)
			matrix.FillTile(c, t.i0, t.i1, t.j0, t.j1, 0)
			for k0 := 0; k0 < m; k0 += bs {
				block(c, a, b, t, k0, min(k0+bs, m))
			}
		}
	})
}

func tiled(cfg Config, c, a, b *matrix.Matrix) {
	runTiled(cfg, c, a, b, blockIJK)
}

func tiledCacheOrdered(cfg Config, c, a, b *matrix.Matrix) {
	runTiled(cfg, c, a, b, blockIKJ)
}

// blockIJK multiplies one tile in i-j-k order, reducing over k in registers.
func blockIJK(c, a, b *matrix.Matrix, t tile, k0, k1 int) {
	p := b.Cols
	for i := t.i0; i < t.i1; i++ {
		for j := t.j0; j < t.j1; j++ {
			c.Data[matrix.Offset(i, j, p)] += dotStrided(a, b, i, j, k0, k1)
		}
	}
}

// blockIKJ multiplies one tile in i-k-j order over contiguous row segments.
func blockIKJ(c, a, b *matrix.Matrix, t tile, k0, k1 int) {
	m, p := a.Cols, b.Cols
	for i := t.i0; i < t.i1; i++ {
		cOff := matrix.Offset(i, t.j0, p)
		cRow := c.Data[cOff : cOff+t.j1-t.j0]
		for k := k0; k < k1; k++ {
			aik := matrix.Pos(a.Data, i, k, m)
			bOff := matrix.Offset(k, t.j0, p)
			axpy(cRow, b.Data[bOff:bOff+len(cRow)], aik)
		}
	}
}
