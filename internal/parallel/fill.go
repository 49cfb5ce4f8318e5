package parallel

import "github.com/samcharles93/matbench/internal/matrix"

// Fill sets every element of buf to v using the pool. It returns only after
// the whole buffer has been written, so it must be called outside a For
// body. Kernels zero the regions they own with matrix.FillRows and
// matrix.FillTile instead.
func Fill(p *Pool, buf []int32, v int32) {
	p.For(len(buf), RowBlocked, func(start, end int) {
		matrix.Fill(buf[start:end], v)
	})
}
