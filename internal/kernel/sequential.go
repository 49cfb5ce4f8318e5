package kernel

import "github.com/samcharles93/matbench/internal/matrix"

// naive is the i-j-k reference: the innermost loop strides down a column
// of B.
func naive(_ Config, c, a, b *matrix.Matrix) {
	n, m, p := a.Rows, a.Cols, b.Cols
	matrix.Fill(c.Data, 0)

	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			off := matrix.Offset(i, j, p)
			for k := 0; k < m; k++ {
				c.Data[off] += matrix.Pos(a.Data, i, k, m) * matrix.Pos(b.Data, k, j, p)
			}
		}
	}
}

// cacheOrdered swaps the two inner loops so both B and C are walked along
// contiguous rows.
func cacheOrdered(_ Config, c, a, b *matrix.Matrix) {
	matrix.Fill(c.Data, 0)
	rowsIKJ(c, a, b, 0, a.Rows)
}

// rowsIKJ accumulates rows [rs, re) of c += a*b in i-k-j order.
func rowsIKJ(c, a, b *matrix.Matrix, rs, re int) {
	m := a.Cols
	for i := rs; i < re; i++ {
		cRow := c.Row(i)
		for k := 0; k < m; k++ {
			axpy(cRow, b.Row(k), matrix.Pos(a.Data, i, k, m))
		}
	}
}

// axpy computes dst += alpha*src over equal-length rows.
func axpy(dst, src []int32, alpha int32) {
	src = src[:len(dst)]
	j := 0
	for ; j+3 < len(dst); j += 4 {
		dst[j+0] += alpha * src[j+0]
		dst[j+1] += alpha * src[j+1]
		dst[j+2] += alpha * src[j+2]
		dst[j+3] += alpha * src[j+3]
	}
	for ; j < len(dst); j++ {
		dst[j] += alpha * src[j]
	}
}

// dotStrided returns sum over k in [k0, k1) of a[i,k]*b[k,j] with four
// independent accumulators. Integer addition wraps, so the grouping does not
// change the result.
func dotStrided(a, b *matrix.Matrix, i, j, k0, k1 int) int32 {
	m, p := a.Cols, b.Cols
	aRow := a.Data[matrix.Offset(i, 0, m):]
	var s0, s1, s2, s3 int32
	k := k0
	for ; k+3 < k1; k += 4 {
		s0 += aRow[k+0] * matrix.Pos(b.Data, k+0, j, p)
		s1 += aRow[k+1] * matrix.Pos(b.Data, k+1, j, p)
		s2 += aRow[k+2] * matrix.Pos(b.Data, k+2, j, p)
		s3 += aRow[k+3] * matrix.Pos(b.Data, k+3, j, p)
	}
	for ; k < k1; k++ {
		s0 += aRow[k] * matrix.Pos(b.Data, k, j, p)
	}
	return s0 + s1 + s2 + s3
}
