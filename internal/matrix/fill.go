package matrix

// Fill sets every element of buf to v.
func Fill(buf []int32, v int32) {
	if v == 0 {
		clear(buf)
		return
	}
	for i := range buf {
		buf[i] = v
	}
}

// FillRows sets rows [rs, re) of m to v. Parallel kernels call it from the
// worker that owns those rows, so no barrier is needed before accumulation.
func FillRows(m *Matrix, rs, re int, v int32) {
	if rs >= re {
		return
	}
	Fill(m.Data[Offset(rs, 0, m.Cols):Offset(re, 0, m.Cols)], v)
}

// FillTile sets the sub-block rows [rs, re) x cols [cs, ce) of m to v.
func FillTile(m *Matrix, rs, re, cs, ce int, v int32) {
	if cs >= ce {
		return
	}
	for i := rs; i < re; i++ {
		base := Offset(i, 0, m.Cols)
		Fill(m.Data[base+cs:base+ce], v)
	}
}
