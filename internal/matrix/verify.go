package matrix

import "fmt"

// Mismatch describes the first differing element between two matrices.
type Mismatch struct {
	Row  int   `json:"row"`
	Col  int   `json:"col"`
	Got  int32 `json:"got"`
	Want int32 `json:"want"`
}

func (m Mismatch) String() string {
	return fmt.Sprintf("at (%d, %d): got %d want %d", m.Row, m.Col, m.Got, m.Want)
}

// Equal reports whether a and b have the same shape and identical elements.
// It scans row-major and stops at the first difference.
func Equal(a, b *Matrix) bool {
	if a.Rows != b.Rows || a.Cols != b.Cols {
		return false
	}
	cols := a.Cols
	for i := 0; i < a.Rows; i++ {
		for j := 0; j < cols; j++ {
			if Pos(a.Data, i, j, cols) != Pos(b.Data, i, j, cols) {
				return false
			}
		}
	}
	return true
}

// FirstMismatch returns the first row-major position where got differs from
// want. ok is false when the matrices are identical. Shapes must match.
func FirstMismatch(got, want *Matrix) (Mismatch, bool) {
	if got.Rows != want.Rows || got.Cols != want.Cols {
		panic("matrix: FirstMismatch shape mismatch")
	}
	cols := got.Cols
	for i := 0; i < got.Rows; i++ {
		for j := 0; j < cols; j++ {
			g := Pos(got.Data, i, j, cols)
			w := Pos(want.Data, i, j, cols)
			if g != w {
				return Mismatch{Row: i, Col: j, Got: g, Want: w}, true
			}
		}
	}
	return Mismatch{}, false
}
