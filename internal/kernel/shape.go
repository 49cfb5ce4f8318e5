package kernel

import (
	"errors"
	"fmt"

	"github.com/samcharles93/matbench/internal/matrix"
)

// ErrShapeMismatch is returned when operands are not conformant.
var ErrShapeMismatch = errors.New("shape mismatch")

// Shape is a rows x cols pair.
type Shape struct {
	Rows, Cols int
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%d", s.Rows, s.Cols)
}

// ShapeError reports non-conformant operands for C = A*B.
type ShapeError struct {
	Op      string
	A, B, C Shape
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %v: A=%v B=%v C=%v", e.Op, ErrShapeMismatch, e.A, e.B, e.C)
}

func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}

func shapeOf(m *matrix.Matrix) Shape {
	return Shape{Rows: m.Rows, Cols: m.Cols}
}

// CheckShapes verifies that a is n x m, b is m x p, c is n x p and that
// every buffer holds exactly rows*cols elements.
func CheckShapes(op string, c, a, b *matrix.Matrix) error {
	if a == nil || b == nil || c == nil {
		return &ShapeError{Op: op}
	}
	ok := a.Cols == b.Rows && c.Rows == a.Rows && c.Cols == b.Cols &&
		len(a.Data) == a.Len() && len(b.Data) == b.Len() && len(c.Data) == c.Len()
	if !ok {
		return &ShapeError{Op: op, A: shapeOf(a), B: shapeOf(b), C: shapeOf(c)}
	}
	return nil
}
