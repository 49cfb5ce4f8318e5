package matrix

import (
	"errors"
	"fmt"
)

var (
	// ErrAllocation is returned when matrix storage cannot be obtained.
	ErrAllocation = errors.New("matrix allocation failed")
	// ErrInvalidDim is returned for negative or overflowing dimensions.
	ErrInvalidDim = errors.New("invalid matrix dimension")

	errDataMismatch = fmt.Errorf("%w: data length mismatch", ErrInvalidDim)
)

// AllocError records which allocation failed and why.
type AllocError struct {
	Rows, Cols int
	Err        error
}

func (e *AllocError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("allocate %dx%d matrix: %v", e.Rows, e.Cols, ErrAllocation)
	}
	return fmt.Sprintf("allocate %dx%d matrix: %v: %v", e.Rows, e.Cols, ErrAllocation, e.Err)
}

func (e *AllocError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrAllocation}
	}
	return []error{ErrAllocation, e.Err}
}

func checkDims(rows, cols int) error {
	if rows < 0 || cols < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDim, rows, cols)
	}
	want := rows * cols
	if rows != 0 && want/rows != cols {
		return fmt.Errorf("%w: %dx%d overflows", ErrInvalidDim, rows, cols)
	}
	if want > maxElems {
		return fmt.Errorf("%w: %dx%d exceeds addressable size", ErrInvalidDim, rows, cols)
	}
	return nil
}

const maxElems = int(^uint(0)>>1) / ElemSize
