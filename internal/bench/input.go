package bench

import (
	"errors"
	"fmt"
	"io"
)

// ReadSize reads the matrix dimension N as a single integer from r.
func ReadSize(r io.Reader) (int, error) {
	var n int
	if _, err := fmt.Fscan(r, &n); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("%w: expected matrix size, got end of input", ErrInvalidInput)
		}
		return 0, fmt.Errorf("%w: read matrix size: %v", ErrInvalidInput, err)
	}
	if err := ValidateSize(n); err != nil {
		return 0, err
	}
	return n, nil
}

// ValidateSize rejects negative sizes.
func ValidateSize(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: matrix size must be >= 0, got %d", ErrInvalidInput, n)
	}
	return nil
}
