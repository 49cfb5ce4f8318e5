package bench

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput is returned for a missing, malformed or negative
	// matrix size.
	ErrInvalidInput = errors.New("invalid input")
	// ErrVerification is returned when a kernel's output differs from the
	// reference result.
	ErrVerification = errors.New("verification failed")
)

// VerificationError lists the kernels whose output did not match.
type VerificationError struct {
	Kernels []string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrVerification, strings.Join(e.Kernels, ", "))
}

func (e *VerificationError) Unwrap() error {
	return ErrVerification
}
