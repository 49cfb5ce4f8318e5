package bench

import (
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"

	"github.com/samcharles93/matbench/internal/hostinfo"
	"github.com/samcharles93/matbench/internal/matrix"
)

// Report is the outcome of one benchmark run.
type Report struct {
	ID string `json:"id"`
	// Size is the edge N of the square matrices.
	Size int `json:"size"`
	// MemoryMB is the footprint of one N x N matrix in megabytes (1e6).
	MemoryMB  float64       `json:"memory_mb"`
	BlockSize int           `json:"block_size"`
	Workers   int           `json:"workers"`
	Allocator string        `json:"allocator"`
	Host      hostinfo.Host `json:"host"`
	StartedAt time.Time     `json:"started_at"`
	// Duration is the wall time of the whole run in seconds, including
	// verification.
	Duration float64  `json:"duration_seconds"`
	Results  []Result `json:"results"`
}

// Result is the timing and verification outcome of one kernel.
type Result struct {
	Kernel    string           `json:"kernel"`
	Seconds   float64          `json:"seconds"`
	Reference bool             `json:"reference,omitempty"`
	Verified  bool             `json:"verified"`
	Mismatch  *matrix.Mismatch `json:"mismatch,omitempty"`
}

// Result returns the entry for the named kernel.
func (r *Report) Result(name string) (Result, bool) {
	for _, res := range r.Results {
		if res.Kernel == name {
			return res, true
		}
	}
	return Result{}, false
}

// Err returns a *VerificationError naming every kernel that failed
// verification, or nil.
func (r *Report) Err() error {
	var failed []string
	for _, res := range r.Results {
		if !res.Verified {
			failed = append(failed, res.Kernel)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return &VerificationError{Kernels: failed}
}

// WriteText prints the report in the line format consumed by ParseTimings:
//
//	Matrix size: 1024  memory used 4.194304 MB  workers 8
//	MatMul time 3.120044 s
//	MatMul2D mismatch at (0, 5): got 12 want 13
func WriteText(w io.Writer, r *Report) error {
	if _, err := fmt.Fprintf(w, "Matrix size: %d  memory used %f MB  workers %d\n", r.Size, r.MemoryMB, r.Workers); err != nil {
		return err
	}
	for _, res := range r.Results {
		var err error
		if res.Verified {
			_, err = fmt.Fprintf(w, "%s time %f s\n", res.Kernel, res.Seconds)
		} else {
			_, err = fmt.Fprintf(w, "%s mismatch %s\n", res.Kernel, res.Mismatch)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Write dispatches on format: "text" (or empty) or "json".
func Write(w io.Writer, format string, r *Report) error {
	switch format {
	case "", "text":
		return WriteText(w, r)
	case "json":
		return WriteJSON(w, r)
	default:
		return fmt.Errorf("%w: unknown output format %q", ErrInvalidInput, format)
	}
}
