package matrix

import "math/rand"

// Matrix represents a dense row-major matrix of int32 values.
//
// Rows and Cols are carried next to the buffer rather than inside it. Data
// holds the flattened values and always has length Rows*Cols.
//
// Matrix does not perform any memory safety beyond the checks performed by
// Go's slice types; out-of-range indices will panic.
type Matrix struct {
	Rows, Cols int
	Data       []int32

	release func() error
}

// New allocates a zeroed matrix on the Go heap.
func New(rows, cols int) (*Matrix, error) {
	return HeapAllocator{}.Alloc(rows, cols)
}

// FromData wraps existing row-major data. The data length must equal
// rows*cols.
func FromData(rows, cols int, data []int32) (*Matrix, error) {
	if err := checkDims(rows, cols); err != nil {
		return nil, err
	}
	if len(data) != rows*cols {
		return nil, errDataMismatch
	}
	return &Matrix{Rows: rows, Cols: cols, Data: data}, nil
}

// MustFromRows builds a matrix from nested rows. It panics on ragged input
// and is meant for tests and fixtures.
func MustFromRows(rows [][]int32) *Matrix {
	if len(rows) == 0 {
		return &Matrix{}
	}
	cols := len(rows[0])
	data := make([]int32, 0, len(rows)*cols)
	for _, r := range rows {
		if len(r) != cols {
			panic("matrix: ragged rows")
		}
		data = append(data, r...)
	}
	return &Matrix{Rows: len(rows), Cols: cols, Data: data}
}

// Len returns the number of elements.
func (m *Matrix) Len() int { return m.Rows * m.Cols }

// Bytes returns the memory footprint of the element buffer.
func (m *Matrix) Bytes() int { return m.Len() * ElemSize }

// At returns the element at (i, j).
func (m *Matrix) At(i, j int) int32 {
	return Pos(m.Data, i, j, m.Cols)
}

// Set stores v at (i, j).
func (m *Matrix) Set(i, j int, v int32) {
	m.Data[Offset(i, j, m.Cols)] = v
}

// Row returns a view of the i-th row. Writes through the slice update the
// matrix.
func (m *Matrix) Row(i int) []int32 {
	if i < 0 || i >= m.Rows {
		panic("row index out of range")
	}
	start := Offset(i, 0, m.Cols)
	return m.Data[start : start+m.Cols]
}

// Release returns the buffer to its allocator. The matrix must not be used
// afterwards. Calling Release more than once is safe.
func (m *Matrix) Release() error {
	if m == nil {
		return nil
	}
	rel := m.release
	m.release = nil
	m.Data = nil
	if rel == nil {
		return nil
	}
	return rel()
}

// InitSequence fills m with Data[i] = scale*i + offset using int32
// wraparound. The benchmark inputs are InitSequence(a, 1, 1) and
// InitSequence(b, 2, 1).
func InitSequence(m *Matrix, scale, offset int32) {
	for i := range m.Data {
		m.Data[i] = scale*int32(i) + offset
	}
}

// FillRand fills the matrix with reproducible pseudo-random values in
// [-limit, limit]. The same seed always yields the same matrix.
func FillRand(m *Matrix, seed int64, limit int32) {
	rng := rand.New(rand.NewSource(seed))
	span := int64(limit)*2 + 1
	for i := range m.Data {
		m.Data[i] = int32(rng.Int63n(span) - int64(limit))
	}
}
