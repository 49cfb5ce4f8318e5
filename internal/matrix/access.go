package matrix

// ElemSize is the size in bytes of one matrix element.
const ElemSize = 4

// Offset converts a (row, col) position into a flat row-major index for a
// matrix whose rows are cols elements wide. Every kernel addresses its
// operands through this convention.
func Offset(i, j, cols int) int {
	return i*cols + j
}

// Pos returns the element at (i, j) of a row-major buffer with the given
// row width. The caller guarantees 0 <= i < rows and 0 <= j < cols.
func Pos(data []int32, i, j, cols int) int32 {
	return data[i*cols+j]
}
