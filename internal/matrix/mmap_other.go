//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package matrix

func mmapAlloc(rows, cols int) (*Matrix, error) {
	return HeapAllocator{}.Alloc(rows, cols)
}
