package matrix

// Allocator hands out matrix storage. Matrices obtained from an Allocator
// must be returned with Release.
type Allocator interface {
	Alloc(rows, cols int) (*Matrix, error)
	Name() string
}

// HeapAllocator allocates matrices on the Go heap.
type HeapAllocator struct{}

func (HeapAllocator) Name() string { return "heap" }

func (HeapAllocator) Alloc(rows, cols int) (*Matrix, error) {
	if err := checkDims(rows, cols); err != nil {
		return nil, err
	}
	return FromData(rows, cols, make([]int32, rows*cols))
}

// MmapAllocator backs matrices with anonymous private mappings where the
// platform supports them, so allocation failure surfaces as an error instead
// of a runtime abort. Other platforms fall back to the heap.
type MmapAllocator struct{}

func (MmapAllocator) Name() string { return "mmap" }

func (MmapAllocator) Alloc(rows, cols int) (*Matrix, error) {
	if err := checkDims(rows, cols); err != nil {
		return nil, err
	}
	if rows*cols == 0 {
		return &Matrix{Rows: rows, Cols: cols, Data: []int32{}}, nil
	}
	return mmapAlloc(rows, cols)
}

// AllocatorByName resolves "mmap" or "heap". The empty string selects mmap.
func AllocatorByName(name string) (Allocator, bool) {
	switch name {
	case "", "mmap":
		return MmapAllocator{}, true
	case "heap":
		return HeapAllocator{}, true
	default:
		return nil, false
	}
}
