//go:build linux || darwin || freebsd || netbsd || openbsd

package matrix

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

func mmapAlloc(rows, cols int) (*Matrix, error) {
	size := rows * cols * ElemSize
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, &AllocError{Rows: rows, Cols: cols, Err: err}
	}
	data := unsafe.Slice((*int32)(unsafe.Pointer(unsafe.SliceData(mem))), rows*cols)
	return &Matrix{
		Rows: rows,
		Cols: cols,
		Data: data,
		release: func() error {
			return unix.Munmap(mem)
		},
	}, nil
}
