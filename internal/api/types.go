package api

import "github.com/samcharles93/matbench/internal/bench"

// RunRequest is the body of POST /v1/runs. Zero values select the server
// defaults.
type RunRequest struct {
	Size      *int     `json:"size"`
	BlockSize int      `json:"block_size,omitempty"`
	Workers   int      `json:"workers,omitempty"`
	Kernels   []string `json:"kernels,omitempty"`
	Allocator string   `json:"allocator,omitempty"`
}

// RunList is the body of GET /v1/runs.
type RunList struct {
	Object string          `json:"object"`
	Data   []*bench.Report `json:"data"`
}

// RunDeleted is the body of DELETE /v1/runs/:id.
type RunDeleted struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

// KernelInfo describes one kernel in GET /v1/kernels.
type KernelInfo struct {
	Name      string `json:"name"`
	LoopOrder string `json:"loop_order"`
	Parallel  bool   `json:"parallel"`
	Tiled     bool   `json:"tiled"`
	Partition string `json:"partition,omitempty"`
}

// KernelList is the body of GET /v1/kernels.
type KernelList struct {
	Object string       `json:"object"`
	Data   []KernelInfo `json:"data"`
}

// ResponseError is the error payload written under the "error" key.
type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param,omitempty"`
}
