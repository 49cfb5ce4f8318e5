package api

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/matbench/internal/bench"
	"github.com/samcharles93/matbench/internal/kernel"
	"github.com/samcharles93/matbench/internal/logger"
	"github.com/samcharles93/matbench/internal/matrix"
)

// DefaultMaxSize caps the matrix size accepted over HTTP.
const DefaultMaxSize = 4096

// Runner executes one benchmark. bench.Execute is the production runner.
type Runner func(opts bench.Options) (*bench.Report, error)

// ServerConfig holds the defaults applied to incoming run requests.
type ServerConfig struct {
	BlockSize int
	Workers   int
	Allocator string
	MaxSize   int
	Logger    logger.Logger
	Runner    Runner
}

// Server exposes the benchmark over HTTP. Runs execute synchronously and
// one at a time, so timings never overlap with another run's kernels.
type Server struct {
	cfg   ServerConfig
	store *RunStore
	runMu sync.Mutex
}

func NewServer(store *RunStore, cfg ServerConfig) *Server {
	if store == nil {
		store = NewRunStore()
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}
	if cfg.Runner == nil {
		cfg.Runner = bench.Execute
	}
	return &Server{cfg: cfg, store: store}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/v1/kernels", s.handleListKernels)
	e.POST("/v1/runs", s.handleCreateRun)
	e.GET("/v1/runs", s.handleListRuns)
	e.GET("/v1/runs/:id", s.handleGetRun)
	e.DELETE("/v1/runs/:id", s.handleDeleteRun)
}

func (s *Server) handleListKernels(c *echo.Context) error {
	all := kernel.All()
	out := KernelList{Object: "list", Data: make([]KernelInfo, 0, len(all))}
	for _, k := range all {
		out.Data = append(out.Data, KernelInfo{
			Name:      k.Name,
			LoopOrder: k.LoopOrder,
			Parallel:  k.Parallel,
			Tiled:     k.Tiled,
			Partition: k.Partition,
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleCreateRun(c *echo.Context) error {
	req, err := decodeJSON[RunRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	opts, err := s.options(req)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	s.runMu.Lock()
	report, err := s.cfg.Runner(opts)
	s.runMu.Unlock()

	switch {
	case errors.Is(err, matrix.ErrAllocation):
		return writeError(c, http.StatusInsufficientStorage, "allocation_error", err.Error(), "size")
	case errors.Is(err, bench.ErrInvalidInput), errors.Is(err, matrix.ErrInvalidDim), errors.Is(err, kernel.ErrShapeMismatch):
		return writeBadRequest(c, err.Error())
	case err != nil:
		s.cfg.Logger.Error("benchmark run failed", "error", err)
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "")
	}

	if verr := report.Err(); verr != nil {
		s.cfg.Logger.Warn("benchmark run finished with mismatches", "run", report.ID, "error", verr)
	}
	s.store.Put(report)
	return c.JSON(http.StatusOK, report)
}

// options merges a request with the server defaults.
func (s *Server) options(req RunRequest) (bench.Options, error) {
	if req.Size == nil {
		return bench.Options{}, newInvalidRequest("size is required")
	}
	size := *req.Size
	if size < 0 || size > s.cfg.MaxSize {
		return bench.Options{}, newInvalidRequest(fmt.Sprintf("size must be between 0 and %d", s.cfg.MaxSize))
	}
	if req.BlockSize < 0 || req.Workers < 0 {
		return bench.Options{}, newInvalidRequest("block_size and workers must be >= 0")
	}

	opts := bench.Options{
		Size:      size,
		BlockSize: s.cfg.BlockSize,
		Workers:   s.cfg.Workers,
		Logger:    s.cfg.Logger,
	}
	if req.BlockSize > 0 {
		opts.BlockSize = req.BlockSize
	}
	if req.Workers > 0 {
		opts.Workers = req.Workers
	}

	allocName := s.cfg.Allocator
	if req.Allocator != "" {
		allocName = req.Allocator
	}
	alloc, ok := matrix.AllocatorByName(allocName)
	if !ok {
		return bench.Options{}, newInvalidRequest(fmt.Sprintf("unknown allocator %q", allocName))
	}
	opts.Allocator = alloc

	if len(req.Kernels) > 0 {
		ks, err := kernel.Select(req.Kernels)
		if err != nil {
			return bench.Options{}, newInvalidRequest(err.Error())
		}
		opts.Kernels = ks
	}
	return opts, nil
}

func (s *Server) handleListRuns(c *echo.Context) error {
	return c.JSON(http.StatusOK, RunList{Object: "list", Data: s.store.List()})
}

func (s *Server) handleGetRun(c *echo.Context) error {
	id := c.Param("id")
	report, ok := s.store.Get(id)
	if !ok {
		return writeNotFound(c, fmt.Sprintf("run %q not found", id))
	}
	return c.JSON(http.StatusOK, report)
}

func (s *Server) handleDeleteRun(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, fmt.Sprintf("run %q not found", id))
	}
	return c.JSON(http.StatusOK, RunDeleted{ID: id, Object: "run.deleted", Deleted: true})
}
