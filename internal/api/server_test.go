package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/matbench/internal/bench"
	"github.com/samcharles93/matbench/internal/matrix"
)

func newTestEcho(cfg ServerConfig) *echo.Echo {
	server := NewServer(NewRunStore(), cfg)
	e := echo.New()
	server.Register(e)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRunLifecycle(t *testing.T) {
	t.Parallel()

	e := newTestEcho(ServerConfig{Workers: 2})
	createRec := doJSON(t, e, http.MethodPost, "/v1/runs", `{"size":5,"block_size":2,"allocator":"heap"}`)
	if createRec.Code != http.StatusOK {
		t.Fatalf("create status: got %d body=%s", createRec.Code, createRec.Body.String())
	}

	var created bench.Report
	if err := json.Unmarshal(createRec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected run id")
	}
	if created.Size != 5 || created.BlockSize != 2 || created.Workers != 2 || created.Allocator != "heap" {
		t.Fatalf("request options not applied: %+v", created)
	}
	if len(created.Results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(created.Results))
	}
	for _, res := range created.Results {
		if !res.Verified {
			t.Fatalf("kernel %s not verified", res.Kernel)
		}
	}

	getRec := doJSON(t, e, http.MethodGet, "/v1/runs/"+created.ID, "")
	if getRec.Code != http.StatusOK {
		t.Fatalf("get status: got %d body=%s", getRec.Code, getRec.Body.String())
	}

	listRec := doJSON(t, e, http.MethodGet, "/v1/runs", "")
	var list RunList
	if err := json.Unmarshal(listRec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Data) != 1 || list.Data[0].ID != created.ID {
		t.Fatalf("unexpected run list: %+v", list)
	}

	delRec := doJSON(t, e, http.MethodDelete, "/v1/runs/"+created.ID, "")
	if delRec.Code != http.StatusOK {
		t.Fatalf("delete status: got %d body=%s", delRec.Code, delRec.Body.String())
	}
	if !strings.Contains(delRec.Body.String(), `"deleted":true`) {
		t.Fatalf("delete response missing deleted=true: %s", delRec.Body.String())
	}

	getDeletedRec := doJSON(t, e, http.MethodGet, "/v1/runs/"+created.ID, "")
	if getDeletedRec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d body=%s", getDeletedRec.Code, getDeletedRec.Body.String())
	}
	if rec := doJSON(t, e, http.MethodDelete, "/v1/runs/"+created.ID, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 deleting twice, got %d", rec.Code)
	}
}

func TestRunKernelSubset(t *testing.T) {
	t.Parallel()

	e := newTestEcho(ServerConfig{})
	rec := doJSON(t, e, http.MethodPost, "/v1/runs", `{"size":4,"kernels":["matmul2dcache"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var report bench.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(report.Results) != 2 || report.Results[0].Kernel != "MatMul" || report.Results[1].Kernel != "MatMul2DCache" {
		t.Fatalf("unexpected results: %+v", report.Results)
	}
}

func TestCreateRunValidationErrors(t *testing.T) {
	t.Parallel()

	e := newTestEcho(ServerConfig{MaxSize: 64})
	tests := []struct {
		body string
		want string
	}{
		{``, "size is required"},
		{`{}`, "size is required"},
		{`{"size":-1}`, "size must be between 0 and 64"},
		{`{"size":65}`, "size must be between 0 and 64"},
		{`{"size":4,"workers":-2}`, "must be >= 0"},
		{`{"size":4,"kernels":["winograd"]}`, "unknown kernel"},
		{`{"size":4,"allocator":"gpu"}`, "unknown allocator"},
		{`{"size":4,"colour":"blue"}`, "invalid JSON body"},
	}
	for _, tc := range tests {
		rec := doJSON(t, e, http.MethodPost, "/v1/runs", tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d body=%s", tc.body, rec.Code, rec.Body.String())
		}
		var body struct {
			Error ResponseError `json:"error"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("body %q: decode error response: %v", tc.body, err)
		}
		if !strings.Contains(body.Error.Message, tc.want) {
			t.Fatalf("body %q: expected %q in message %q", tc.body, tc.want, body.Error.Message)
		}
		if body.Error.Type != "invalid_request_error" {
			t.Fatalf("body %q: unexpected error type %q", tc.body, body.Error.Type)
		}
	}
}

func TestCreateRunAllocationFailure(t *testing.T) {
	t.Parallel()

	e := newTestEcho(ServerConfig{
		Runner: func(opts bench.Options) (*bench.Report, error) {
			return nil, &matrix.AllocError{Rows: opts.Size, Cols: opts.Size, Err: errors.New("enomem")}
		},
	})
	rec := doJSON(t, e, http.MethodPost, "/v1/runs", `{"size":8}`)
	if rec.Code != http.StatusInsufficientStorage {
		t.Fatalf("expected 507, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "allocation_error") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestCreateRunSerialisesRuns(t *testing.T) {
	t.Parallel()

	var active, overlap atomic.Int32
	e := newTestEcho(ServerConfig{
		Runner: func(opts bench.Options) (*bench.Report, error) {
			if active.Add(1) > 1 {
				overlap.Store(1)
			}
			defer active.Add(-1)
			return bench.Execute(opts)
		},
	})

	done := make(chan struct{})
	for range 4 {
		go func() {
			defer func() { done <- struct{}{} }()
			doJSON(t, e, http.MethodPost, "/v1/runs", `{"size":16}`)
		}()
	}
	for range 4 {
		<-done
	}
	if overlap.Load() != 0 {
		t.Fatal("benchmark runs overlapped")
	}
}

func TestListKernels(t *testing.T) {
	t.Parallel()

	e := newTestEcho(ServerConfig{})
	rec := doJSON(t, e, http.MethodGet, "/v1/kernels", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var list KernelList
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Data) != 6 || list.Data[0].Name != "MatMul" {
		t.Fatalf("unexpected kernels: %+v", list.Data)
	}
	if !list.Data[5].Tiled || list.Data[5].Partition != "dynamic" {
		t.Fatalf("unexpected tiled kernel description: %+v", list.Data[5])
	}
}

func TestRunStoreOrder(t *testing.T) {
	t.Parallel()

	s := NewRunStore()
	s.Put(&bench.Report{ID: "a"})
	s.Put(&bench.Report{ID: "b"})
	s.Put(&bench.Report{ID: "c"})
	s.Put(&bench.Report{ID: "a", Size: 9})
	if !s.Delete("b") {
		t.Fatal("expected delete to succeed")
	}
	got := s.List()
	if len(got) != 2 || got[0].ID != "a" || got[0].Size != 9 || got[1].ID != "c" {
		t.Fatalf("unexpected list: %+v", got)
	}
}
