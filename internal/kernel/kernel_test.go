package kernel

import (
	"errors"
	"fmt"
	"testing"

	"github.com/samcharles93/matbench/internal/matrix"
	"github.com/samcharles93/matbench/internal/parallel"
)

// gemmNaive is an independent triple loop used to check the reference kernel.
func gemmNaive(a, b *matrix.Matrix) *matrix.Matrix {
	c, _ := matrix.New(a.Rows, b.Cols)
	for i := 0; i < a.Rows; i++ {
		for j := 0; j < b.Cols; j++ {
			var sum int32
			for k := 0; k < a.Cols; k++ {
				sum += a.At(i, k) * b.At(k, j)
			}
			c.Set(i, j, sum)
		}
	}
	return c
}

func mustNew(t *testing.T, rows, cols int) *matrix.Matrix {
	t.Helper()
	m, err := matrix.New(rows, cols)
	if err != nil {
		t.Fatalf("matrix.New(%d, %d): %v", rows, cols, err)
	}
	return m
}

func testConfigs(t *testing.T) map[string]Config {
	t.Helper()
	pool := parallel.New(4)
	t.Cleanup(pool.Close)
	return map[string]Config{
		"inline":  {BlockSize: DefaultBlockSize},
		"pool4":   {BlockSize: DefaultBlockSize, Pool: pool},
		"block7":  {BlockSize: 7, Pool: pool},
		"default": {Pool: pool},
	}
}

func TestTwoByTwoScenario(t *testing.T) {
	t.Parallel()

	a := matrix.MustFromRows([][]int32{{1, 2}, {3, 4}})
	b := matrix.MustFromRows([][]int32{{5, 6}, {7, 8}})
	want := matrix.MustFromRows([][]int32{{19, 22}, {43, 50}})

	for cfgName, cfg := range testConfigs(t) {
		for _, k := range All() {
			c := mustNew(t, 2, 2)
			matrix.Fill(c.Data, 99)
			if err := k.Multiply(cfg, c, a, b); err != nil {
				t.Fatalf("%s/%s: %v", cfgName, k.Name, err)
			}
			if !matrix.Equal(c, want) {
				t.Fatalf("%s/%s: got %v want %v", cfgName, k.Name, c.Data, want.Data)
			}
		}
	}
}

func TestSequenceInputsAgreeAcrossKernels(t *testing.T) {
	t.Parallel()

	a := mustNew(t, 3, 3)
	b := mustNew(t, 3, 3)
	matrix.InitSequence(a, 1, 1)
	matrix.InitSequence(b, 2, 1)

	// A = [[1 2 3] [4 5 6] [7 8 9]], B = [[1 3 5] [7 9 11] [13 15 17]]
	want := matrix.MustFromRows([][]int32{
		{54, 66, 78},
		{117, 147, 177},
		{180, 228, 276},
	})

	pool := parallel.New(3)
	defer pool.Close()
	cfg := Config{BlockSize: 2, Pool: pool}

	ref := mustNew(t, 3, 3)
	if err := Reference().Multiply(cfg, ref, a, b); err != nil {
		t.Fatalf("reference: %v", err)
	}
	if !matrix.Equal(ref, want) {
		t.Fatalf("reference: got %v want %v", ref.Data, want.Data)
	}
	for _, k := range All() {
		c := mustNew(t, 3, 3)
		if err := k.Multiply(cfg, c, a, b); err != nil {
			t.Fatalf("%s: %v", k.Name, err)
		}
		if !matrix.Equal(c, ref) {
			t.Fatalf("%s: got %v want %v", k.Name, c.Data, ref.Data)
		}
	}
}

func TestKernelsMatchNaiveOnRandomShapes(t *testing.T) {
	t.Parallel()

	shapes := [][3]int{
		{1, 1, 1},
		{5, 3, 7},
		{17, 9, 4},
		{63, 63, 63},
		{64, 64, 64},
		{65, 65, 65},
		{65, 130, 33},
		{70, 1, 129},
	}
	configs := testConfigs(t)

	for _, s := range shapes {
		n, m, p := s[0], s[1], s[2]
		a := mustNew(t, n, m)
		b := mustNew(t, m, p)
		matrix.FillRand(a, int64(n*1000+m), 1000)
		matrix.FillRand(b, int64(m*1000+p), 1000)
		want := gemmNaive(a, b)

		for cfgName, cfg := range configs {
			for _, k := range All() {
				c := mustNew(t, n, p)
				if err := k.Multiply(cfg, c, a, b); err != nil {
					t.Fatalf("%dx%dx%d %s/%s: %v", n, m, p, cfgName, k.Name, err)
				}
				if mm, bad := matrix.FirstMismatch(c, want); bad {
					t.Fatalf("%dx%dx%d %s/%s: mismatch %v", n, m, p, cfgName, k.Name, mm)
				}
			}
		}
	}
}

func TestWraparoundMatchesReference(t *testing.T) {
	t.Parallel()

	n := 20
	a := mustNew(t, n, n)
	b := mustNew(t, n, n)
	matrix.FillRand(a, 11, 1<<30)
	matrix.FillRand(b, 12, 1<<30)
	want := gemmNaive(a, b)

	pool := parallel.New(4)
	defer pool.Close()
	for _, k := range All() {
		c := mustNew(t, n, n)
		if err := k.Multiply(Config{BlockSize: 8, Pool: pool}, c, a, b); err != nil {
			t.Fatalf("%s: %v", k.Name, err)
		}
		if !matrix.Equal(c, want) {
			t.Fatalf("%s: overflowing products differ from reference", k.Name)
		}
	}
}

func TestZeroDimensions(t *testing.T) {
	t.Parallel()

	pool := parallel.New(2)
	defer pool.Close()
	cfg := Config{Pool: pool}

	shapes := [][3]int{{0, 3, 4}, {3, 0, 4}, {3, 4, 0}, {0, 0, 0}}
	for _, s := range shapes {
		n, m, p := s[0], s[1], s[2]
		for _, k := range All() {
			a := mustNew(t, n, m)
			b := mustNew(t, m, p)
			c := mustNew(t, n, p)
			matrix.Fill(c.Data, 5)
			if err := k.Multiply(cfg, c, a, b); err != nil {
				t.Fatalf("%v %s: %v", s, k.Name, err)
			}
			for i, v := range c.Data {
				if v != 0 {
					t.Fatalf("%v %s: c[%d] = %d, want zero matrix", s, k.Name, i, v)
				}
			}
		}
	}
}

func TestKernelsAreIdempotent(t *testing.T) {
	t.Parallel()

	a := mustNew(t, 65, 65)
	b := mustNew(t, 65, 65)
	matrix.FillRand(a, 3, 50)
	matrix.FillRand(b, 4, 50)

	pool := parallel.New(4)
	defer pool.Close()
	cfg := Config{Pool: pool}

	for _, k := range All() {
		c := mustNew(t, 65, 65)
		if err := k.Multiply(cfg, c, a, b); err != nil {
			t.Fatalf("%s first run: %v", k.Name, err)
		}
		first := append([]int32(nil), c.Data...)
		if err := k.Multiply(cfg, c, a, b); err != nil {
			t.Fatalf("%s second run: %v", k.Name, err)
		}
		for i := range first {
			if first[i] != c.Data[i] {
				t.Fatalf("%s: element %d changed between runs: %d then %d", k.Name, i, first[i], c.Data[i])
			}
		}
	}
}

func TestShapeMismatch(t *testing.T) {
	t.Parallel()

	a := mustNew(t, 2, 3)
	b := mustNew(t, 4, 2)
	c := mustNew(t, 2, 2)

	for _, k := range All() {
		err := k.Multiply(Config{}, c, a, b)
		if !errors.Is(err, ErrShapeMismatch) {
			t.Fatalf("%s: expected ErrShapeMismatch, got %v", k.Name, err)
		}
		var se *ShapeError
		if !errors.As(err, &se) {
			t.Fatalf("%s: expected *ShapeError, got %T", k.Name, err)
		}
		if se.A != (Shape{2, 3}) || se.B != (Shape{4, 2}) || se.C != (Shape{2, 2}) {
			t.Fatalf("%s: unexpected shapes in error: %+v", k.Name, se)
		}
	}

	if err := CheckShapes("x", c, nil, b); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("nil operand: expected ErrShapeMismatch, got %v", err)
	}

	bad := &matrix.Matrix{Rows: 2, Cols: 2, Data: make([]int32, 3)}
	sq := mustNew(t, 2, 2)
	if err := CheckShapes("x", sq, bad, sq); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("short buffer: expected ErrShapeMismatch, got %v", err)
	}
}

func TestLookupAndRegistry(t *testing.T) {
	t.Parallel()

	all := All()
	if len(all) != 6 {
		t.Fatalf("expected 6 kernels, got %d", len(all))
	}
	if all[0].Name != Reference().Name {
		t.Fatalf("reference kernel must be first, got %q", all[0].Name)
	}
	seen := make(map[string]bool)
	for _, k := range all {
		if seen[k.Name] {
			t.Fatalf("duplicate kernel name %q", k.Name)
		}
		seen[k.Name] = true
		got, ok := Lookup(k.Name)
		if !ok || got.Name != k.Name {
			t.Fatalf("Lookup(%q) failed", k.Name)
		}
		if k.Parallel == (k.Partition == "") {
			t.Fatalf("%s: parallel kernels must declare a partition", k.Name)
		}
	}
	if _, ok := Lookup("matmul2dcache"); !ok {
		t.Fatal("Lookup should ignore case")
	}
	if _, ok := Lookup("strassen"); ok {
		t.Fatal("unexpected kernel found")
	}

	all[0].Name = "mutated"
	if Reference().Name != "MatMul" {
		t.Fatal("All must return a copy")
	}
}

func TestTileGridClampsEdges(t *testing.T) {
	t.Parallel()

	g := newTileGrid(65, 130, 64)
	if got := g.count(); got != 2*3 {
		t.Fatalf("tile count: got %d want 6", got)
	}
	covered := make([]int, 65*130)
	for idx := 0; idx < g.count(); idx++ {
		tl := g.at(idx)
		if tl.i1 > 65 || tl.j1 > 130 || tl.i0 >= tl.i1 || tl.j0 >= tl.j1 {
			t.Fatalf("tile %d out of bounds: %+v", idx, tl)
		}
		for i := tl.i0; i < tl.i1; i++ {
			for j := tl.j0; j < tl.j1; j++ {
				covered[i*130+j]++
			}
		}
	}
	for i, n := range covered {
		if n != 1 {
			t.Fatalf("element %d covered %d times", i, n)
		}
	}
}

func BenchmarkKernels(b *testing.B) {
	const n = 256
	a, _ := matrix.New(n, n)
	bm, _ := matrix.New(n, n)
	c, _ := matrix.New(n, n)
	matrix.InitSequence(a, 1, 1)
	matrix.InitSequence(bm, 2, 1)

	pool := parallel.New(0)
	defer pool.Close()
	cfg := Config{Pool: pool}

	for _, k := range All() {
		b.Run(fmt.Sprintf("%s/%d", k.Name, n), func(b *testing.B) {
			for b.Loop() {
				if err := k.Multiply(cfg, c, a, bm); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func TestNewCustomKernel(t *testing.T) {
	t.Parallel()

	k := New("Ones", "none", func(_ Config, c, _, _ *matrix.Matrix) {
		matrix.Fill(c.Data, 1)
	})
	a := mustNew(t, 2, 3)
	b := mustNew(t, 3, 2)
	c := mustNew(t, 2, 2)
	if err := k.Multiply(Config{}, c, a, b); err != nil {
		t.Fatalf("Multiply: %v", err)
	}
	for _, v := range c.Data {
		if v != 1 {
			t.Fatalf("custom kernel body not invoked: %v", c.Data)
		}
	}
	if err := k.Multiply(Config{}, c, b, b); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("custom kernels must validate shapes, got %v", err)
	}
}

func TestSelect(t *testing.T) {
	t.Parallel()

	ks, err := Select([]string{"matmul2d", " MatMulParallel ", ""})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(ks) != 2 || ks[0].Name != "MatMul2D" || ks[1].Name != "MatMulParallel" {
		t.Fatalf("unexpected selection: %+v", ks)
	}
	if _, err := Select([]string{"MatMul", "winograd"}); !errors.Is(err, ErrUnknownKernel) {
		t.Fatalf("expected ErrUnknownKernel, got %v", err)
	}
}
