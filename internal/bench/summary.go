package bench

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"

	"github.com/samcharles93/matbench/internal/kernel"
)

// Timing is one kernel timing line recovered from text output.
type Timing struct {
	Size    int
	Workers int
	Kernel  string
	Seconds float64
}

var (
	headerRe = regexp.MustCompile(`^Matrix size:\s*(\d+)\s+memory used\s+[\d.eE+-]+\s*MB(?:\s+workers\s+(\d+))?`)
	timingRe = regexp.MustCompile(`^(\S+)(?:\s+\([^)]*\))?\s+[Tt]ime\s+([\d.eE+-]+)\s*s\s*$`)
)

// legacyNames maps kernel names printed by older builds of the benchmark.
var legacyNames = map[string]string{
	"matMul":                     "MatMul",
	"MatMulOpenMP":               "MatMulParallel",
	"MatMulCacheOptimizedOpenMP": "MatMulCacheOptimizedParallel",
}

// ParseTimings extracts kernel timings from the concatenated text output of
// one or more runs. Each timing is attributed to the most recent header line.
// Mismatch lines and anything unrecognised are skipped. Output without a
// workers field counts as a single worker.
func ParseTimings(r io.Reader) ([]Timing, error) {
	var (
		out     []Timing
		size    = -1
		workers = 1
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if m := headerRe.FindStringSubmatch(line); m != nil {
			size, _ = strconv.Atoi(m[1])
			workers = 1
			if m[2] != "" {
				workers, _ = strconv.Atoi(m[2])
			}
			continue
		}
		m := timingRe.FindStringSubmatch(line)
		if m == nil || size < 0 {
			continue
		}
		secs, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		name := m[1]
		if canonical, ok := legacyNames[name]; ok {
			name = canonical
		}
		out = append(out, Timing{Size: size, Workers: workers, Kernel: name, Seconds: secs})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read timings: %w", err)
	}
	return out, nil
}

// SummaryRow compares one kernel at one worker count with the baseline.
type SummaryRow struct {
	Kernel     string
	Workers    int
	Seconds    float64
	Speedup    float64
	Efficiency float64
}

// SizeSummary groups the rows for one matrix size.
type SizeSummary struct {
	Size int
	// Baseline is the reference kernel time, zero when no run reported it.
	Baseline float64
	Rows     []SummaryRow
	Best     *SummaryRow
}

// Summarize computes speedup over the reference kernel and parallel
// efficiency (speedup per worker, as a percentage) for every size. Sequential
// kernels count as one worker. When a kernel was timed more than once at the
// same worker count the last timing wins.
func Summarize(ts []Timing) []SizeSummary {
	order := make(map[string]int)
	for i, k := range kernel.All() {
		order[k.Name] = i
	}
	ref := kernel.Reference().Name

	type key struct {
		kernel  string
		workers int
	}
	bySize := make(map[int]map[key]float64)
	baseline := make(map[int]Timing)
	for _, t := range ts {
		if t.Kernel == ref {
			if b, ok := baseline[t.Size]; !ok || t.Workers < b.Workers {
				baseline[t.Size] = t
			}
			continue
		}
		workers := t.Workers
		if k, ok := kernel.Lookup(t.Kernel); ok && !k.Parallel {
			workers = 1
		}
		if bySize[t.Size] == nil {
			bySize[t.Size] = make(map[key]float64)
		}
		bySize[t.Size][key{t.Kernel, workers}] = t.Seconds
	}

	sizes := make([]int, 0, len(bySize)+len(baseline))
	for s := range baseline {
		sizes = append(sizes, s)
	}
	for s := range bySize {
		if _, ok := baseline[s]; !ok {
			sizes = append(sizes, s)
		}
	}
	sort.Ints(sizes)

	out := make([]SizeSummary, 0, len(sizes))
	for _, size := range sizes {
		sum := SizeSummary{Size: size, Baseline: baseline[size].Seconds}
		for k, secs := range bySize[size] {
			row := SummaryRow{Kernel: k.kernel, Workers: k.workers, Seconds: secs}
			if sum.Baseline > 0 && secs > 0 {
				row.Speedup = sum.Baseline / secs
				row.Efficiency = row.Speedup / float64(k.workers) * 100
			}
			sum.Rows = append(sum.Rows, row)
		}
		sort.Slice(sum.Rows, func(i, j int) bool {
			a, b := sum.Rows[i], sum.Rows[j]
			oa, okA := order[a.Kernel]
			ob, okB := order[b.Kernel]
			if !okA {
				oa = len(order)
			}
			if !okB {
				ob = len(order)
			}
			if oa != ob {
				return oa < ob
			}
			if a.Kernel != b.Kernel {
				return a.Kernel < b.Kernel
			}
			return a.Workers < b.Workers
		})
		for i := range sum.Rows {
			if sum.Best == nil || sum.Rows[i].Seconds < sum.Best.Seconds {
				sum.Best = &sum.Rows[i]
			}
		}
		out = append(out, sum)
	}
	return out
}

// WriteSummary prints one table per matrix size.
func WriteSummary(w io.Writer, sums []SizeSummary) error {
	bw := bufio.NewWriter(w)
	for i, s := range sums {
		if i > 0 {
			fmt.Fprintln(bw)
		}
		fmt.Fprintf(bw, "Matrix %dx%d\n", s.Size, s.Size)
		if s.Baseline == 0 {
			fmt.Fprintf(bw, "  no %s baseline found, speedups omitted\n", kernel.Reference().Name)
		} else {
			fmt.Fprintf(bw, "  baseline (%s): %.4f s\n", kernel.Reference().Name, s.Baseline)
		}
		for _, r := range s.Rows {
			fmt.Fprintf(bw, "  %-30s %3d workers %10.4f s  speedup %6.2fx  efficiency %5.1f%%\n",
				r.Kernel, r.Workers, r.Seconds, r.Speedup, r.Efficiency)
		}
		if s.Best != nil && s.Baseline > 0 {
			fmt.Fprintf(bw, "  best: %s with %d workers, %.2fx\n", s.Best.Kernel, s.Best.Workers, s.Best.Speedup)
		}
	}
	return bw.Flush()
}
