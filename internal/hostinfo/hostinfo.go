// Package hostinfo describes the machine a benchmark ran on.
package hostinfo

import (
	"runtime"
	"sort"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// Host is attached to every benchmark report so timings from different
// machines can be told apart.
type Host struct {
	GoVersion  string   `json:"go_version"`
	GOOS       string   `json:"goos"`
	GOARCH     string   `json:"goarch"`
	NumCPU     int      `json:"num_cpu"`
	GOMAXPROCS int      `json:"gomaxprocs"`
	CacheLine  int      `json:"cache_line_bytes"`
	Features   []string `json:"features,omitempty"`
}

// Detect inspects the running process.
func Detect() Host {
	return Host{
		GoVersion:  runtime.Version(),
		GOOS:       runtime.GOOS,
		GOARCH:     runtime.GOARCH,
		NumCPU:     runtime.NumCPU(),
		GOMAXPROCS: runtime.GOMAXPROCS(0),
		CacheLine:  cacheLineSize(),
		Features:   Features(),
	}
}

// Features lists the SIMD extensions reported by golang.org/x/sys/cpu, in
// sorted order.
func Features() []string {
	flags := map[string]bool{
		"sse4.1":   cpu.X86.HasSSE41,
		"sse4.2":   cpu.X86.HasSSE42,
		"avx":      cpu.X86.HasAVX,
		"avx2":     cpu.X86.HasAVX2,
		"fma":      cpu.X86.HasFMA,
		"avx512f":  cpu.X86.HasAVX512F,
		"avx512bw": cpu.X86.HasAVX512BW,
		"avx512vl": cpu.X86.HasAVX512VL,
		"asimd":    cpu.ARM64.HasASIMD,
		"sve":      cpu.ARM64.HasSVE,
		"asimddp":  cpu.ARM64.HasASIMDDP,
	}
	var out []string
	for name, ok := range flags {
		if ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// cacheLineSize is the padding x/sys/cpu uses to keep hot fields on
// separate lines.
func cacheLineSize() int {
	return int(unsafe.Sizeof(cpu.CacheLinePad{}))
}
