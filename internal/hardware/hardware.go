// Package hardware inspects the host CPU to size benchmark worker sweeps.
package hardware

import (
	"runtime"
	"sort"

	"github.com/klauspost/cpuid/v2"
	"github.com/sirupsen/logrus"
)

// Worker counts swept by the original benchmark.
var baseSweep = []int{1, 2, 4, 8, 10}

type Info struct {
	Brand          string `json:"brand" yaml:"brand"`
	Vendor         string `json:"vendor" yaml:"vendor"`
	PhysicalCores  int    `json:"physical_cores" yaml:"physical_cores"`
	LogicalCores   int    `json:"logical_cores" yaml:"logical_cores"`
	ThreadsPerCore int    `json:"threads_per_core" yaml:"threads_per_core"`
	Hz             int64  `json:"hz" yaml:"hz"`
	AVX2           bool   `json:"avx2" yaml:"avx2"`
	GOMAXPROCS     int    `json:"gomaxprocs" yaml:"gomaxprocs"`
}

// Detect reads CPU information. Fields cpuid cannot determine fall back to
// what the Go runtime reports.
func Detect(logger *logrus.Logger) Info {
	info := Info{
		Brand:          cpuid.CPU.BrandName,
		Vendor:         cpuid.CPU.VendorString,
		PhysicalCores:  cpuid.CPU.PhysicalCores,
		LogicalCores:   cpuid.CPU.LogicalCores,
		ThreadsPerCore: cpuid.CPU.ThreadsPerCore,
		Hz:             cpuid.CPU.Hz,
		AVX2:           cpuid.CPU.Supports(cpuid.AVX2),
		GOMAXPROCS:     runtime.GOMAXPROCS(0),
	}
	info.normalize(runtime.NumCPU())

	if logger != nil {
		logger.Infof("CPU detected: %s, %d physical cores, %d threads",
			info.Brand, info.PhysicalCores, info.LogicalCores)
	}
	return info
}

func (i *Info) normalize(numCPU int) {
	if i.Brand == "" {
		i.Brand = "unknown"
	}
	if i.LogicalCores <= 0 {
		i.LogicalCores = numCPU
	}
	if i.PhysicalCores <= 0 {
		i.PhysicalCores = i.LogicalCores
	}
	if i.ThreadsPerCore <= 0 {
		i.ThreadsPerCore = 1
	}
}

// DefaultWorkers returns the worker counts to sweep on this machine: the
// original sweep capped at twice the logical cores, plus the physical core
// count itself.
func (i Info) DefaultWorkers() []int {
	limit := 2 * i.LogicalCores
	if limit < 1 {
		limit = 1
	}

	seen := make(map[int]bool)
	var out []int
	add := func(n int) {
		if n >= 1 && n <= limit && !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	for _, n := range baseSweep {
		add(n)
	}
	add(i.PhysicalCores)

	sort.Ints(out)
	return out
}
