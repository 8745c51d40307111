// Package metrics reads the Go runtime's view of the process.
package metrics

import "runtime"

// Process is a point-in-time reading of the process's memory and scheduler
// state.
type Process struct {
	HeapAllocBytes uint64 `json:"heap_alloc_bytes"`
	SysBytes       uint64 `json:"sys_bytes"`
	NumGC          uint32 `json:"num_gc"`
	Goroutines     int    `json:"goroutines"`
}

// ReadProcess snapshots runtime.MemStats. It stops the world briefly, so
// callers should not invoke it on every request of a hot path.
func ReadProcess() Process {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return Process{
		HeapAllocBytes: m.HeapAlloc,
		SysBytes:       m.Sys,
		NumGC:          m.NumGC,
		Goroutines:     runtime.NumGoroutine(),
	}
}

// HeapGrowth returns how many heap bytes after holds beyond before, or 0
// when the heap shrank.
func HeapGrowth(before, after Process) uint64 {
	if after.HeapAllocBytes < before.HeapAllocBytes {
		return 0
	}
	return after.HeapAllocBytes - before.HeapAllocBytes
}
