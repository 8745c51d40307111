// Package sysmon samples host-wide CPU and memory load.
package sysmon

import (
	"context"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Host holds one sample of host load, as percentages in [0, 100].
type Host struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemPercent float64 `json:"mem_percent"`
}

// Sample reads the host load. CPU usage is measured since the previous call
// (interval 0), so the first sample of a process may read 0. Fields whose
// source fails stay zero.
func Sample(ctx context.Context) Host {
	var h Host
	if pcts, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pcts) > 0 {
		h.CPUPercent = clamp(pcts[0])
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil && vm != nil {
		h.MemPercent = clamp(vm.UsedPercent)
	}
	return h
}

func clamp(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
