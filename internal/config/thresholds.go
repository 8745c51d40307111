package config

import "runtime"

// ApplyAdaptiveThresholds fills a zero Threshold with an estimate based on
// the number of CPUs. Explicit values, including negative ones, are kept.
func ApplyAdaptiveThresholds(cfg AppConfig) AppConfig {
	if cfg.Threshold == 0 {
		cfg.Threshold = EstimateOptimalParallelThreshold(runtime.NumCPU())
	}
	return cfg
}

// EstimateOptimalParallelThreshold returns the operand size in bits above
// which splitting multiplications across goroutines pays off on a machine
// with numCPU cores. A single core gets -1, which disables parallelism.
func EstimateOptimalParallelThreshold(numCPU int) int {
	switch {
	case numCPU <= 1:
		return -1
	case numCPU <= 2:
		return 8192
	case numCPU <= 4:
		return 4096
	case numCPU <= 8:
		return 2048
	case numCPU <= 16:
		return 1024
	default:
		return 512
	}
}
