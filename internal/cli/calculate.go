package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"

	"github.com/agbru/fizzfib/internal/config"
	"github.com/agbru/fizzfib/internal/fibonacci"
	"github.com/agbru/fizzfib/internal/ui"
)

// PrintExecutionConfig prints the target, the timeout and the host.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Calculating %sF(%d)%s with a timeout of %s%s%s.\n",
		ui.ColorMagenta(), cfg.N, ui.ColorReset(), ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s, %s/%s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(),
		ui.ColorCyan(), runtime.Version(), ui.ColorReset(),
		runtime.GOOS, runtime.GOARCH)
	if features := CPUFeatures(); len(features) > 0 {
		fmt.Fprintf(out, "CPU features: %s%s%s.\n", ui.ColorCyan(), strings.Join(features, ", "), ui.ColorReset())
	}
	threshold := "disabled"
	if cfg.Threshold > 0 {
		threshold = fmt.Sprintf("%d bits", cfg.Threshold)
	}
	fmt.Fprintf(out, "Parallel multiplication threshold: %s%s%s.\n", ui.ColorCyan(), threshold, ui.ColorReset())
}

// CPUFeatures lists the instruction set extensions relevant to big integer
// arithmetic that the host supports.
func CPUFeatures() []string {
	var features []string
	add := func(ok bool, name string) {
		if ok {
			features = append(features, name)
		}
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		add(cpu.X86.HasADX, "ADX")
		add(cpu.X86.HasBMI2, "BMI2")
		add(cpu.X86.HasAVX2, "AVX2")
		add(cpu.X86.HasAVX512F, "AVX-512F")
	case "arm64":
		add(cpu.ARM64.HasASIMD, "ASIMD")
		add(cpu.ARM64.HasSVE, "SVE")
	}
	return features
}

// PrintExecutionMode announces a single run or a comparison.
func PrintExecutionMode(calculators []fibonacci.Calculator, out io.Writer) {
	switch len(calculators) {
	case 0:
		fmt.Fprintf(out, "Execution mode: no algorithm selected.\n")
	case 1:
		fmt.Fprintf(out, "Execution mode: single calculation with the %s%s%s algorithm.\n",
			ui.ColorGreen(), calculators[0].Name(), ui.ColorReset())
	default:
		fmt.Fprintf(out, "Execution mode: parallel comparison of %d algorithms.\n", len(calculators))
	}
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
