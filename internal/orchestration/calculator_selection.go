package orchestration

import (
	"github.com/agbru/fizzfib/internal/config"
	"github.com/agbru/fizzfib/internal/fibonacci"
)

// GetCalculatorsToRun resolves an --algo value. "all" yields every
// registered calculator in name order; an unknown name yields nil.
func GetCalculatorsToRun(algo string, factory fibonacci.CalculatorFactory) []fibonacci.Calculator {
	if algo == config.AlgoAll {
		names := factory.List()
		calculators := make([]fibonacci.Calculator, 0, len(names))
		for _, name := range names {
			if calc, err := factory.Get(name); err == nil {
				calculators = append(calculators, calc)
			}
		}
		return calculators
	}
	if calc, err := factory.Get(algo); err == nil {
		return []fibonacci.Calculator{calc}
	}
	return nil
}
