package fibonacci

import (
	"fmt"
	"sort"
	"sync"
)

// CalculatorFactory creates and looks up calculators by short name
// ("iterative", "fast", "matrix", ...).
type CalculatorFactory interface {
	// Get returns the calculator registered under name.
	Get(name string) (Calculator, error)
	// List returns the registered names in sorted order.
	List() []string
	// GetAll returns every registered calculator keyed by name.
	GetAll() map[string]Calculator
	// Register adds a calculator under name. Names are unique.
	Register(name string, calc Calculator) error
}

// DefaultAlgorithm is the calculator used when none is selected.
// It is the linear loop that Compute implements.
const DefaultAlgorithm = "iterative"

// builtinCores lists the algorithms every DefaultFactory starts with.
// Build-tagged files may add entries from init.
var builtinCores = map[string]func() coreCalculator{
	"iterative": func() coreCalculator { return IterativeAddition{} },
	"fast":      func() coreCalculator { return OptimizedFastDoubling{} },
	"matrix":    func() coreCalculator { return MatrixExponentiation{} },
}

// DefaultFactory is the thread-safe CalculatorFactory used by the binary.
type DefaultFactory struct {
	mu          sync.RWMutex
	calculators map[string]Calculator
}

// NewDefaultFactory returns a factory holding the built-in algorithms.
func NewDefaultFactory() *DefaultFactory {
	f := &DefaultFactory{calculators: make(map[string]Calculator, len(builtinCores))}
	for name, mk := range builtinCores {
		f.calculators[name] = NewCalculator(mk())
	}
	return f
}

// Get implements CalculatorFactory.
func (f *DefaultFactory) Get(name string) (Calculator, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	calc, ok := f.calculators[name]
	if !ok {
		return nil, fmt.Errorf("unknown algorithm %q (available: %v)", name, f.listLocked())
	}
	return calc, nil
}

// List implements CalculatorFactory.
func (f *DefaultFactory) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.listLocked()
}

func (f *DefaultFactory) listLocked() []string {
	names := make([]string, 0, len(f.calculators))
	for name := range f.calculators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetAll implements CalculatorFactory. The returned map is a copy.
func (f *DefaultFactory) GetAll() map[string]Calculator {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]Calculator, len(f.calculators))
	for k, v := range f.calculators {
		out[k] = v
	}
	return out
}

// Register implements CalculatorFactory.
func (f *DefaultFactory) Register(name string, calc Calculator) error {
	if name == "" || name == "all" {
		return fmt.Errorf("invalid algorithm name %q", name)
	}
	if calc == nil {
		return fmt.Errorf("nil calculator for %q", name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.calculators[name]; exists {
		return fmt.Errorf("algorithm %q already registered", name)
	}
	f.calculators[name] = calc
	return nil
}

var (
	globalFactory     *DefaultFactory
	globalFactoryOnce sync.Once
)

// GlobalFactory returns a process-wide factory, created on first use.
func GlobalFactory() *DefaultFactory {
	globalFactoryOnce.Do(func() {
		globalFactory = NewDefaultFactory()
	})
	return globalFactory
}

var _ CalculatorFactory = (*DefaultFactory)(nil)
