package fibonacci

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/agbru/fizzfib/internal/progress"
)

const f100 = "354224848179261915075"

func TestCompute_KnownValues(t *testing.T) {
	t.Parallel()
	tests := []struct {
		count int
		want  string
	}{
		{-5, "0"},
		{-1, "0"},
		{0, "0"},
		{1, "1"},
		{2, "1"},
		{3, "2"},
		{10, "55"},
		{20, "6765"},
		{50, "12586269025"},
		{92, "7540113804746346429"},
		{93, "12200160415121876738"},
		{94, "19740274219868223167"},
		{100, f100},
	}

	for _, tt := range tests {
		if got := Compute(tt.count).String(); got != tt.want {
			t.Errorf("Compute(%d) = %s, want %s", tt.count, got, tt.want)
		}
	}
}

func TestCompute_Recurrence(t *testing.T) {
	t.Parallel()
	for n := 2; n <= 300; n++ {
		sum := new(big.Int).Add(Compute(n-1), Compute(n-2))
		if Compute(n).Cmp(sum) != 0 {
			t.Fatalf("Compute(%d) != Compute(%d) + Compute(%d)", n, n-1, n-2)
		}
	}
}

func TestCompute_ResultsAreIndependent(t *testing.T) {
	t.Parallel()
	a := Compute(10)
	a.SetInt64(0)
	if Compute(10).Int64() != 55 {
		t.Error("mutating a returned value must not affect later calls")
	}
}

func TestComputeUint64_MatchesCompute(t *testing.T) {
	t.Parallel()
	for n := uint64(0); n <= MaxUint64Index; n++ {
		if got, want := computeUint64(n), Compute(int(n)); new(big.Int).SetUint64(got).Cmp(want) != 0 {
			t.Fatalf("computeUint64(%d) = %d, want %s", n, got, want)
		}
	}
}

func TestCalculators_AgreeWithCompute(t *testing.T) {
	t.Parallel()
	factory := NewDefaultFactory()
	indices := []uint64{0, 1, 2, 10, 93, 94, 100, 127, 128, 1000, 4097}

	for _, name := range factory.List() {
		calc, err := factory.Get(name)
		if err != nil {
			t.Fatal(err)
		}
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			for _, n := range indices {
				got, err := calc.Calculate(context.Background(), nil, 0, n, Options{ParallelThreshold: 256})
				if err != nil {
					t.Fatalf("F(%d): %v", n, err)
				}
				if want := Compute(int(n)); got.Cmp(want) != 0 {
					t.Errorf("F(%d) = %s, want %s", n, got, want)
				}
			}
		})
	}
}

func TestCalculators_ParallelismDisabled(t *testing.T) {
	t.Parallel()
	want := Compute(3000)
	for _, core := range []coreCalculator{OptimizedFastDoubling{}, MatrixExponentiation{}} {
		got, err := core.CalculateCore(context.Background(), func(float64) {}, 3000, Options{ParallelThreshold: -1})
		if err != nil {
			t.Fatal(err)
		}
		if got.Cmp(want) != 0 {
			t.Errorf("%s: F(3000) mismatch with parallelism disabled", core.Name())
		}
	}
}

func TestCalculate_ReportsFinalProgress(t *testing.T) {
	t.Parallel()
	for _, n := range []uint64{10, 50_000} {
		ch := make(chan progress.ProgressUpdate, 256)
		calc := NewCalculator(OptimizedFastDoubling{})
		if _, err := calc.Calculate(context.Background(), ch, 4, n, Options{}); err != nil {
			t.Fatal(err)
		}
		close(ch)

		var last progress.ProgressUpdate
		count := 0
		for u := range ch {
			if u.CalculatorIndex != 4 {
				t.Errorf("update index = %d, want 4", u.CalculatorIndex)
			}
			if u.Value < last.Value {
				t.Errorf("progress went backwards: %v after %v", u.Value, last.Value)
			}
			last = u
			count++
		}
		if count == 0 || last.Value != 1 {
			t.Errorf("n=%d: final progress = %v after %d updates, want 1", n, last.Value, count)
		}
	}
}

func TestCalculate_NilChannel(t *testing.T) {
	t.Parallel()
	got, err := NewCalculator(MatrixExponentiation{}).Calculate(context.Background(), nil, 0, 100, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != f100 {
		t.Errorf("F(100) = %s, want %s", got, f100)
	}
}

func TestCalculate_CanceledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for name, calc := range NewDefaultFactory().GetAll() {
		_, err := calc.Calculate(ctx, nil, 0, 10, Options{})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("%s: err = %v, want context.Canceled", name, err)
		}
	}
}

func TestIterative_StopsOnDeadline(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := NewCalculator(IterativeAddition{}).Calculate(ctx, nil, 0, 1<<40, Options{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}

func TestCalculateWithCallback(t *testing.T) {
	t.Parallel()
	calc := NewCalculator(IterativeAddition{}).(*FibCalculator)

	var mu sync.Mutex
	var values []float64
	got, err := calc.CalculateWithCallback(context.Background(), func(v float64) {
		mu.Lock()
		values = append(values, v)
		mu.Unlock()
	}, 20_000, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got.Cmp(Compute(20_000)) != 0 {
		t.Error("F(20000) mismatch")
	}
	if len(values) < 2 || values[len(values)-1] != 1 {
		t.Errorf("callback values = %v, want several ending in 1", values)
	}

	if _, err := calc.CalculateWithCallback(context.Background(), nil, 200, Options{}); err != nil {
		t.Errorf("nil callback: %v", err)
	}
}

func TestDefaultFactory(t *testing.T) {
	t.Parallel()
	f := NewDefaultFactory()

	names := f.List()
	for _, want := range []string{"fast", "iterative", "matrix"} {
		if _, err := f.Get(want); err != nil {
			t.Errorf("Get(%q): %v", want, err)
		}
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("List() not sorted: %v", names)
		}
	}
	if _, err := f.Get("bogus"); err == nil {
		t.Error("Get(bogus) should fail")
	}
	if _, ok := f.GetAll()[DefaultAlgorithm]; !ok {
		t.Errorf("default algorithm %q missing from GetAll", DefaultAlgorithm)
	}

	custom := NewCalculator(IterativeAddition{})
	if err := f.Register("loop", custom); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := f.Register("loop", custom); err == nil {
		t.Error("duplicate Register should fail")
	}
	for _, bad := range []string{"", "all"} {
		if err := f.Register(bad, custom); err == nil {
			t.Errorf("Register(%q) should fail", bad)
		}
	}
	if err := f.Register("nil", nil); err == nil {
		t.Error("Register(nil calculator) should fail")
	}
	if len(f.List()) != len(names)+1 {
		t.Errorf("List() length = %d, want %d", len(f.List()), len(names)+1)
	}
}

func TestGlobalFactory_Singleton(t *testing.T) {
	t.Parallel()
	if GlobalFactory() != GlobalFactory() {
		t.Error("GlobalFactory should return the same instance")
	}
}

func TestEstimateBits(t *testing.T) {
	t.Parallel()
	for _, n := range []uint64{100, 1000, 10000} {
		actual := uint64(Compute(int(n)).BitLen())
		est := EstimateBits(n)
		if est+2 < actual || est > actual+2 {
			t.Errorf("EstimateBits(%d) = %d, actual %d", n, est, actual)
		}
	}
}

func TestDoublingProgress(t *testing.T) {
	t.Parallel()
	if doublingProgress(0, 0) != 1 {
		t.Error("zero steps should report completion")
	}
	if got := doublingProgress(10, 10); got != 1 {
		t.Errorf("doublingProgress(10, 10) = %v, want 1", got)
	}
	prev := 0.0
	for s := 1; s <= 10; s++ {
		p := doublingProgress(s, 10)
		if p <= prev {
			t.Errorf("doublingProgress not increasing at step %d", s)
		}
		prev = p
	}
}
