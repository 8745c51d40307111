package tui

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	apperrors "github.com/agbru/fizzfib/internal/errors"
	"github.com/agbru/fizzfib/internal/orchestration"
	"github.com/agbru/fizzfib/internal/progress"
)

func TestTUIProgressReporter_DrainsChannel(t *testing.T) {
	tests := []struct {
		name           string
		numCalculators int
		updates        []progress.ProgressUpdate
	}{
		{"Single", 1, []progress.ProgressUpdate{{Value: 0.25}, {Value: 0.5}, {Value: 1}}},
		{"Multiple", 2, []progress.ProgressUpdate{{CalculatorIndex: 0, Value: 0.5}, {CalculatorIndex: 1, Value: 1}}},
		{"ZeroCalculators", 0, []progress.ProgressUpdate{{Value: 0.5}}},
		{"Empty", 1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reporter := &TUIProgressReporter{ref: &programRef{}}
			ch := make(chan progress.ProgressUpdate, len(tt.updates))
			for _, u := range tt.updates {
				ch <- u
			}
			close(ch)

			var wg sync.WaitGroup
			wg.Add(1)
			go reporter.DisplayProgress(&wg, ch, tt.numCalculators, nil)
			wg.Wait()

			if _, ok := <-ch; ok {
				t.Error("channel was not drained")
			}
		})
	}
}

func TestTUIResultPresenter_NilProgram(t *testing.T) {
	presenter := &TUIResultPresenter{ref: &programRef{}}
	results := []orchestration.CalculationResult{
		{Name: "Fast", Result: big.NewInt(55), Duration: 100 * time.Millisecond},
	}
	presenter.PresentComparisonTable(results, nil)
	presenter.PresentResult(results[0], orchestration.PresentationOptions{N: 10}, nil)
}

func TestTUIResultPresenter_HandleError(t *testing.T) {
	presenter := &TUIResultPresenter{ref: &programRef{}}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"Timeout", context.DeadlineExceeded, apperrors.ExitErrorTimeout},
		{"Canceled", context.Canceled, apperrors.ExitErrorCanceled},
		{"Generic", errors.New("boom"), apperrors.ExitErrorGeneric},
		{"Nil", nil, apperrors.ExitSuccess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := presenter.HandleError(tt.err, time.Second, nil); got != tt.want {
				t.Errorf("HandleError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestProgramRef_Send_Concurrent(t *testing.T) {
	ref := &programRef{}
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ref.Send(ProgressMsg{Value: float64(i) / 100})
		}(i)
	}
	wg.Wait()
}
