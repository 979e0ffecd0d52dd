package sandbox

import (
	"context"
	"errors"
	"fmt"
	"math"
	"quantlab/internal/domain"
	"quantlab/internal/loader"
	"strings"
	"time"
)

type ExecErrCode string

const (
	ExecErr_Timeout          ExecErrCode = "timeout"
	ExecErr_ResourceExceeded ExecErrCode = "resource_exceeded"
	ExecErr_RuntimeFault     ExecErrCode = "runtime_fault"
)

type ExecutionError struct {
	Code   ExecErrCode
	Detail string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution error (%s): %s", e.Code, e.Detail)
}

// Budget caps one invocation. It is fixed per deployment, never taken
// from the request, so a strategy author cannot inflate their own
// allowance.
type Budget struct {
	MaxWallClock time.Duration
	// MaxOutputRecords caps the window length and with it the size of
	// the produced series.
	MaxOutputRecords int
	// MaxEvalsPerPeriod caps environment function calls per period,
	// the closest observable proxy for evaluation memory/work.
	MaxEvalsPerPeriod int
}

func DefaultBudget() Budget {
	return Budget{
		MaxWallClock:      30 * time.Second,
		MaxOutputRecords:  5000,
		MaxEvalsPerPeriod: 500,
	}
}

// PeriodSignal is the declared output of one entry-point evaluation.
// Only these fields participate in the result contract; nothing else
// leaves the isolation boundary.
type PeriodSignal struct {
	Date     time.Time
	Position float64
}

type RawResult struct {
	Signals []PeriodSignal
}

type Sandbox struct{}

func New() *Sandbox {
	return &Sandbox{}
}

// Execute runs the unit's entry point over every period of the window
// under the given budget. The window slice is exclusive to this
// invocation. Every failure mode, including panics raised inside the
// evaluation, comes back as an *ExecutionError; nothing propagates to
// the caller's goroutine.
func (s *Sandbox) Execute(
	ctx context.Context,
	unit *loader.LoadedUnit,
	params domain.ParamBinding,
	window []domain.Candle,
	budget Budget,
) (*RawResult, error) {
	if len(window) == 0 {
		return nil, &ExecutionError{
			Code:   ExecErr_RuntimeFault,
			Detail: "empty data window",
		}
	}
	if budget.MaxOutputRecords > 0 && len(window) > budget.MaxOutputRecords {
		return nil, &ExecutionError{
			Code:   ExecErr_ResourceExceeded,
			Detail: fmt.Sprintf("window of %d periods exceeds output budget of %d", len(window), budget.MaxOutputRecords),
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, budget.MaxWallClock)
	defer cancel()

	type outcome struct {
		result *RawResult
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		result, err := evalWindow(runCtx, ctx, unit, params, window, budget)
		done <- outcome{result, err}
	}()

	select {
	case out := <-done:
		return out.result, out.err
	case <-runCtx.Done():
		// the evaluation goroutine is abandoned; it observes the
		// expired context at its next period boundary and exits.
		// A caller-cancelled context is not a budget violation and
		// propagates as a plain context error.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, &ExecutionError{
			Code:   ExecErr_Timeout,
			Detail: fmt.Sprintf("exceeded wall clock budget of %s", budget.MaxWallClock),
		}
	}
}

func evalWindow(
	ctx context.Context,
	caller context.Context,
	unit *loader.LoadedUnit,
	params domain.ParamBinding,
	window []domain.Candle,
	budget Budget,
) (result *RawResult, execErr error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			execErr = &ExecutionError{
				Code:   ExecErr_RuntimeFault,
				Detail: fmt.Sprintf("strategy panicked: %v", r),
			}
		}
	}()

	signals := make([]PeriodSignal, 0, len(window))
	for i := range window {
		select {
		case <-ctx.Done():
			if err := caller.Err(); err != nil {
				return nil, err
			}
			return nil, &ExecutionError{
				Code:   ExecErr_Timeout,
				Detail: fmt.Sprintf("exceeded wall clock budget of %s", budget.MaxWallClock),
			}
		default:
		}

		tally := 0
		signal, err := unit.EvalPeriod(loader.EnvInput{
			Window:   window,
			Index:    i,
			Params:   params,
			Tally:    &tally,
			MaxCalls: budget.MaxEvalsPerPeriod,
		})
		if err != nil {
			// goval does not always preserve wrapped error chains
			// from expression functions, so match the text too
			if errors.Is(err, loader.ErrEvalBudget) || strings.Contains(err.Error(), loader.ErrEvalBudget.Error()) {
				return nil, &ExecutionError{
					Code:   ExecErr_ResourceExceeded,
					Detail: fmt.Sprintf("more than %d metric calls in one period", budget.MaxEvalsPerPeriod),
				}
			}
			return nil, &ExecutionError{
				Code:   ExecErr_RuntimeFault,
				Detail: fmt.Sprintf("evaluation failed on %s: %v", window[i].Date.Format(time.DateOnly), err),
			}
		}
		if math.IsNaN(signal) || math.IsInf(signal, 0) {
			return nil, &ExecutionError{
				Code:   ExecErr_RuntimeFault,
				Detail: fmt.Sprintf("non-finite signal on %s", window[i].Date.Format(time.DateOnly)),
			}
		}

		// finite signals outside [-1, 1] are clipped rather than fatal
		signal = math.Max(-1, math.Min(1, signal))
		signals = append(signals, PeriodSignal{
			Date:     window[i].Date,
			Position: signal,
		})
	}

	return &RawResult{Signals: signals}, nil
}
