package sandbox

import (
	"context"
	"errors"
	"quantlab/internal/domain"
	"quantlab/internal/loader"
	"quantlab/internal/util"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func loadUnit(t *testing.T, cache *loader.Cache, source string) *loader.LoadedUnit {
	t.Helper()
	unit, err := cache.Load(domain.HashSource(source), source)
	require.NoError(t, err)
	t.Cleanup(unit.Release)
	return unit
}

func sandboxWindow(n int) []domain.Candle {
	window := make([]domain.Candle, n)
	day := util.NewDate(2020, 1, 1)
	for i := range window {
		window[i] = domain.Candle{
			Date:   day,
			Close:  decimal.NewFromFloat(100 + float64(i%5)),
			Volume: 1000,
		}
		day = day.AddDate(0, 0, 1)
	}
	return window
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	cache := loader.NewCache()

	t.Run("produces one signal per period", func(t *testing.T) {
		unit := loadUnit(t, cache, `clamp(momentum(5) * 10.0, -1.0, 1.0)`)
		window := sandboxWindow(30)

		raw, err := New().Execute(ctx, unit, nil, window, DefaultBudget())
		require.NoError(t, err)
		require.Len(t, raw.Signals, len(window))
		for i, signal := range raw.Signals {
			require.Equal(t, window[i].Date, signal.Date)
			require.GreaterOrEqual(t, signal.Position, -1.0)
			require.LessOrEqual(t, signal.Position, 1.0)
		}
	})

	t.Run("deterministic across invocations", func(t *testing.T) {
		unit := loadUnit(t, cache, `clamp(sma(3) - price(0), -1.0, 1.0)`)
		window := sandboxWindow(20)

		first, err := New().Execute(ctx, unit, nil, window, DefaultBudget())
		require.NoError(t, err)
		second, err := New().Execute(ctx, unit, nil, window, DefaultBudget())
		require.NoError(t, err)
		require.Empty(t, cmp.Diff(first.Signals, second.Signals))
	})

	t.Run("out-of-range signals are clipped", func(t *testing.T) {
		unit := loadUnit(t, cache, `3.0`)
		window := sandboxWindow(5)

		raw, err := New().Execute(ctx, unit, nil, window, DefaultBudget())
		require.NoError(t, err)
		for _, signal := range raw.Signals {
			require.Equal(t, 1.0, signal.Position)
		}
	})

	t.Run("window beyond the output budget is rejected", func(t *testing.T) {
		unit := loadUnit(t, cache, `1.0`)
		budget := DefaultBudget()
		budget.MaxOutputRecords = 10

		_, err := New().Execute(ctx, unit, nil, sandboxWindow(11), budget)
		requireExecErr(t, err, ExecErr_ResourceExceeded)
	})

	t.Run("per-period metric budget is enforced", func(t *testing.T) {
		unit := loadUnit(t, cache, `price(0) + price(1) + price(2)`)
		budget := DefaultBudget()
		budget.MaxEvalsPerPeriod = 2

		_, err := New().Execute(ctx, unit, nil, sandboxWindow(5), budget)
		requireExecErr(t, err, ExecErr_ResourceExceeded)
	})

	t.Run("wall clock budget times out", func(t *testing.T) {
		unit := loadUnit(t, cache, `sma(200)`)
		budget := DefaultBudget()
		budget.MaxWallClock = time.Nanosecond

		_, err := New().Execute(ctx, unit, nil, sandboxWindow(500), budget)
		requireExecErr(t, err, ExecErr_Timeout)
	})

	t.Run("caller cancellation is not a budget violation", func(t *testing.T) {
		unit := loadUnit(t, cache, `sma(200)`)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := New().Execute(cancelled, unit, nil, sandboxWindow(500), DefaultBudget())
		require.ErrorIs(t, err, context.Canceled)
		var execErr *ExecutionError
		require.False(t, errors.As(err, &execErr))
	})

	t.Run("runtime evaluation failures are contained", func(t *testing.T) {
		// passes the load-time dry run (no params bound there), fails
		// once executed with a binding that lacks the name
		unit := loadUnit(t, cache, `param("threshold")`)

		_, err := New().Execute(ctx, unit, domain.ParamBinding{"lookback": 20}, sandboxWindow(5), DefaultBudget())
		requireExecErr(t, err, ExecErr_RuntimeFault)
	})

	t.Run("empty window is a fault", func(t *testing.T) {
		unit := loadUnit(t, cache, `1.0`)
		_, err := New().Execute(ctx, unit, nil, nil, DefaultBudget())
		requireExecErr(t, err, ExecErr_RuntimeFault)
	})
}

func requireExecErr(t *testing.T, err error, code ExecErrCode) {
	t.Helper()
	require.Error(t, err)
	execErr, ok := err.(*ExecutionError)
	require.True(t, ok, "expected *ExecutionError, got %T: %v", err, err)
	require.Equal(t, code, execErr.Code)
}
