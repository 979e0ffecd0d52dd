package calculator

import (
	"quantlab/internal/domain"
	"quantlab/internal/sandbox"
	"quantlab/internal/util"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func recordsFromReturns(returns []float64, positions []float64) []domain.PeriodRecord {
	equity := decimal.NewFromInt(1)
	out := make([]domain.PeriodRecord, 0, len(returns))
	day := util.NewDate(2020, 1, 1)
	for i, r := range returns {
		equity = equity.Mul(decimal.NewFromFloat(1 + r))
		out = append(out, domain.PeriodRecord{
			Date:     day,
			Position: positions[i],
			Return:   r,
			Equity:   equity,
		})
		day = day.AddDate(0, 0, 1)
	}
	return out
}

func TestCalculateSummary(t *testing.T) {
	t.Run("known return series", func(t *testing.T) {
		records := recordsFromReturns(
			[]float64{0.01, -0.02, 0.03},
			[]float64{1, 1, 1},
		)

		summary, err := CalculateSummary(records)
		require.NoError(t, err)

		// 1.01 * 0.98 * 1.03 - 1
		require.InDelta(t, 0.019494, summary.TotalReturn, 1e-9)
		// peak 1.01, trough 0.9898
		require.InDelta(t, 0.02, summary.MaxDrawdown, 1e-9)
		// mean 0.0066667, sample stdev 0.0251661, annualized by sqrt(252)
		require.InDelta(t, 4.205115, summary.SharpeRatio, 1e-4)
		// one entry from flat, held throughout
		require.Equal(t, 1, summary.TradeCount)
	})

	t.Run("drawdown spans multiple periods", func(t *testing.T) {
		records := recordsFromReturns(
			[]float64{0.10, -0.05, -0.05, 0.20},
			[]float64{1, 1, 1, 1},
		)

		summary, err := CalculateSummary(records)
		require.NoError(t, err)

		// peak 1.10, trough 1.10 * 0.95 * 0.95 = 0.99275
		require.InDelta(t, 1-0.95*0.95, summary.MaxDrawdown, 1e-9)
		require.InDelta(t, 1.10*0.95*0.95*1.20-1, summary.TotalReturn, 1e-9)
	})

	t.Run("trade count tracks position changes from flat", func(t *testing.T) {
		records := recordsFromReturns(
			[]float64{0, 0, 0, 0, 0},
			[]float64{1, 1, 0.5, 0.5, 0},
		)

		summary, err := CalculateSummary(records)
		require.NoError(t, err)
		require.Equal(t, 3, summary.TradeCount)
	})

	t.Run("constant returns produce zero sharpe", func(t *testing.T) {
		records := recordsFromReturns(
			[]float64{0.01, 0.01, 0.01},
			[]float64{1, 1, 1},
		)

		summary, err := CalculateSummary(records)
		require.NoError(t, err)
		require.Equal(t, 0.0, summary.SharpeRatio)
	})

	t.Run("all flat", func(t *testing.T) {
		records := recordsFromReturns(
			[]float64{0, 0, 0},
			[]float64{0, 0, 0},
		)

		summary, err := CalculateSummary(records)
		require.NoError(t, err)
		require.Equal(t, 0.0, summary.TotalReturn)
		require.Equal(t, 0.0, summary.MaxDrawdown)
		require.Equal(t, 0.0, summary.SharpeRatio)
		require.Equal(t, 0, summary.TradeCount)
	})

	t.Run("empty series is rejected", func(t *testing.T) {
		_, err := CalculateSummary(nil)
		require.Error(t, err)
	})
}

func TestBuildPeriodRecords(t *testing.T) {
	window := []domain.Candle{
		{Date: util.NewDate(2020, 1, 1), Close: decimal.NewFromInt(100)},
		{Date: util.NewDate(2020, 1, 2), Close: decimal.NewFromInt(102)},
		{Date: util.NewDate(2020, 1, 3), Close: decimal.NewFromInt(101)},
		{Date: util.NewDate(2020, 1, 4), Close: decimal.NewFromInt(103)},
	}

	t.Run("prior signal applies to current return", func(t *testing.T) {
		raw := &sandbox.RawResult{Signals: []sandbox.PeriodSignal{
			{Date: window[0].Date, Position: 1},
			{Date: window[1].Date, Position: 1},
			{Date: window[2].Date, Position: 0.5},
			{Date: window[3].Date, Position: 0},
		}}

		records, err := BuildPeriodRecords(raw, window)
		require.NoError(t, err)
		require.Len(t, records, 4)

		require.Equal(t, 0.0, records[0].Return)
		require.InDelta(t, 102.0/100.0-1, records[1].Return, 1e-12)
		require.InDelta(t, 101.0/102.0-1, records[2].Return, 1e-12)
		// half position over the last period
		require.InDelta(t, 0.5*(103.0/101.0-1), records[3].Return, 1e-12)

		equity, _ := records[3].Equity.Float64()
		expected := (1 + records[1].Return) * (1 + records[2].Return) * (1 + records[3].Return)
		require.InDelta(t, expected, equity, 1e-9)
	})

	t.Run("short signal inverts the asset return", func(t *testing.T) {
		raw := &sandbox.RawResult{Signals: []sandbox.PeriodSignal{
			{Date: window[0].Date, Position: -1},
			{Date: window[1].Date, Position: -1},
			{Date: window[2].Date, Position: -1},
			{Date: window[3].Date, Position: -1},
		}}

		records, err := BuildPeriodRecords(raw, window)
		require.NoError(t, err)
		// short position profits when the close falls
		require.InDelta(t, -(102.0/100.0 - 1), records[1].Return, 1e-12)
		require.InDelta(t, -(101.0/102.0 - 1), records[2].Return, 1e-12)
	})

	t.Run("signal count must match window", func(t *testing.T) {
		raw := &sandbox.RawResult{Signals: []sandbox.PeriodSignal{
			{Date: window[0].Date, Position: 1},
		}}
		_, err := BuildPeriodRecords(raw, window)
		require.Error(t, err)
	})
}
