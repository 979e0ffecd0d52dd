package calculator

import (
	"fmt"
	"math"
	"quantlab/internal/domain"
	"quantlab/internal/sandbox"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

const tradingDaysPerYear = 252

// BuildPeriodRecords turns raw sandbox signals into the realized
// return series. The signal produced on period t-1 is the position
// held over period t, so record 0 always carries a zero return.
func BuildPeriodRecords(raw *sandbox.RawResult, window []domain.Candle) ([]domain.PeriodRecord, error) {
	if len(raw.Signals) != len(window) {
		return nil, fmt.Errorf("signal count %d does not match window length %d", len(raw.Signals), len(window))
	}

	equity := decimal.NewFromInt(1)
	records := make([]domain.PeriodRecord, 0, len(window))
	for i := range window {
		periodReturn := 0.0
		if i > 0 {
			prevClose, _ := window[i-1].Close.Float64()
			curClose, _ := window[i].Close.Float64()
			if prevClose != 0 {
				assetReturn := curClose/prevClose - 1
				periodReturn = raw.Signals[i-1].Position * assetReturn
			}
		}
		equity = equity.Mul(decimal.NewFromFloat(1 + periodReturn))
		records = append(records, domain.PeriodRecord{
			Date:     window[i].Date,
			Position: raw.Signals[i].Position,
			Return:   periodReturn,
			Equity:   equity,
		})
	}

	return records, nil
}

// CalculateSummary computes the fixed metric set from a period-return
// series:
//
//	total return = Π(1 + r) − 1
//	max drawdown = largest peak-to-trough decline in cumulative equity
//	sharpe       = mean(r) / stdev(r) · √252 (0 when stdev is 0)
//	trade count  = number of position changes (starting flat)
func CalculateSummary(records []domain.PeriodRecord) (*domain.SummaryMetrics, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("cannot calculate metrics on empty series")
	}

	returns := make([]float64, 0, len(records))
	cumulative := 1.0
	peak := 1.0
	maxDrawdown := 0.0
	for _, record := range records {
		returns = append(returns, record.Return)
		cumulative *= 1 + record.Return
		if cumulative > peak {
			peak = cumulative
		}
		drawdown := (peak - cumulative) / peak
		if drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
	}

	sharpe := 0.0
	if len(returns) >= 2 {
		stdev, err := stats.StandardDeviationSample(returns)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate stdev: %w", err)
		}
		mean, err := stats.Mean(returns)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate mean: %w", err)
		}
		if stdev > 0 {
			sharpe = mean / stdev * math.Sqrt(tradingDaysPerYear)
		}
	}

	tradeCount := 0
	prevPosition := 0.0
	for _, record := range records {
		if record.Position != prevPosition {
			tradeCount++
		}
		prevPosition = record.Position
	}

	return &domain.SummaryMetrics{
		TotalReturn: cumulative - 1,
		MaxDrawdown: maxDrawdown,
		SharpeRatio: sharpe,
		TradeCount:  tradeCount,
	}, nil
}
