package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BacktestStatus string

const (
	BacktestStatus_Succeeded BacktestStatus = "succeeded"
	BacktestStatus_Failed    BacktestStatus = "failed"
	BacktestStatus_TimedOut  BacktestStatus = "timed_out"
)

type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) Contains(other DateRange) bool {
	return !other.Start.Before(r.Start) && !other.End.After(r.End)
}

// Candle is one period record from the historical-data provider.
type Candle struct {
	Date   time.Time
	Close  decimal.Decimal
	Volume int64
}

type BacktestRequest struct {
	StrategyID uuid.UUID
	// ContentHash pins the source version captured at submission time,
	// which may lag behind the strategy's live hash.
	ContentHash string
	Params      ParamBinding
	Start       time.Time
	End         time.Time
	SubmittedAt time.Time
}

// Fingerprint derives the deterministic key for this request: same
// source version, same canonicalized params and same window always
// produce the same fingerprint. It drives both scheduler dedup and
// result persistence.
func (r BacktestRequest) Fingerprint() string {
	names := make([]string, 0, len(r.Params))
	for name := range r.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	fmt.Fprintf(h, "%s\n", r.ContentHash)
	for _, name := range names {
		fmt.Fprintf(h, "%s=%s\n", name, strconv.FormatFloat(r.Params[name], 'g', -1, 64))
	}
	fmt.Fprintf(h, "%s\n%s\n", r.Start.Format(time.DateOnly), r.End.Format(time.DateOnly))
	return hex.EncodeToString(h.Sum(nil))
}

// PeriodRecord is one row of a backtest's output series. Position is
// the fraction of equity held over the period, Return the realized
// period return, Equity the cumulative equity after the period.
type PeriodRecord struct {
	Date     time.Time       `json:"date"`
	Position float64         `json:"position"`
	Return   float64         `json:"return"`
	Equity   decimal.Decimal `json:"equity"`
}

type SummaryMetrics struct {
	TotalReturn float64 `json:"totalReturn"`
	MaxDrawdown float64 `json:"maxDrawdown"`
	SharpeRatio float64 `json:"sharpeRatio"`
	TradeCount  int     `json:"tradeCount"`
}

// BacktestResult is immutable once written. A changed input produces a
// new fingerprint, never an overwrite.
type BacktestResult struct {
	Fingerprint string
	StrategyID  uuid.UUID
	Params      ParamBinding
	Window      DateRange
	StaleSource bool
	Periods     []PeriodRecord
	Summary     SummaryMetrics
	Status      BacktestStatus
	ErrorDetail string
	CompletedAt time.Time
}
