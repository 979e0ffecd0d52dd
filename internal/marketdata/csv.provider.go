package marketdata

import (
	"context"
	"fmt"
	"os"
	"quantlab/internal/domain"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// csvProviderHandler serves candles from a local CSV file, used for
// dev environments and the script CLI where no price database is
// around. The full file is parsed once at construction.
type csvProviderHandler struct {
	candles []domain.Candle
}

type priceRow struct {
	Date   string `csv:"date"`
	Close  string `csv:"close"`
	Volume int64  `csv:"volume"`
}

func NewCsvProvider(path string) (Provider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open price file: %w", err)
	}
	defer f.Close()

	rows := []priceRow{}
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse price file %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("price file %s holds no rows", path)
	}

	candles := make([]domain.Candle, 0, len(rows))
	for _, row := range rows {
		date, err := time.Parse(time.DateOnly, row.Date)
		if err != nil {
			return nil, fmt.Errorf("bad date %q in %s: %w", row.Date, path, err)
		}
		closePrice, err := decimal.NewFromString(row.Close)
		if err != nil {
			return nil, fmt.Errorf("bad close %q in %s: %w", row.Close, path, err)
		}
		candles = append(candles, domain.Candle{
			Date:   date,
			Close:  closePrice,
			Volume: row.Volume,
		})
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Date.Before(candles[j].Date)
	})

	return &csvProviderHandler{candles: candles}, nil
}

func (h *csvProviderHandler) CoveredRange(ctx context.Context) (*domain.DateRange, error) {
	return &domain.DateRange{
		Start: h.candles[0].Date,
		End:   h.candles[len(h.candles)-1].Date,
	}, nil
}

func (h *csvProviderHandler) Fetch(ctx context.Context, window domain.DateRange) ([]domain.Candle, error) {
	covered, _ := h.CoveredRange(ctx)
	if !covered.Contains(window) {
		return nil, ErrDataUnavailable
	}

	// each invocation gets its own copy of the window
	out := []domain.Candle{}
	for _, candle := range h.candles {
		if candle.Date.Before(window.Start) || candle.Date.After(window.End) {
			continue
		}
		out = append(out, candle)
	}
	if len(out) == 0 {
		return nil, ErrDataUnavailable
	}
	return out, nil
}
