package marketdata

import (
	"context"
	"quantlab/internal/domain"
	"quantlab/internal/repository"
)

// postgresProviderHandler adapts the adjusted-price repository to the
// provider interface, serving one configured benchmark symbol.
type postgresProviderHandler struct {
	Symbol          string
	PriceRepository repository.AdjustedPriceRepository
}

func NewPostgresProvider(symbol string, priceRepository repository.AdjustedPriceRepository) Provider {
	return postgresProviderHandler{
		Symbol:          symbol,
		PriceRepository: priceRepository,
	}
}

func (h postgresProviderHandler) CoveredRange(ctx context.Context) (*domain.DateRange, error) {
	start, end, err := h.PriceRepository.CoveredRange(h.Symbol)
	if err != nil {
		return nil, err
	}
	return &domain.DateRange{Start: start, End: end}, nil
}

func (h postgresProviderHandler) Fetch(ctx context.Context, window domain.DateRange) ([]domain.Candle, error) {
	covered, err := h.CoveredRange(ctx)
	if err != nil {
		return nil, err
	}
	if !covered.Contains(window) {
		return nil, ErrDataUnavailable
	}

	rows, err := h.PriceRepository.List(h.Symbol, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrDataUnavailable
	}

	out := make([]domain.Candle, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Candle{
			Date:   row.Date,
			Close:  row.Price,
			Volume: row.Volume,
		})
	}
	return out, nil
}
