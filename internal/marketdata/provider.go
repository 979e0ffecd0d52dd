package marketdata

import (
	"context"
	"errors"
	"quantlab/internal/domain"
)

// ErrDataUnavailable reports a requested window outside retained
// history. The runner surfaces it as a validation failure since it is
// a request-shape problem relative to the available data.
var ErrDataUnavailable = errors.New("requested window outside retained history")

// Provider is the read-only historical-data interface this core
// consumes. Acquisition and storage of market data live outside the
// execution core.
type Provider interface {
	// Fetch returns the ordered daily records covering [start, end].
	Fetch(ctx context.Context, window domain.DateRange) ([]domain.Candle, error)
	// CoveredRange reports the span of retained history.
	CoveredRange(ctx context.Context) (*domain.DateRange, error)
}
