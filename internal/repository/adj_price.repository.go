package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"quantlab/internal/db/models/postgres/public/model"
	"quantlab/internal/db/models/postgres/public/table"
	"time"

	"github.com/go-jet/jet/v2/postgres"
	"github.com/go-jet/jet/v2/qrm"
)

// AdjustedPriceRepository backs the postgres historical-data
// provider. Writes happen through the ingest tooling, not through
// the execution core.
type AdjustedPriceRepository interface {
	Add(prices []model.AdjPrice) error
	List(symbol string, start, end time.Time) ([]model.AdjPrice, error)
	CoveredRange(symbol string) (start, end time.Time, err error)
}

type adjustedPriceRepositoryHandler struct {
	Db *sql.DB
}

func NewAdjustedPriceRepository(db *sql.DB) AdjustedPriceRepository {
	return adjustedPriceRepositoryHandler{db}
}

func (h adjustedPriceRepositoryHandler) Add(prices []model.AdjPrice) error {
	if len(prices) == 0 {
		return nil
	}

	query := table.AdjPrice.
		INSERT(table.AdjPrice.AllColumns).
		MODELS(prices).
		ON_CONFLICT(table.AdjPrice.Symbol, table.AdjPrice.Date).
		DO_UPDATE(postgres.SET(
			table.AdjPrice.Price.SET(table.AdjPrice.EXCLUDED.Price),
			table.AdjPrice.Volume.SET(table.AdjPrice.EXCLUDED.Volume),
		))

	if _, err := query.Exec(h.Db); err != nil {
		return fmt.Errorf("failed to add adjusted prices: %w", err)
	}

	return nil
}

func (h adjustedPriceRepositoryHandler) List(symbol string, start, end time.Time) ([]model.AdjPrice, error) {
	query := table.AdjPrice.
		SELECT(table.AdjPrice.AllColumns).
		WHERE(postgres.AND(
			table.AdjPrice.Symbol.EQ(postgres.String(symbol)),
			table.AdjPrice.Date.GT_EQ(postgres.DateT(start)),
			table.AdjPrice.Date.LT_EQ(postgres.DateT(end)),
		)).
		ORDER_BY(table.AdjPrice.Date.ASC())

	out := []model.AdjPrice{}
	err := query.Query(h.Db, &out)
	if errors.Is(err, qrm.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to list adjusted prices: %w", err)
	}

	return out, nil
}

func (h adjustedPriceRepositoryHandler) CoveredRange(symbol string) (time.Time, time.Time, error) {
	first, err := h.boundary(symbol, true)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	last, err := h.boundary(symbol, false)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return first, last, nil
}

func (h adjustedPriceRepositoryHandler) boundary(symbol string, earliest bool) (time.Time, error) {
	order := table.AdjPrice.Date.DESC()
	if earliest {
		order = table.AdjPrice.Date.ASC()
	}

	query := table.AdjPrice.
		SELECT(table.AdjPrice.AllColumns).
		WHERE(table.AdjPrice.Symbol.EQ(postgres.String(symbol))).
		ORDER_BY(order).
		LIMIT(1)

	out := model.AdjPrice{}
	err := query.Query(h.Db, &out)
	if errors.Is(err, qrm.ErrNoRows) {
		return time.Time{}, fmt.Errorf("no price history for %s: %w", symbol, ErrNotFound)
	} else if err != nil {
		return time.Time{}, fmt.Errorf("failed to query price history boundary: %w", err)
	}

	return out.Date, nil
}
