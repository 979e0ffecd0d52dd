package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"quantlab/internal/db/models/postgres/public/model"
	"quantlab/internal/db/models/postgres/public/table"
	"quantlab/internal/domain"

	"github.com/go-jet/jet/v2/postgres"
	"github.com/go-jet/jet/v2/qrm"
	"github.com/google/uuid"
)

// BacktestResultRepository is the result store adapter. Results are
// immutable and keyed by fingerprint; Add is idempotent so replayed
// submissions never overwrite or error.
type BacktestResultRepository interface {
	Add(result domain.BacktestResult) error
	Get(fingerprint string) (*domain.BacktestResult, error)
	List(strategyID uuid.UUID) ([]domain.BacktestResult, error)
}

type backtestResultRepositoryHandler struct {
	Db *sql.DB
}

func NewBacktestResultRepository(db *sql.DB) BacktestResultRepository {
	return backtestResultRepositoryHandler{db}
}

func (h backtestResultRepositoryHandler) Add(result domain.BacktestResult) error {
	m, err := resultToModel(result)
	if err != nil {
		return err
	}

	query := table.BacktestResult.
		INSERT(table.BacktestResult.AllColumns).
		MODEL(m).
		ON_CONFLICT(table.BacktestResult.Fingerprint).
		DO_NOTHING()

	if _, err := query.Exec(h.Db); err != nil {
		return fmt.Errorf("failed to insert backtest result: %w", err)
	}

	return nil
}

func (h backtestResultRepositoryHandler) Get(fingerprint string) (*domain.BacktestResult, error) {
	query := table.BacktestResult.
		SELECT(table.BacktestResult.AllColumns).
		WHERE(table.BacktestResult.Fingerprint.EQ(postgres.String(fingerprint)))

	out := model.BacktestResult{}
	err := query.Query(h.Db, &out)
	if errors.Is(err, qrm.ErrNoRows) {
		return nil, fmt.Errorf("backtest result %s: %w", fingerprint, ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get backtest result: %w", err)
	}

	return resultToDomain(out)
}

func (h backtestResultRepositoryHandler) List(strategyID uuid.UUID) ([]domain.BacktestResult, error) {
	query := table.BacktestResult.
		SELECT(table.BacktestResult.AllColumns).
		WHERE(table.BacktestResult.StrategyID.EQ(postgres.UUID(strategyID))).
		ORDER_BY(table.BacktestResult.CompletedAt.DESC())

	rows := []model.BacktestResult{}
	err := query.Query(h.Db, &rows)
	if errors.Is(err, qrm.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to list backtest results: %w", err)
	}

	out := make([]domain.BacktestResult, 0, len(rows))
	for _, row := range rows {
		r, err := resultToDomain(row)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, nil
}

func resultToModel(r domain.BacktestResult) (*model.BacktestResult, error) {
	params, err := json.Marshal(r.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize params: %w", err)
	}
	periods, err := json.Marshal(r.Periods)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize period records: %w", err)
	}

	return &model.BacktestResult{
		Fingerprint: r.Fingerprint,
		StrategyID:  r.StrategyID,
		Params:      string(params),
		StartDate:   r.Window.Start,
		EndDate:     r.Window.End,
		StaleSource: r.StaleSource,
		Periods:     string(periods),
		TotalReturn: r.Summary.TotalReturn,
		MaxDrawdown: r.Summary.MaxDrawdown,
		SharpeRatio: r.Summary.SharpeRatio,
		TradeCount:  int32(r.Summary.TradeCount),
		Status:      string(r.Status),
		ErrorDetail: r.ErrorDetail,
		CompletedAt: r.CompletedAt,
	}, nil
}

func resultToDomain(m model.BacktestResult) (*domain.BacktestResult, error) {
	params := domain.ParamBinding{}
	if m.Params != "" {
		if err := json.Unmarshal([]byte(m.Params), &params); err != nil {
			return nil, fmt.Errorf("failed to parse params for result %s: %w", m.Fingerprint, err)
		}
	}
	periods := []domain.PeriodRecord{}
	if m.Periods != "" {
		if err := json.Unmarshal([]byte(m.Periods), &periods); err != nil {
			return nil, fmt.Errorf("failed to parse period records for result %s: %w", m.Fingerprint, err)
		}
	}

	return &domain.BacktestResult{
		Fingerprint: m.Fingerprint,
		StrategyID:  m.StrategyID,
		Params:      params,
		Window:      domain.DateRange{Start: m.StartDate, End: m.EndDate},
		StaleSource: m.StaleSource,
		Periods:     periods,
		Summary: domain.SummaryMetrics{
			TotalReturn: m.TotalReturn,
			MaxDrawdown: m.MaxDrawdown,
			SharpeRatio: m.SharpeRatio,
			TradeCount:  int(m.TradeCount),
		},
		Status:      domain.BacktestStatus(m.Status),
		ErrorDetail: m.ErrorDetail,
		CompletedAt: m.CompletedAt,
	}, nil
}
