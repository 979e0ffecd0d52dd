package app

import (
	"context"
	"errors"
	"fmt"
	"quantlab/internal/calculator"
	"quantlab/internal/domain"
	"quantlab/internal/loader"
	"quantlab/internal/logger"
	"quantlab/internal/marketdata"
	"quantlab/internal/repository"
	"quantlab/internal/sandbox"
	"time"
)

// ValidationError covers everything rejected before execution starts:
// bad windows, schema mismatches, unrunnable strategies, windows
// outside retained history. It is surfaced synchronously and never
// persisted.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Detail)
}

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Detail: fmt.Sprintf(format, args...)}
}

// BacktestRunner executes one validated backtest request end to end.
// Every request that passes Validate terminates in exactly one
// persisted result, success or failure.
type BacktestRunner interface {
	Validate(ctx context.Context, req domain.BacktestRequest) error
	Run(ctx context.Context, req domain.BacktestRequest) (*domain.BacktestResult, error)
}

type backtestRunnerHandler struct {
	StrategyRepository repository.StrategyRepository
	RevisionRepository repository.StrategyRevisionRepository
	ResultRepository   repository.BacktestResultRepository
	DataProvider       marketdata.Provider
	UnitCache          *loader.Cache
	Sandbox            *sandbox.Sandbox
	Budget             sandbox.Budget
}

func NewBacktestRunner(
	strategyRepository repository.StrategyRepository,
	revisionRepository repository.StrategyRevisionRepository,
	resultRepository repository.BacktestResultRepository,
	dataProvider marketdata.Provider,
	unitCache *loader.Cache,
	sb *sandbox.Sandbox,
	budget sandbox.Budget,
) BacktestRunner {
	return backtestRunnerHandler{
		StrategyRepository: strategyRepository,
		RevisionRepository: revisionRepository,
		ResultRepository:   resultRepository,
		DataProvider:       dataProvider,
		UnitCache:          unitCache,
		Sandbox:            sb,
		Budget:             budget,
	}
}

func (h backtestRunnerHandler) Validate(ctx context.Context, req domain.BacktestRequest) error {
	if !req.Start.Before(req.End) {
		return validationErrorf("window start %s must precede end %s",
			req.Start.Format(time.DateOnly), req.End.Format(time.DateOnly))
	}

	covered, err := h.DataProvider.CoveredRange(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve available data range: %w", err)
	}
	window := domain.DateRange{Start: req.Start, End: req.End}
	if !covered.Contains(window) {
		return validationErrorf("window %s..%s outside retained history %s..%s",
			req.Start.Format(time.DateOnly), req.End.Format(time.DateOnly),
			covered.Start.Format(time.DateOnly), covered.End.Format(time.DateOnly))
	}

	strategy, err := h.StrategyRepository.Get(req.StrategyID)
	if errors.Is(err, repository.ErrNotFound) {
		return validationErrorf("strategy %s does not exist", req.StrategyID)
	} else if err != nil {
		return err
	}

	if !strategy.Status.Runnable() {
		return validationErrorf("strategy %s has status %q and cannot be backtested", req.StrategyID, strategy.Status)
	}
	if err := strategy.ParamSchema.Validate(req.Params); err != nil {
		return &ValidationError{Detail: err.Error()}
	}

	return nil
}

func (h backtestRunnerHandler) Run(ctx context.Context, req domain.BacktestRequest) (*domain.BacktestResult, error) {
	log := logger.FromContext(ctx)
	fingerprint := req.Fingerprint()

	// idempotence fast path: an identical submission re-reads the
	// stored result instead of re-executing
	existing, err := h.ResultRepository.Get(fingerprint)
	if err == nil {
		return existing, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	strategy, err := h.StrategyRepository.Get(req.StrategyID)
	if err != nil {
		return nil, err
	}

	// reproducibility over currency: run the source version captured
	// at submission even when the strategy has moved on
	source := strategy.Source
	staleSource := false
	if req.ContentHash != "" && req.ContentHash != strategy.ContentHash {
		source, err = h.RevisionRepository.GetSource(req.ContentHash)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve source for hash %s: %w", req.ContentHash, err)
		}
		staleSource = true
	}
	contentHash := req.ContentHash
	if contentHash == "" {
		contentHash = strategy.ContentHash
	}

	unit, err := h.UnitCache.Load(contentHash, source)
	if err != nil {
		var loadErr *loader.LoadError
		if errors.As(err, &loadErr) {
			return h.persistFailure(req, fingerprint, staleSource, domain.BacktestStatus_Failed, loadErr.Error())
		}
		return nil, err
	}
	defer unit.Release()

	window, err := h.DataProvider.Fetch(ctx, domain.DateRange{Start: req.Start, End: req.End})
	if err != nil {
		if errors.Is(err, marketdata.ErrDataUnavailable) {
			return h.persistFailure(req, fingerprint, staleSource, domain.BacktestStatus_Failed, err.Error())
		}
		return nil, fmt.Errorf("failed to fetch data window: %w", err)
	}

	raw, err := h.Sandbox.Execute(ctx, unit, req.Params, window, h.Budget)
	if err != nil {
		var execErr *sandbox.ExecutionError
		if errors.As(err, &execErr) {
			status := domain.BacktestStatus_Failed
			if execErr.Code == sandbox.ExecErr_Timeout {
				status = domain.BacktestStatus_TimedOut
			}
			log.Warnw("backtest execution failed",
				"fingerprint", fingerprint, "code", execErr.Code, "detail", execErr.Detail)
			return h.persistFailure(req, fingerprint, staleSource, status, execErr.Detail)
		}
		return nil, err
	}

	records, err := calculator.BuildPeriodRecords(raw, window)
	if err != nil {
		return nil, fmt.Errorf("failed to build period records: %w", err)
	}
	summary, err := calculator.CalculateSummary(records)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate summary metrics: %w", err)
	}

	result := domain.BacktestResult{
		Fingerprint: fingerprint,
		StrategyID:  req.StrategyID,
		Params:      req.Params,
		Window:      domain.DateRange{Start: req.Start, End: req.End},
		StaleSource: staleSource,
		Periods:     records,
		Summary:     *summary,
		Status:      domain.BacktestStatus_Succeeded,
		CompletedAt: time.Now().UTC(),
	}

	if err := h.ResultRepository.Add(result); err != nil {
		return nil, fmt.Errorf("failed to persist backtest result: %w", err)
	}

	return &result, nil
}

// persistFailure records a terminal failed/timed_out result so every
// admitted request stays retrievable by fingerprint.
func (h backtestRunnerHandler) persistFailure(
	req domain.BacktestRequest,
	fingerprint string,
	staleSource bool,
	status domain.BacktestStatus,
	detail string,
) (*domain.BacktestResult, error) {
	result := domain.BacktestResult{
		Fingerprint: fingerprint,
		StrategyID:  req.StrategyID,
		Params:      req.Params,
		Window:      domain.DateRange{Start: req.Start, End: req.End},
		StaleSource: staleSource,
		Periods:     []domain.PeriodRecord{},
		Status:      status,
		ErrorDetail: detail,
		CompletedAt: time.Now().UTC(),
	}

	if err := h.ResultRepository.Add(result); err != nil {
		return nil, fmt.Errorf("failed to persist failed backtest result: %w", err)
	}

	return &result, nil
}
