package app

import (
	"context"
	"errors"
	"quantlab/internal/domain"
	"quantlab/internal/repository"
	"quantlab/internal/scheduler"
	"time"

	"github.com/google/uuid"
)

// ErrResultPending reports a fingerprint whose execution has not
// reached a terminal state yet.
var ErrResultPending = errors.New("backtest result not ready")

type SubmitBacktestInput struct {
	StrategyID uuid.UUID
	Params     domain.ParamBinding
	Start      time.Time
	End        time.Time
}

type ResultState struct {
	Fingerprint string
	// State is pending or running while in flight, done once a
	// terminal result exists.
	State  scheduler.State
	Result *domain.BacktestResult
}

// BacktestService is the narrow surface the surrounding application
// consumes: submit a backtest, poll a fingerprint.
type BacktestService interface {
	SubmitBacktest(ctx context.Context, in SubmitBacktestInput) (fingerprint string, err error)
	GetResult(ctx context.Context, fingerprint string) (*ResultState, error)
	ListResults(ctx context.Context, strategyID uuid.UUID) ([]domain.BacktestResult, error)
}

type backtestServiceHandler struct {
	StrategyRepository repository.StrategyRepository
	ResultRepository   repository.BacktestResultRepository
	Scheduler          *scheduler.Scheduler
}

func NewBacktestService(
	strategyRepository repository.StrategyRepository,
	resultRepository repository.BacktestResultRepository,
	sched *scheduler.Scheduler,
) BacktestService {
	return backtestServiceHandler{
		StrategyRepository: strategyRepository,
		ResultRepository:   resultRepository,
		Scheduler:          sched,
	}
}

func (h backtestServiceHandler) SubmitBacktest(ctx context.Context, in SubmitBacktestInput) (string, error) {
	strategy, err := h.StrategyRepository.Get(in.StrategyID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", &ValidationError{Detail: err.Error()}
	} else if err != nil {
		return "", err
	}

	req := domain.BacktestRequest{
		StrategyID: in.StrategyID,
		// pin the source version visible at submission time
		ContentHash: strategy.ContentHash,
		Params:      strategy.ParamSchema.WithDefaults(in.Params),
		Start:       in.Start,
		End:         in.End,
		SubmittedAt: time.Now().UTC(),
	}

	handle, err := h.Scheduler.Submit(ctx, req)
	if err != nil {
		return "", err
	}

	return handle.Fingerprint, nil
}

func (h backtestServiceHandler) GetResult(ctx context.Context, fingerprint string) (*ResultState, error) {
	result, err := h.ResultRepository.Get(fingerprint)
	if err == nil {
		return &ResultState{
			Fingerprint: fingerprint,
			State:       scheduler.State_Done,
			Result:      result,
		}, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if state, ok := h.Scheduler.Lookup(fingerprint); ok {
		return &ResultState{Fingerprint: fingerprint, State: state}, nil
	}

	return nil, repository.ErrNotFound
}

func (h backtestServiceHandler) ListResults(ctx context.Context, strategyID uuid.UUID) ([]domain.BacktestResult, error) {
	return h.ResultRepository.List(strategyID)
}
