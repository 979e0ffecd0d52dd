package app

import (
	"context"
	"quantlab/internal/domain"
	"quantlab/internal/loader"
	"quantlab/internal/logger"
	"quantlab/internal/repository"

	"github.com/google/uuid"
)

// StrategyService owns the strategy lifecycle around the execution
// core: saving source (which appends a revision so old backtests stay
// reproducible) and promoting drafts through load-time validation.
type StrategyService interface {
	Create(ctx context.Context, s domain.Strategy) (*domain.Strategy, error)
	Get(ctx context.Context, strategyID uuid.UUID) (*domain.Strategy, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]domain.Strategy, error)
	UpdateSource(ctx context.Context, strategyID uuid.UUID, source string) (*domain.Strategy, error)
	// Validate loads the strategy's current source; on success the
	// strategy is promoted from draft to validated.
	Validate(ctx context.Context, strategyID uuid.UUID) (*domain.Strategy, error)
}

type strategyServiceHandler struct {
	StrategyRepository repository.StrategyRepository
	RevisionRepository repository.StrategyRevisionRepository
	UnitCache          *loader.Cache
}

func NewStrategyService(
	strategyRepository repository.StrategyRepository,
	revisionRepository repository.StrategyRevisionRepository,
	unitCache *loader.Cache,
) StrategyService {
	return strategyServiceHandler{
		StrategyRepository: strategyRepository,
		RevisionRepository: revisionRepository,
		UnitCache:          unitCache,
	}
}

func (h strategyServiceHandler) Create(ctx context.Context, s domain.Strategy) (*domain.Strategy, error) {
	created, err := h.StrategyRepository.Add(s)
	if err != nil {
		return nil, err
	}

	if err := h.RevisionRepository.Add(created.StrategyID, created.Source, created.ContentHash); err != nil {
		return nil, err
	}

	return created, nil
}

func (h strategyServiceHandler) Get(ctx context.Context, strategyID uuid.UUID) (*domain.Strategy, error) {
	return h.StrategyRepository.Get(strategyID)
}

func (h strategyServiceHandler) List(ctx context.Context, ownerID uuid.UUID) ([]domain.Strategy, error) {
	return h.StrategyRepository.List(ownerID)
}

func (h strategyServiceHandler) UpdateSource(ctx context.Context, strategyID uuid.UUID, source string) (*domain.Strategy, error) {
	previous, err := h.StrategyRepository.Get(strategyID)
	if err != nil {
		return nil, err
	}

	updated, err := h.StrategyRepository.UpdateSource(strategyID, source)
	if err != nil {
		return nil, err
	}

	if err := h.RevisionRepository.Add(strategyID, updated.Source, updated.ContentHash); err != nil {
		return nil, err
	}

	// the old unit stays loadable for in-flight runs; eviction takes
	// effect once the last reference drains
	if previous.ContentHash != updated.ContentHash {
		h.UnitCache.Invalidate(previous.ContentHash)
	}

	return updated, nil
}

func (h strategyServiceHandler) Validate(ctx context.Context, strategyID uuid.UUID) (*domain.Strategy, error) {
	strategy, err := h.StrategyRepository.Get(strategyID)
	if err != nil {
		return nil, err
	}

	unit, err := h.UnitCache.Load(strategy.ContentHash, strategy.Source)
	if err != nil {
		// terminal for this content hash; the author has to change
		// the source to clear it
		return nil, err
	}
	unit.Release()

	if strategy.Status == domain.StrategyStatus_Draft {
		if err := h.StrategyRepository.SetStatus(strategyID, domain.StrategyStatus_Validated); err != nil {
			return nil, err
		}
		strategy.Status = domain.StrategyStatus_Validated
	}

	logger.FromContext(ctx).Infow("strategy validated",
		"strategyID", strategyID, "contentHash", strategy.ContentHash)

	return strategy, nil
}
