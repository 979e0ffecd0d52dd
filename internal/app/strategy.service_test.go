package app

import (
	"context"
	"quantlab/internal/domain"
	"quantlab/internal/loader"
	mock_repository "quantlab/internal/repository/mocks"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestStrategyService(t *testing.T) {
	ctx := context.Background()

	t.Run("create appends the first revision", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		strategyRepository := mock_repository.NewMockStrategyRepository(ctrl)
		revisionRepository := mock_repository.NewMockStrategyRevisionRepository(ctrl)

		handler := strategyServiceHandler{
			StrategyRepository: strategyRepository,
			RevisionRepository: revisionRepository,
			UnitCache:          loader.NewCache(),
		}

		in := *testStrategy(testSource)
		strategyRepository.EXPECT().Add(in).Return(&in, nil)
		revisionRepository.EXPECT().Add(in.StrategyID, in.Source, in.ContentHash).Return(nil)

		created, err := handler.Create(ctx, in)
		require.NoError(t, err)
		require.Equal(t, in.ContentHash, created.ContentHash)
	})

	t.Run("validate promotes a draft", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		strategyRepository := mock_repository.NewMockStrategyRepository(ctrl)
		revisionRepository := mock_repository.NewMockStrategyRevisionRepository(ctrl)
		cache := loader.NewCache()

		handler := strategyServiceHandler{
			StrategyRepository: strategyRepository,
			RevisionRepository: revisionRepository,
			UnitCache:          cache,
		}

		strategy := testStrategy(testSource)
		strategy.Status = domain.StrategyStatus_Draft
		strategyRepository.EXPECT().Get(strategy.StrategyID).Return(strategy, nil)
		strategyRepository.EXPECT().SetStatus(strategy.StrategyID, domain.StrategyStatus_Validated).Return(nil)

		validated, err := handler.Validate(ctx, strategy.StrategyID)
		require.NoError(t, err)
		require.Equal(t, domain.StrategyStatus_Validated, validated.Status)
		// the dry-run reference was released
		require.Equal(t, 0, cache.Refs(strategy.ContentHash))
	})

	t.Run("validate surfaces load errors without a status change", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		strategyRepository := mock_repository.NewMockStrategyRepository(ctrl)

		handler := strategyServiceHandler{
			StrategyRepository: strategyRepository,
			RevisionRepository: mock_repository.NewMockStrategyRevisionRepository(ctrl),
			UnitCache:          loader.NewCache(),
		}

		strategy := testStrategy(`exec("anything")`)
		strategy.Status = domain.StrategyStatus_Draft
		strategyRepository.EXPECT().Get(strategy.StrategyID).Return(strategy, nil)

		_, err := handler.Validate(ctx, strategy.StrategyID)
		require.Error(t, err)
		loadErr, ok := err.(*loader.LoadError)
		require.True(t, ok)
		require.Equal(t, loader.LoadErr_ForbiddenCapability, loadErr.Code)
	})

	t.Run("update source invalidates the replaced unit", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		strategyRepository := mock_repository.NewMockStrategyRepository(ctrl)
		revisionRepository := mock_repository.NewMockStrategyRevisionRepository(ctrl)
		cache := loader.NewCache()

		handler := strategyServiceHandler{
			StrategyRepository: strategyRepository,
			RevisionRepository: revisionRepository,
			UnitCache:          cache,
		}

		previous := testStrategy(testSource)
		unit, err := cache.Load(previous.ContentHash, previous.Source)
		require.NoError(t, err)

		newSource := `clamp(sma(10) - price(0), -1.0, 1.0)`
		updated := *previous
		updated.Source = newSource
		updated.ContentHash = domain.HashSource(newSource)
		updated.Status = domain.StrategyStatus_Draft

		strategyRepository.EXPECT().Get(previous.StrategyID).Return(previous, nil)
		strategyRepository.EXPECT().UpdateSource(previous.StrategyID, newSource).Return(&updated, nil)
		revisionRepository.EXPECT().Add(previous.StrategyID, newSource, updated.ContentHash).Return(nil)

		result, err := handler.UpdateSource(ctx, previous.StrategyID, newSource)
		require.NoError(t, err)
		require.Equal(t, updated.ContentHash, result.ContentHash)

		// the old unit stays loaded until its last reference drains
		require.Equal(t, 1, cache.Refs(previous.ContentHash))
		unit.Release()
		require.Equal(t, 0, cache.Refs(previous.ContentHash))

		_, reloadErr := cache.Load(previous.ContentHash, previous.Source)
		require.NoError(t, reloadErr)
	})
}
