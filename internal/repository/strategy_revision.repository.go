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
	"github.com/google/uuid"
)

// StrategyRevisionRepository keeps the append-only source history:
// one row per distinct content hash ever attached to a strategy.
// Backtests pinned to an old hash read their source from here.
type StrategyRevisionRepository interface {
	Add(strategyID uuid.UUID, source string, contentHash string) error
	GetSource(contentHash string) (string, error)
}

type strategyRevisionRepositoryHandler struct {
	Db *sql.DB
}

func NewStrategyRevisionRepository(db *sql.DB) StrategyRevisionRepository {
	return strategyRevisionRepositoryHandler{db}
}

func (h strategyRevisionRepositoryHandler) Add(strategyID uuid.UUID, source string, contentHash string) error {
	m := model.StrategyRevision{
		ContentHash: contentHash,
		StrategyID:  strategyID,
		Source:      source,
		CreatedAt:   time.Now().UTC(),
	}

	// identical source hashes identically, so replays are no-ops
	query := table.StrategyRevision.
		INSERT(table.StrategyRevision.AllColumns).
		MODEL(m).
		ON_CONFLICT(table.StrategyRevision.ContentHash).
		DO_NOTHING()

	if _, err := query.Exec(h.Db); err != nil {
		return fmt.Errorf("failed to insert strategy revision: %w", err)
	}

	return nil
}

func (h strategyRevisionRepositoryHandler) GetSource(contentHash string) (string, error) {
	query := table.StrategyRevision.
		SELECT(table.StrategyRevision.AllColumns).
		WHERE(table.StrategyRevision.ContentHash.EQ(postgres.String(contentHash)))

	out := model.StrategyRevision{}
	err := query.Query(h.Db, &out)
	if errors.Is(err, qrm.ErrNoRows) {
		return "", fmt.Errorf("revision %s: %w", contentHash, ErrNotFound)
	} else if err != nil {
		return "", fmt.Errorf("failed to get strategy revision: %w", err)
	}

	return out.Source, nil
}
