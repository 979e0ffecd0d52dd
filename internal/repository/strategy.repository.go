package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"quantlab/internal/db/models/postgres/public/model"
	"quantlab/internal/db/models/postgres/public/table"
	"quantlab/internal/domain"
	"time"

	"github.com/go-jet/jet/v2/postgres"
	"github.com/go-jet/jet/v2/qrm"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

type StrategyRepository interface {
	Get(strategyID uuid.UUID) (*domain.Strategy, error)
	Add(s domain.Strategy) (*domain.Strategy, error)
	// UpdateSource swaps the strategy's source, recomputes its content
	// hash and resets its status to draft.
	UpdateSource(strategyID uuid.UUID, source string) (*domain.Strategy, error)
	SetStatus(strategyID uuid.UUID, status domain.StrategyStatus) error
	List(ownerID uuid.UUID) ([]domain.Strategy, error)
}

type strategyRepositoryHandler struct {
	Db *sql.DB
}

func NewStrategyRepository(db *sql.DB) StrategyRepository {
	return strategyRepositoryHandler{db}
}

func (h strategyRepositoryHandler) Get(strategyID uuid.UUID) (*domain.Strategy, error) {
	query := table.Strategy.
		SELECT(table.Strategy.AllColumns).
		WHERE(table.Strategy.StrategyID.EQ(postgres.UUID(strategyID)))

	out := model.Strategy{}
	err := query.Query(h.Db, &out)
	if errors.Is(err, qrm.ErrNoRows) {
		return nil, fmt.Errorf("strategy %s: %w", strategyID, ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get strategy: %w", err)
	}

	return strategyToDomain(out)
}

func (h strategyRepositoryHandler) Add(s domain.Strategy) (*domain.Strategy, error) {
	s.ContentHash = domain.HashSource(s.Source)
	if s.Status == "" {
		s.Status = domain.StrategyStatus_Draft
	}

	m, err := strategyToModel(s)
	if err != nil {
		return nil, err
	}
	m.CreatedAt = time.Now().UTC()
	m.ModifiedAt = time.Now().UTC()

	query := table.Strategy.
		INSERT(table.Strategy.MutableColumns).
		MODEL(m).
		RETURNING(table.Strategy.AllColumns)

	out := model.Strategy{}
	if err := query.Query(h.Db, &out); err != nil {
		return nil, fmt.Errorf("failed to insert strategy: %w", err)
	}

	return strategyToDomain(out)
}

func (h strategyRepositoryHandler) UpdateSource(strategyID uuid.UUID, source string) (*domain.Strategy, error) {
	query := table.Strategy.UPDATE(
		table.Strategy.Source,
		table.Strategy.ContentHash,
		table.Strategy.Status,
		table.Strategy.ModifiedAt,
	).SET(
		postgres.String(source),
		postgres.String(domain.HashSource(source)),
		postgres.String(string(domain.StrategyStatus_Draft)),
		postgres.TimestampT(time.Now().UTC()),
	).WHERE(
		table.Strategy.StrategyID.EQ(postgres.UUID(strategyID)),
	).RETURNING(table.Strategy.AllColumns)

	out := model.Strategy{}
	err := query.Query(h.Db, &out)
	if errors.Is(err, qrm.ErrNoRows) {
		return nil, fmt.Errorf("strategy %s: %w", strategyID, ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("failed to update strategy source: %w", err)
	}

	return strategyToDomain(out)
}

func (h strategyRepositoryHandler) SetStatus(strategyID uuid.UUID, status domain.StrategyStatus) error {
	query := table.Strategy.UPDATE(
		table.Strategy.Status,
		table.Strategy.ModifiedAt,
	).SET(
		postgres.String(string(status)),
		postgres.TimestampT(time.Now().UTC()),
	).WHERE(
		table.Strategy.StrategyID.EQ(postgres.UUID(strategyID)),
	)

	result, err := query.Exec(h.Db)
	if err != nil {
		return fmt.Errorf("failed to update strategy status: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("strategy %s: %w", strategyID, ErrNotFound)
	}

	return nil
}

func (h strategyRepositoryHandler) List(ownerID uuid.UUID) ([]domain.Strategy, error) {
	query := table.Strategy.
		SELECT(table.Strategy.AllColumns).
		WHERE(table.Strategy.OwnerID.EQ(postgres.UUID(ownerID))).
		ORDER_BY(table.Strategy.CreatedAt.DESC())

	rows := []model.Strategy{}
	err := query.Query(h.Db, &rows)
	if errors.Is(err, qrm.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to list strategies: %w", err)
	}

	out := make([]domain.Strategy, 0, len(rows))
	for _, row := range rows {
		s, err := strategyToDomain(row)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, nil
}

func strategyToDomain(m model.Strategy) (*domain.Strategy, error) {
	schema := domain.ParamSchema{}
	if m.ParamSchema != "" {
		if err := json.Unmarshal([]byte(m.ParamSchema), &schema); err != nil {
			return nil, fmt.Errorf("failed to parse param schema for strategy %s: %w", m.StrategyID, err)
		}
	}

	return &domain.Strategy{
		StrategyID:  m.StrategyID,
		OwnerID:     m.OwnerID,
		Name:        m.Name,
		Description: m.Description,
		Source:      m.Source,
		ParamSchema: schema,
		Status:      domain.StrategyStatus(m.Status),
		ContentHash: m.ContentHash,
		CreatedAt:   m.CreatedAt,
		ModifiedAt:  m.ModifiedAt,
	}, nil
}

func strategyToModel(s domain.Strategy) (*model.Strategy, error) {
	schema, err := json.Marshal(s.ParamSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize param schema: %w", err)
	}

	return &model.Strategy{
		StrategyID:  s.StrategyID,
		OwnerID:     s.OwnerID,
		Name:        s.Name,
		Description: s.Description,
		Source:      s.Source,
		ParamSchema: string(schema),
		Status:      string(s.Status),
		ContentHash: s.ContentHash,
		CreatedAt:   s.CreatedAt,
		ModifiedAt:  s.ModifiedAt,
	}, nil
}
