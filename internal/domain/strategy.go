package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type StrategyStatus string

const (
	StrategyStatus_Draft     StrategyStatus = "draft"
	StrategyStatus_Validated StrategyStatus = "validated"
	StrategyStatus_Active    StrategyStatus = "active"
	StrategyStatus_Disabled  StrategyStatus = "disabled"
)

func (s StrategyStatus) Runnable() bool {
	return s == StrategyStatus_Validated || s == StrategyStatus_Active
}

type ParamType string

const (
	ParamType_Int   ParamType = "int"
	ParamType_Float ParamType = "float"
)

// ParamSpec declares one tunable input of a strategy. Min/Max are
// inclusive and interpreted in the declared type.
type ParamSpec struct {
	Type    ParamType `json:"type"`
	Default float64   `json:"default"`
	Min     float64   `json:"min"`
	Max     float64   `json:"max"`
}

type ParamSchema map[string]ParamSpec

// ParamBinding maps parameter names to the concrete values a backtest
// runs with. Values are kept as float64; int params must be integral.
type ParamBinding map[string]float64

// Validate checks a binding against the schema. Unknown names, type
// mismatches and out-of-range values are all rejected before any
// execution happens.
func (s ParamSchema) Validate(binding ParamBinding) error {
	for name, value := range binding {
		spec, ok := s[name]
		if !ok {
			return fmt.Errorf("unknown parameter %q", name)
		}
		if spec.Type == ParamType_Int && value != float64(int64(value)) {
			return fmt.Errorf("parameter %q must be an integer, got %v", name, value)
		}
		if value < spec.Min || value > spec.Max {
			return fmt.Errorf("parameter %q value %v outside range [%v, %v]", name, value, spec.Min, spec.Max)
		}
	}
	for name := range s {
		if _, ok := binding[name]; !ok {
			return fmt.Errorf("missing parameter %q", name)
		}
	}
	return nil
}

// WithDefaults returns a binding with every schema parameter present,
// filling absent names from their declared defaults.
func (s ParamSchema) WithDefaults(binding ParamBinding) ParamBinding {
	out := ParamBinding{}
	for name, spec := range s {
		out[name] = spec.Default
	}
	for name, value := range binding {
		out[name] = value
	}
	return out
}

type Strategy struct {
	StrategyID  uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	Description string
	Source      string
	ParamSchema ParamSchema
	Status      StrategyStatus
	ContentHash string
	CreatedAt   time.Time
	ModifiedAt  time.Time
}

// HashSource computes the content hash that keys the compiled-unit
// cache and strategy revisions. Identical source always hashes to the
// same value regardless of which strategy row carries it.
func HashSource(source string) string {
	h := sha256.Sum256([]byte(source))
	return hex.EncodeToString(h[:])
}
