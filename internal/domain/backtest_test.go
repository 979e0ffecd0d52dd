package domain

import (
	"quantlab/internal/util"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestFingerprint(t *testing.T) {
	base := BacktestRequest{
		StrategyID:  uuid.New(),
		ContentHash: HashSource(`momentum(20)`),
		Params:      ParamBinding{"lookback": 20, "threshold": 0.5},
		Start:       util.NewDate(2020, 1, 1),
		End:         util.NewDate(2020, 6, 30),
	}

	t.Run("stable across param iteration order", func(t *testing.T) {
		other := base
		other.Params = ParamBinding{"threshold": 0.5, "lookback": 20}
		require.Equal(t, base.Fingerprint(), other.Fingerprint())
	})

	t.Run("insensitive to submission time", func(t *testing.T) {
		other := base
		other.SubmittedAt = util.NewDate(2024, 5, 5)
		require.Equal(t, base.Fingerprint(), other.Fingerprint())
	})

	t.Run("any input change produces a new key", func(t *testing.T) {
		changedParams := base
		changedParams.Params = ParamBinding{"lookback": 21, "threshold": 0.5}
		require.NotEqual(t, base.Fingerprint(), changedParams.Fingerprint())

		changedHash := base
		changedHash.ContentHash = HashSource(`momentum(21)`)
		require.NotEqual(t, base.Fingerprint(), changedHash.Fingerprint())

		changedWindow := base
		changedWindow.End = util.NewDate(2020, 7, 1)
		require.NotEqual(t, base.Fingerprint(), changedWindow.Fingerprint())
	})
}

func TestParamSchema(t *testing.T) {
	schema := ParamSchema{
		"lookback":  {Type: ParamType_Int, Default: 20, Min: 1, Max: 100},
		"threshold": {Type: ParamType_Float, Default: 0.5, Min: 0, Max: 1},
	}

	t.Run("valid binding", func(t *testing.T) {
		require.NoError(t, schema.Validate(ParamBinding{"lookback": 20, "threshold": 0.25}))
	})

	t.Run("unknown name", func(t *testing.T) {
		err := schema.Validate(ParamBinding{"lookback": 20, "threshold": 0.25, "extra": 1})
		require.ErrorContains(t, err, "unknown parameter")
	})

	t.Run("int param must be integral", func(t *testing.T) {
		err := schema.Validate(ParamBinding{"lookback": 20.5, "threshold": 0.25})
		require.ErrorContains(t, err, "must be an integer")
	})

	t.Run("range is inclusive", func(t *testing.T) {
		require.NoError(t, schema.Validate(ParamBinding{"lookback": 1, "threshold": 0}))
		require.NoError(t, schema.Validate(ParamBinding{"lookback": 100, "threshold": 1}))
		require.ErrorContains(t,
			schema.Validate(ParamBinding{"lookback": 101, "threshold": 0.5}), "outside range")
	})

	t.Run("missing name", func(t *testing.T) {
		err := schema.Validate(ParamBinding{"lookback": 20})
		require.ErrorContains(t, err, "missing parameter")
	})

	t.Run("defaults fill absent names only", func(t *testing.T) {
		bound := schema.WithDefaults(ParamBinding{"lookback": 50})
		require.Equal(t, ParamBinding{"lookback": 50, "threshold": 0.5}, bound)
	})
}

func TestHashSource(t *testing.T) {
	require.Equal(t, HashSource("momentum(20)"), HashSource("momentum(20)"))
	require.NotEqual(t, HashSource("momentum(20)"), HashSource("momentum(20) "))
}
