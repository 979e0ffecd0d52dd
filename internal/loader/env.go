package loader

import (
	"fmt"
	"math"
	"quantlab/internal/domain"
	"time"

	"github.com/maja42/goval"
	"github.com/montanaflynn/stats"
)

// ErrEvalBudget is returned from environment functions once an
// invocation exhausts its per-period metric-call allowance. The
// sandbox converts it into a resource-exceeded failure.
var ErrEvalBudget = fmt.Errorf("metric call budget exhausted")

// EnvInput binds the strategy environment to one period of one
// invocation's data window. The window slice is read-only by
// convention and exclusive to the invocation.
type EnvInput struct {
	Window []domain.Candle
	Index  int
	Params domain.ParamBinding

	// Tally counts environment function calls across the period.
	// Nil disables budgeting (used by the load-time dry run).
	Tally    *int
	MaxCalls int
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func argFloat(args []interface{}, i int) (float64, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("missing argument %d", i+1)
	}
	f, ok := toFloat(args[i])
	if !ok {
		return 0, fmt.Errorf("argument %d must be numeric, got %T", i+1, args[i])
	}
	return f, nil
}

func argInt(args []interface{}, i int) (int, error) {
	f, err := argFloat(args, i)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// closeAt returns the close price offset periods before the current
// one, clipped to the start of the window so lookbacks longer than
// the available history stay total.
func (in EnvInput) closeAt(offset int) float64 {
	if offset < 0 {
		offset = 0
	}
	i := in.Index - offset
	if i < 0 {
		i = 0
	}
	f, _ := in.Window[i].Close.Float64()
	return f
}

func (in EnvInput) periodReturns(n int) []float64 {
	start := in.Index - n
	if start < 0 {
		start = 0
	}
	out := []float64{}
	for i := start + 1; i <= in.Index; i++ {
		prev := in.closeAt(in.Index - i + 1)
		cur := in.closeAt(in.Index - i)
		if prev != 0 {
			out = append(out, cur/prev-1)
		}
	}
	return out
}

// ConstructFunctionMap builds the full capability surface available
// to strategy expressions. Anything not in this map is unreachable
// from user code; the loader rejects calls to unknown names before
// execution ever starts.
func ConstructFunctionMap(in EnvInput) map[string]goval.ExpressionFunction {
	charge := func() error {
		if in.Tally == nil {
			return nil
		}
		*in.Tally++
		if in.MaxCalls > 0 && *in.Tally > in.MaxCalls {
			return ErrEvalBudget
		}
		return nil
	}

	return map[string]goval.ExpressionFunction{
		// param(name) - bound parameter value. The dry run binds no
		// params and answers a neutral constant for any name.
		"param": func(args ...interface{}) (interface{}, error) {
			if err := charge(); err != nil {
				return 0, err
			}
			if len(args) < 1 {
				return 0, fmt.Errorf("param needs 1 arg, got %d", len(args))
			}
			name, ok := args[0].(string)
			if !ok {
				return 0, fmt.Errorf("param name must be a string, got %T", args[0])
			}
			if in.Params == nil {
				return 2.0, nil
			}
			value, ok := in.Params[name]
			if !ok {
				return 0, fmt.Errorf("no parameter bound for %q", name)
			}
			return value, nil
		},

		// price(offset) - close price offset periods ago
		"price": func(args ...interface{}) (interface{}, error) {
			if err := charge(); err != nil {
				return 0, err
			}
			offset, err := argInt(args, 0)
			if err != nil {
				return 0, fmt.Errorf("price: %w", err)
			}
			return in.closeAt(offset), nil
		},

		// sma(n) - simple moving average of the last n closes
		"sma": func(args ...interface{}) (interface{}, error) {
			if err := charge(); err != nil {
				return 0, err
			}
			n, err := argInt(args, 0)
			if err != nil {
				return 0, fmt.Errorf("sma: %w", err)
			}
			if n < 1 {
				n = 1
			}
			sum := 0.0
			for i := 0; i < n; i++ {
				sum += in.closeAt(i)
			}
			return sum / float64(n), nil
		},

		// momentum(n) - percent change over the last n periods
		"momentum": func(args ...interface{}) (interface{}, error) {
			if err := charge(); err != nil {
				return 0, err
			}
			n, err := argInt(args, 0)
			if err != nil {
				return 0, fmt.Errorf("momentum: %w", err)
			}
			then := in.closeAt(n)
			if then == 0 {
				return 0.0, nil
			}
			return in.closeAt(0)/then - 1, nil
		},

		// volatility(n) - sample stdev of the last n period returns
		"volatility": func(args ...interface{}) (interface{}, error) {
			if err := charge(); err != nil {
				return 0, err
			}
			n, err := argInt(args, 0)
			if err != nil {
				return 0, fmt.Errorf("volatility: %w", err)
			}
			returns := in.periodReturns(n)
			if len(returns) < 2 {
				return 0.0, nil
			}
			stdev, err := stats.StandardDeviationSample(returns)
			if err != nil {
				return 0, err
			}
			return stdev, nil
		},

		"iff": func(args ...interface{}) (interface{}, error) {
			if len(args) < 3 {
				return 0, fmt.Errorf("iff needs 3 args, got %d", len(args))
			}
			cond, ok := args[0].(bool)
			if !ok {
				return 0, fmt.Errorf("iff condition must be boolean, got %T", args[0])
			}
			if cond {
				return args[1], nil
			}
			return args[2], nil
		},

		"abs": func(args ...interface{}) (interface{}, error) {
			f, err := argFloat(args, 0)
			if err != nil {
				return 0, fmt.Errorf("abs: %w", err)
			}
			return math.Abs(f), nil
		},

		"min": func(args ...interface{}) (interface{}, error) {
			a, err := argFloat(args, 0)
			if err != nil {
				return 0, fmt.Errorf("min: %w", err)
			}
			b, err := argFloat(args, 1)
			if err != nil {
				return 0, fmt.Errorf("min: %w", err)
			}
			return math.Min(a, b), nil
		},

		"max": func(args ...interface{}) (interface{}, error) {
			a, err := argFloat(args, 0)
			if err != nil {
				return 0, fmt.Errorf("max: %w", err)
			}
			b, err := argFloat(args, 1)
			if err != nil {
				return 0, fmt.Errorf("max: %w", err)
			}
			return math.Max(a, b), nil
		},

		"clamp": func(args ...interface{}) (interface{}, error) {
			x, err := argFloat(args, 0)
			if err != nil {
				return 0, fmt.Errorf("clamp: %w", err)
			}
			lo, err := argFloat(args, 1)
			if err != nil {
				return 0, fmt.Errorf("clamp: %w", err)
			}
			hi, err := argFloat(args, 2)
			if err != nil {
				return 0, fmt.Errorf("clamp: %w", err)
			}
			return math.Max(lo, math.Min(hi, x)), nil
		},
	}
}

// ConstructVariables exposes the read-only period context.
func ConstructVariables(in EnvInput) map[string]interface{} {
	currentDate := ""
	if in.Index >= 0 && in.Index < len(in.Window) {
		currentDate = in.Window[in.Index].Date.Format(time.DateOnly)
	}
	return map[string]interface{}{
		"index":       in.Index,
		"periods":     len(in.Window),
		"currentDate": currentDate,
	}
}
