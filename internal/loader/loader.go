package loader

import (
	"fmt"
	"math"
	"quantlab/internal/domain"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/maja42/goval"
	"github.com/shopspring/decimal"
)

type LoadErrCode string

const (
	LoadErr_SyntaxInvalid       LoadErrCode = "syntax_invalid"
	LoadErr_InterfaceViolation  LoadErrCode = "interface_violation"
	LoadErr_ForbiddenCapability LoadErrCode = "forbidden_capability"
)

// LoadError is terminal for its content hash: the same source will
// keep failing until it changes, so load errors are memoized and
// never retried automatically.
type LoadError struct {
	Code   LoadErrCode
	Detail string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load error (%s): %s", e.Code, e.Detail)
}

// LoadedUnit is a validated, invocable strategy expression. Units are
// cached by content hash and never mutated after load, so concurrent
// executions share them freely.
type LoadedUnit struct {
	ContentHash string
	source      string

	cache *Cache
}

// EvalPeriod evaluates the unit's entry point for one period and
// returns the raw numeric signal.
func (u *LoadedUnit) EvalPeriod(in EnvInput) (float64, error) {
	eval := goval.NewEvaluator()
	result, err := eval.Evaluate(u.source, ConstructVariables(in), ConstructFunctionMap(in))
	if err != nil {
		return 0, err
	}
	signal, ok := toFloat(result)
	if !ok {
		return 0, fmt.Errorf("expression produced %T, want numeric signal", result)
	}
	return signal, nil
}

// Release returns the unit's cache reference. Callers must release
// exactly once per successful Load.
func (u *LoadedUnit) Release() {
	if u.cache != nil {
		u.cache.release(u.ContentHash)
	}
}

type cacheEntry struct {
	unit    *LoadedUnit
	loadErr *LoadError
	refs    int
	evict   bool
}

// Cache holds compiled units keyed by content hash, reference-counted
// so an in-flight execution is never evicted mid-run. Eviction is
// deferred until the last reference is released.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

func NewCache() *Cache {
	return &Cache{entries: map[string]*cacheEntry{}}
}

// Load validates source and returns its cached unit, compiling at
// most once per distinct content hash. The returned unit holds a
// cache reference; callers release it when the invocation finishes.
func (c *Cache) Load(contentHash string, source string) (*LoadedUnit, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[contentHash]; ok {
		if entry.loadErr != nil {
			return nil, entry.loadErr
		}
		// a hash uniquely determines source, so reloading revives an
		// entry that was marked for eviction
		entry.evict = false
		entry.refs++
		return entry.unit, nil
	}

	entry := &cacheEntry{}
	if loadErr := validate(source); loadErr != nil {
		entry.loadErr = loadErr
		c.entries[contentHash] = entry
		return nil, loadErr
	}

	entry.unit = &LoadedUnit{
		ContentHash: contentHash,
		source:      source,
		cache:       c,
	}
	entry.refs = 1
	c.entries[contentHash] = entry
	return entry.unit, nil
}

// Invalidate drops the cached unit for a hash once no execution holds
// it. Safe to call while executions are in flight.
func (c *Cache) Invalidate(contentHash string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[contentHash]
	if !ok {
		return
	}
	if entry.refs == 0 {
		delete(c.entries, contentHash)
		return
	}
	entry.evict = true
}

func (c *Cache) release(contentHash string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[contentHash]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 && entry.evict {
		delete(c.entries, contentHash)
	}
}

// Refs reports the live reference count for a hash.
func (c *Cache) Refs(contentHash string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[contentHash]; ok {
		return entry.refs
	}
	return 0
}

var (
	stringLiteralPattern = regexp.MustCompile("\"(?:[^\"\\\\]|\\\\.)*\"|`[^`]*`")
	callPattern          = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
)

// validate runs the two load-time defense layers: a static scan
// rejecting calls outside the environment's allow-list, then a dry
// evaluation against a stub window that shakes out syntax errors and
// entry-point contract violations. Runtime enforcement stays with the
// sandbox; this is the fast-fail layer.
func validate(source string) *LoadError {
	if strings.TrimSpace(source) == "" {
		return &LoadError{
			Code:   LoadErr_InterfaceViolation,
			Detail: "source is empty: expected a signal expression",
		}
	}

	allowed := map[string]bool{}
	for name := range ConstructFunctionMap(EnvInput{}) {
		allowed[name] = true
	}

	stripped := stringLiteralPattern.ReplaceAllString(source, `""`)
	for _, match := range callPattern.FindAllStringSubmatch(stripped, -1) {
		if !allowed[match[1]] {
			return &LoadError{
				Code:   LoadErr_ForbiddenCapability,
				Detail: fmt.Sprintf("call to %q is outside the allowed function set", match[1]),
			}
		}
	}

	unit := &LoadedUnit{source: source}
	signal, err := unit.EvalPeriod(EnvInput{
		Window: stubWindow(),
		Index:  len(stubWindow()) - 1,
		// nil Params makes param() answer a stub constant
		Params: nil,
	})
	if err != nil {
		if strings.Contains(err.Error(), "syntax error") || strings.Contains(err.Error(), "parse error") {
			return &LoadError{Code: LoadErr_SyntaxInvalid, Detail: err.Error()}
		}
		return &LoadError{Code: LoadErr_InterfaceViolation, Detail: err.Error()}
	}
	if math.IsNaN(signal) || math.IsInf(signal, 0) {
		return &LoadError{
			Code:   LoadErr_InterfaceViolation,
			Detail: "expression produced a non-finite signal on validation data",
		}
	}

	return nil
}

func stubWindow() []domain.Candle {
	window := make([]domain.Candle, 40)
	day := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range window {
		// mild oscillation so return-based metrics are non-degenerate
		price := 100 + float64(i%7) - float64(i%3)
		window[i] = domain.Candle{
			Date:   day,
			Close:  decimal.NewFromFloat(price),
			Volume: 1000,
		}
		day = day.AddDate(0, 0, 1)
	}
	return window
}
