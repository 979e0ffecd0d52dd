package scheduler_test

import (
	"context"
	"quantlab/internal/app"
	"quantlab/internal/domain"
	"quantlab/internal/scheduler"
	"quantlab/internal/util"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fakeRunner counts invocations and can hold executions on a gate so
// tests control exactly when a job finishes.
type fakeRunner struct {
	mu            sync.Mutex
	invocations   int
	order         []string
	running       int
	maxConcurrent int

	gate        chan struct{}
	followCtx   bool
	validateErr error
	runErr      error
	panicOnRun  bool
}

func (r *fakeRunner) Validate(ctx context.Context, req domain.BacktestRequest) error {
	return r.validateErr
}

func (r *fakeRunner) Run(ctx context.Context, req domain.BacktestRequest) (*domain.BacktestResult, error) {
	r.mu.Lock()
	r.invocations++
	r.order = append(r.order, req.Fingerprint())
	r.running++
	if r.running > r.maxConcurrent {
		r.maxConcurrent = r.running
	}
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running--
		r.mu.Unlock()
	}()

	if r.panicOnRun {
		panic("strategy runtime blew up")
	}
	if r.gate != nil {
		if r.followCtx {
			select {
			case <-r.gate:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		} else {
			<-r.gate
		}
	}
	if r.runErr != nil {
		return nil, r.runErr
	}
	return &domain.BacktestResult{
		Fingerprint: req.Fingerprint(),
		StrategyID:  req.StrategyID,
		Status:      domain.BacktestStatus_Succeeded,
	}, nil
}

func (r *fakeRunner) invocationCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.invocations
}

func (r *fakeRunner) executionOrder() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.order...)
}

func newRequest(strategyID uuid.UUID, lookback float64) domain.BacktestRequest {
	return domain.BacktestRequest{
		StrategyID:  strategyID,
		ContentHash: "a1b2c3",
		Params:      domain.ParamBinding{"lookback": lookback},
		Start:       util.NewDate(2020, 1, 1),
		End:         util.NewDate(2020, 6, 30),
	}
}

func awaitState(t *testing.T, s *scheduler.Scheduler, h *scheduler.Handle, want scheduler.State) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		if s.Status(h) == want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("handle never reached state %s, stuck at %s", want, s.Status(h))
		case <-time.After(time.Millisecond):
		}
	}
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("identical requests share one execution", func(t *testing.T) {
		runner := &fakeRunner{gate: make(chan struct{})}
		s := scheduler.New(runner, scheduler.Config{Workers: 2, QueueDepth: 8})
		defer s.Stop()

		req := newRequest(uuid.New(), 20)
		first, err := s.Submit(ctx, req)
		require.NoError(t, err)
		awaitState(t, s, first, scheduler.State_Running)

		second, err := s.Submit(ctx, req)
		require.NoError(t, err)
		require.Equal(t, first.Fingerprint, second.Fingerprint)
		require.Equal(t, scheduler.State_Running, s.Status(second))

		close(runner.gate)

		firstResult, err := s.Await(ctx, first)
		require.NoError(t, err)
		secondResult, err := s.Await(ctx, second)
		require.NoError(t, err)
		require.Same(t, firstResult, secondResult)
		require.Equal(t, 1, runner.invocationCount())
	})

	t.Run("different params do not dedup", func(t *testing.T) {
		runner := &fakeRunner{}
		s := scheduler.New(runner, scheduler.Config{Workers: 2, QueueDepth: 8})
		defer s.Stop()

		strategyID := uuid.New()
		first, err := s.Submit(ctx, newRequest(strategyID, 20))
		require.NoError(t, err)
		second, err := s.Submit(ctx, newRequest(strategyID, 50))
		require.NoError(t, err)
		require.NotEqual(t, first.Fingerprint, second.Fingerprint)

		_, err = s.Await(ctx, first)
		require.NoError(t, err)
		_, err = s.Await(ctx, second)
		require.NoError(t, err)
		require.Equal(t, 2, runner.invocationCount())
	})

	t.Run("validation failures never enter the queue", func(t *testing.T) {
		runner := &fakeRunner{validateErr: &app.ValidationError{Detail: "window start must precede end"}}
		s := scheduler.New(runner, scheduler.Config{Workers: 1, QueueDepth: 8})
		defer s.Stop()

		req := newRequest(uuid.New(), 20)
		_, err := s.Submit(ctx, req)
		require.Error(t, err)
		require.IsType(t, &app.ValidationError{}, err)

		_, inflight := s.Lookup(req.Fingerprint())
		require.False(t, inflight)
		require.Equal(t, 0, runner.invocationCount())
	})

	t.Run("admission stops at the queue bound", func(t *testing.T) {
		runner := &fakeRunner{gate: make(chan struct{})}
		s := scheduler.New(runner, scheduler.Config{Workers: 1, QueueDepth: 1})
		defer s.Stop()

		strategyID := uuid.New()
		running, err := s.Submit(ctx, newRequest(strategyID, 1))
		require.NoError(t, err)
		awaitState(t, s, running, scheduler.State_Running)

		queued, err := s.Submit(ctx, newRequest(strategyID, 2))
		require.NoError(t, err)
		require.Equal(t, scheduler.State_Pending, s.Status(queued))

		rejected := newRequest(strategyID, 3)
		_, err = s.Submit(ctx, rejected)
		require.ErrorIs(t, err, scheduler.ErrQueueFull)
		// a rejected request leaves no admission entry behind
		_, inflight := s.Lookup(rejected.Fingerprint())
		require.False(t, inflight)

		close(runner.gate)
		_, err = s.Await(ctx, running)
		require.NoError(t, err)
		_, err = s.Await(ctx, queued)
		require.NoError(t, err)
	})

	t.Run("running count never exceeds the pool size", func(t *testing.T) {
		runner := &fakeRunner{gate: make(chan struct{})}
		s := scheduler.New(runner, scheduler.Config{Workers: 2, QueueDepth: 16})
		defer s.Stop()

		strategyID := uuid.New()
		handles := []*scheduler.Handle{}
		for i := 0; i < 6; i++ {
			h, err := s.Submit(ctx, newRequest(strategyID, float64(i+1)))
			require.NoError(t, err)
			handles = append(handles, h)
		}
		awaitState(t, s, handles[0], scheduler.State_Running)
		awaitState(t, s, handles[1], scheduler.State_Running)
		// the rest wait their turn
		require.Equal(t, scheduler.State_Pending, s.Status(handles[2]))

		close(runner.gate)
		for _, h := range handles {
			_, err := s.Await(ctx, h)
			require.NoError(t, err)
		}

		runner.mu.Lock()
		defer runner.mu.Unlock()
		require.LessOrEqual(t, runner.maxConcurrent, 2)
		require.Equal(t, 6, runner.invocations)
	})

	t.Run("requests run in arrival order", func(t *testing.T) {
		runner := &fakeRunner{gate: make(chan struct{})}
		s := scheduler.New(runner, scheduler.Config{Workers: 1, QueueDepth: 8})
		defer s.Stop()

		strategyID := uuid.New()
		handles := []*scheduler.Handle{}
		fingerprints := []string{}
		for i := 0; i < 4; i++ {
			h, err := s.Submit(ctx, newRequest(strategyID, float64(i+1)))
			require.NoError(t, err)
			handles = append(handles, h)
			fingerprints = append(fingerprints, h.Fingerprint)
		}

		close(runner.gate)
		for _, h := range handles {
			_, err := s.Await(ctx, h)
			require.NoError(t, err)
		}
		require.Equal(t, fingerprints, runner.executionOrder())
	})
}

func TestLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("states move pending to running to done", func(t *testing.T) {
		runner := &fakeRunner{gate: make(chan struct{})}
		s := scheduler.New(runner, scheduler.Config{Workers: 1, QueueDepth: 8})
		defer s.Stop()

		strategyID := uuid.New()
		running, err := s.Submit(ctx, newRequest(strategyID, 1))
		require.NoError(t, err)
		awaitState(t, s, running, scheduler.State_Running)

		pending, err := s.Submit(ctx, newRequest(strategyID, 2))
		require.NoError(t, err)
		require.Equal(t, scheduler.State_Pending, s.Status(pending))

		state, inflight := s.Lookup(pending.Fingerprint)
		require.True(t, inflight)
		require.Equal(t, scheduler.State_Pending, state)

		close(runner.gate)
		result, err := s.Await(ctx, pending)
		require.NoError(t, err)
		require.Equal(t, domain.BacktestStatus_Succeeded, result.Status)
		require.Equal(t, scheduler.State_Done, s.Status(pending))

		// completion clears the admission entry
		_, inflight = s.Lookup(pending.Fingerprint)
		require.False(t, inflight)
	})

	t.Run("cancel only reaches pending requests", func(t *testing.T) {
		runner := &fakeRunner{gate: make(chan struct{})}
		s := scheduler.New(runner, scheduler.Config{Workers: 1, QueueDepth: 8})
		defer s.Stop()

		strategyID := uuid.New()
		running, err := s.Submit(ctx, newRequest(strategyID, 1))
		require.NoError(t, err)
		awaitState(t, s, running, scheduler.State_Running)

		pending, err := s.Submit(ctx, newRequest(strategyID, 2))
		require.NoError(t, err)
		require.True(t, s.Cancel(pending))
		require.Equal(t, scheduler.State_Cancelled, s.Status(pending))

		_, err = s.Await(ctx, pending)
		require.ErrorIs(t, err, scheduler.ErrCancelled)

		// the running execution is out of reach
		require.False(t, s.Cancel(running))

		close(runner.gate)
		_, err = s.Await(ctx, running)
		require.NoError(t, err)
		require.Equal(t, 1, runner.invocationCount())
	})

	t.Run("a panicking run fails its job without killing the worker", func(t *testing.T) {
		runner := &fakeRunner{panicOnRun: true}
		s := scheduler.New(runner, scheduler.Config{Workers: 1, QueueDepth: 8})
		defer s.Stop()

		h, err := s.Submit(ctx, newRequest(uuid.New(), 1))
		require.NoError(t, err)
		_, err = s.Await(ctx, h)
		require.Error(t, err)
		require.Contains(t, err.Error(), "internal fault")

		// the worker survived and keeps serving
		runner.panicOnRun = false
		h, err = s.Submit(ctx, newRequest(uuid.New(), 2))
		require.NoError(t, err)
		result, err := s.Await(ctx, h)
		require.NoError(t, err)
		require.Equal(t, domain.BacktestStatus_Succeeded, result.Status)
	})

	t.Run("await respects its context", func(t *testing.T) {
		runner := &fakeRunner{gate: make(chan struct{})}
		s := scheduler.New(runner, scheduler.Config{Workers: 1, QueueDepth: 8})
		defer s.Stop()
		defer close(runner.gate)

		h, err := s.Submit(ctx, newRequest(uuid.New(), 1))
		require.NoError(t, err)

		waitCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()
		_, err = s.Await(waitCtx, h)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("stop cancels still-queued jobs", func(t *testing.T) {
		runner := &fakeRunner{gate: make(chan struct{})}
		s := scheduler.New(runner, scheduler.Config{Workers: 1, QueueDepth: 8})

		strategyID := uuid.New()
		running, err := s.Submit(ctx, newRequest(strategyID, 1))
		require.NoError(t, err)
		awaitState(t, s, running, scheduler.State_Running)

		queued, err := s.Submit(ctx, newRequest(strategyID, 2))
		require.NoError(t, err)

		go func() {
			time.Sleep(20 * time.Millisecond)
			close(runner.gate)
		}()
		s.Stop()

		require.Equal(t, scheduler.State_Done, s.Status(running))
		require.Equal(t, scheduler.State_Cancelled, s.Status(queued))

		_, err = s.Submit(ctx, newRequest(strategyID, 3))
		require.Error(t, err)
	})

	t.Run("stop ends a running job as cancelled", func(t *testing.T) {
		runner := &fakeRunner{gate: make(chan struct{}), followCtx: true}
		s := scheduler.New(runner, scheduler.Config{Workers: 1, QueueDepth: 8})

		running, err := s.Submit(ctx, newRequest(uuid.New(), 1))
		require.NoError(t, err)
		awaitState(t, s, running, scheduler.State_Running)

		// the gate never opens; the run only ends because shutdown
		// cancels its context
		s.Stop()

		require.Equal(t, scheduler.State_Cancelled, s.Status(running))
		_, err = s.Await(ctx, running)
		require.ErrorIs(t, err, scheduler.ErrCancelled)
	})
}
