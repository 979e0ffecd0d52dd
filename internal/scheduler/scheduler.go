package scheduler

import (
	"context"
	"errors"
	"fmt"
	"quantlab/internal/domain"
	"quantlab/internal/logger"
	"sync"
)

// BacktestRunner is the behavior the scheduler drives: synchronous
// validation at admission, then one execution per dequeued job.
// Declared here so the scheduler depends only on its consumer-side
// contract.
type BacktestRunner interface {
	Validate(ctx context.Context, req domain.BacktestRequest) error
	Run(ctx context.Context, req domain.BacktestRequest) (*domain.BacktestResult, error)
}

type State string

const (
	State_Pending   State = "pending"
	State_Running   State = "running"
	State_Done      State = "done"
	State_Cancelled State = "cancelled"
)

var (
	ErrQueueFull = errors.New("backtest queue is full")
	ErrCancelled = errors.New("backtest request was cancelled")
)

type Config struct {
	// Workers bounds concurrently running executions.
	Workers int
	// QueueDepth bounds admitted-but-not-started requests.
	QueueDepth int
}

func DefaultConfig() Config {
	return Config{Workers: 4, QueueDepth: 256}
}

// Handle identifies one submission. Submissions sharing a fingerprint
// share the underlying job, and with it the single execution's result.
type Handle struct {
	Fingerprint string
	job         *job
}

type job struct {
	fingerprint string
	req         domain.BacktestRequest

	mu     sync.Mutex
	state  State
	result *domain.BacktestResult
	err    error
	done   chan struct{}
}

func (j *job) currentState() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Scheduler admits backtest requests, dedups them by fingerprint and
// feeds a bounded worker pool in FIFO arrival order. The admission
// map is the only mutable shared state; it is updated atomically on
// submit and completion to keep at most one in-flight execution per
// fingerprint.
type Scheduler struct {
	runner BacktestRunner
	cfg    Config

	mu       sync.Mutex
	inflight map[string]*job
	stopped  bool

	queue   chan *job
	baseCtx context.Context
	stop    context.CancelFunc
	wg      sync.WaitGroup
}

func New(runner BacktestRunner, cfg Config) *Scheduler {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = DefaultConfig().QueueDepth
	}

	baseCtx, stop := context.WithCancel(context.Background())
	s := &Scheduler{
		runner:   runner,
		cfg:      cfg,
		inflight: map[string]*job{},
		queue:    make(chan *job, cfg.QueueDepth),
		baseCtx:  baseCtx,
		stop:     stop,
	}

	for i := 0; i < cfg.Workers; i++ {
		s.wg.Add(1)
		go s.work()
	}

	return s
}

// Submit validates the request synchronously, then either attaches to
// the in-flight execution with the same fingerprint or queues a new
// one. Validation failures never enter the queue.
func (s *Scheduler) Submit(ctx context.Context, req domain.BacktestRequest) (*Handle, error) {
	if err := s.runner.Validate(ctx, req); err != nil {
		return nil, err
	}

	fingerprint := req.Fingerprint()

	// admission happens entirely under the lock: Stop flips stopped
	// before closing the queue under the same lock, so a send here can
	// never hit a closed channel, and a same-fingerprint submission
	// can never attach to a job that queue-full is about to reject.
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, fmt.Errorf("scheduler is stopped")
	}
	if existing, ok := s.inflight[fingerprint]; ok {
		return &Handle{Fingerprint: fingerprint, job: existing}, nil
	}

	j := &job{
		fingerprint: fingerprint,
		req:         req,
		state:       State_Pending,
		done:        make(chan struct{}),
	}
	select {
	case s.queue <- j:
	default:
		return nil, ErrQueueFull
	}
	s.inflight[fingerprint] = j

	return &Handle{Fingerprint: fingerprint, job: j}, nil
}

func (s *Scheduler) Status(h *Handle) State {
	return h.job.currentState()
}

// Lookup reports the state of an in-flight fingerprint, if any.
func (s *Scheduler) Lookup(fingerprint string) (State, bool) {
	s.mu.Lock()
	j, ok := s.inflight[fingerprint]
	s.mu.Unlock()
	if !ok {
		return "", false
	}
	return j.currentState(), true
}

// Await blocks until the handle's execution reaches a terminal state
// or ctx expires.
func (s *Scheduler) Await(ctx context.Context, h *Handle) (*domain.BacktestResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.job.done:
	}

	h.job.mu.Lock()
	defer h.job.mu.Unlock()
	if h.job.state == State_Cancelled {
		return nil, ErrCancelled
	}
	return h.job.result, h.job.err
}

// Cancel removes a pending request from the queue. A running
// execution is not interruptible from here; once started it ends with
// the sandbox's wall-clock budget or with scheduler shutdown, so
// partial-state cleanup stays inside the isolation boundary.
func (s *Scheduler) Cancel(h *Handle) bool {
	j := h.job
	j.mu.Lock()
	if j.state != State_Pending {
		j.mu.Unlock()
		return false
	}
	j.state = State_Cancelled
	close(j.done)
	j.mu.Unlock()

	s.mu.Lock()
	delete(s.inflight, j.fingerprint)
	s.mu.Unlock()
	return true
}

// Stop drains the pool. Running executions observe the cancelled base
// context and terminate as cancelled without persisting a result;
// still-queued jobs terminate as cancelled.
func (s *Scheduler) Stop() {
	s.stop()

	s.mu.Lock()
	s.stopped = true
	close(s.queue)
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Scheduler) work() {
	defer s.wg.Done()
	for j := range s.queue {
		select {
		case <-s.baseCtx.Done():
			s.cancelQueued(j)
			continue
		default:
		}
		s.runJob(j)
	}
}

func (s *Scheduler) cancelQueued(j *job) {
	j.mu.Lock()
	if j.state == State_Pending {
		j.state = State_Cancelled
		close(j.done)
	}
	j.mu.Unlock()

	s.mu.Lock()
	delete(s.inflight, j.fingerprint)
	s.mu.Unlock()
}

func (s *Scheduler) runJob(j *job) {
	j.mu.Lock()
	if j.state != State_Pending {
		// cancelled while queued
		j.mu.Unlock()
		return
	}
	j.state = State_Running
	j.mu.Unlock()

	result, err := s.runSafely(j)

	j.mu.Lock()
	if errors.Is(err, context.Canceled) {
		// shutdown interrupted the run; nothing was persisted
		j.state = State_Cancelled
	} else {
		j.result = result
		j.err = err
		j.state = State_Done
	}
	close(j.done)
	j.mu.Unlock()

	s.mu.Lock()
	delete(s.inflight, j.fingerprint)
	s.mu.Unlock()
}

// runSafely keeps a misbehaving execution from taking down the worker
// pool: any panic that escapes the runner is converted to an error on
// the job.
func (s *Scheduler) runSafely(j *job) (result *domain.BacktestResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.FromContext(s.baseCtx).Errorw("backtest run panicked",
				"fingerprint", j.fingerprint, "panic", r)
			result = nil
			err = fmt.Errorf("internal fault while running backtest %s: %v", j.fingerprint, r)
		}
	}()

	return s.runner.Run(s.baseCtx, j.req)
}
