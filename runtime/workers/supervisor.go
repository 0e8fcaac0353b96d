package workers

import (
	"chat-sync/contract"
	"chat-sync/errors"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	waitTimeBeforeRestart = 200 * time.Millisecond
	maxWaitBeforeRestart  = 10 * time.Second
)

// Supervisor Own a context and a Cancel function
// Run each worker in a goroutine
// Check panics and errors
// Restart failed workers, doubling the delay while they keep failing fast
// Shutdown properly if parent context is canceled
type Supervisor struct {
	Cancel       context.CancelFunc
	wg           *sync.WaitGroup
	log          *slog.Logger
	workers      []contract.Worker
	restartDelay time.Duration
	maxDelay     time.Duration
	onRestart    func(name string)
}

type SupervisorOption func(*Supervisor)

func WithRestartDelay(initial, max time.Duration) SupervisorOption {
	return func(s *Supervisor) {
		s.restartDelay = initial
		s.maxDelay = max
	}
}

// WithRestartHook is called before each restart, typically to count it.
func WithRestartHook(hook func(name string)) SupervisorOption {
	return func(s *Supervisor) { s.onRestart = hook }
}

func NewSupervisor(log *slog.Logger, opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		wg:           &sync.WaitGroup{},
		log:          log,
		restartDelay: waitTimeBeforeRestart,
		maxDelay:     maxWaitBeforeRestart,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run starts every added worker and blocks until all of them are done.
// Canceling ctx or calling Stop ends the supervision.
func (s *Supervisor) Run(ctx context.Context) {
	supervisedCtx, cancel := context.WithCancel(ctx)
	s.Cancel = cancel
	defer s.Cancel()

	for _, worker := range s.workers {
		s.Start(supervisedCtx, worker)
	}
	s.wg.Wait()
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.workers = append(s.workers, worker...)
	return s
}

// Start runs a worker under supervision in a dedicated goroutine.
// A panic or an error restarts it; returning nil ends it for good.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	workerName := contract.GetWorkerName(worker)

	go func() {
		defer s.wg.Done()

		delay := s.restartDelay
		for {
			if ctx.Err() != nil {
				s.log.Debug(fmt.Sprintf("Stopping : %s", workerName))
				return
			}

			startedAt := time.Now()
			err := func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						err = fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r)
					}
				}()
				return worker.Run(ctx)
			}()

			if err == nil {
				// Terminated properly, never restart !
				s.log.Debug(fmt.Sprintf("Worker finished : %s", workerName))
				return
			}

			if ctx.Err() != nil {
				s.log.Debug("Worker stopped (context canceled)", "name", workerName)
				return
			}

			// A worker that ran for a while before failing starts again from the initial delay
			if time.Since(startedAt) > s.maxDelay {
				delay = s.restartDelay
			}
			s.log.Warn("Worker failed, restarting", "name", workerName, "error", err, "delay", delay)
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			if s.onRestart != nil {
				s.onRestart(workerName)
			}
			delay = min(2*delay, s.maxDelay)
		}
	}()
}

// Stop Cancel all goroutines listening channel for Ctx.Done
// Supervisor will wait for all goroutines to finish
func (s *Supervisor) Stop() {
	if s.Cancel != nil {
		s.Cancel()
	}
}
