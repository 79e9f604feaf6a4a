package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/firecash/backend/internal/domain/ledger"
)

// Config holds obligation scheduler settings
type Config struct {
	TickInterval time.Duration
	BatchLimit   int
}

// DefaultConfig returns default scheduler settings
func DefaultConfig() Config {
	return Config{
		TickInterval: time.Hour,
		BatchLimit:   100,
	}
}

// Status is a snapshot of the scheduler's state for operational endpoints
type Status struct {
	IsRunning    bool          `json:"is_running"`
	TickInterval time.Duration `json:"tick_interval"`
	BatchLimit   int           `json:"batch_limit"`
	LastTickAt   *time.Time    `json:"last_tick_at,omitempty"`
	LastFired    int           `json:"last_fired"`
	TotalFired   uint64        `json:"total_fired"`
	LastError    string        `json:"last_error,omitempty"`
}

// ObligationScheduler materializes due recurring obligations into ledger
// entries. All claim/insert/advance atomicity lives in the repository's
// FireDue; the scheduler is a thin tick loop around it, so any number of
// instances (embedded in servers or standalone workers) can run against the
// same database without coordinating with each other.
type ObligationScheduler struct {
	config      Config
	obligations ledger.ObligationRepository
	clock       Clock
	logger      *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	lastTickAt *time.Time
	lastFired  int
	totalFired uint64
	lastError  string
}

// NewObligationScheduler creates a scheduler. A nil clock means wall time.
func NewObligationScheduler(config Config, obligations ledger.ObligationRepository, clock Clock, logger *zap.Logger) *ObligationScheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ObligationScheduler{
		config:      config,
		obligations: obligations,
		clock:       clock,
		logger:      logger.Named("scheduler"),
	}
}

// Start launches the tick loop. Idempotent.
func (s *ObligationScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("obligation scheduler started",
		zap.Duration("tick_interval", s.config.TickInterval),
		zap.Int("batch_limit", s.config.BatchLimit),
	)
	return nil
}

// Stop gracefully stops the tick loop
func (s *ObligationScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("obligation scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("obligation scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *ObligationScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	// Fire immediately on start, then on every tick.
	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error("tick failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error("tick failed", zap.Error(err))
			}
		}
	}
}

// RunOnce performs a single tick: claim up to BatchLimit due obligations and
// materialize each exactly once. An obligation still overdue after its
// single-interval advance waits for the next tick, so catch-up after
// downtime is incremental rather than a burst. Errors abort the tick; the
// repository has already rolled the batch back, and the next tick retries.
func (s *ObligationScheduler) RunOnce(ctx context.Context) (int, error) {
	now := s.clock.Now()
	results, err := s.obligations.FireDue(ctx, now, s.config.BatchLimit)

	s.mu.Lock()
	defer s.mu.Unlock()
	tickAt := now
	s.lastTickAt = &tickAt
	if err != nil {
		s.lastError = err.Error()
		s.lastFired = 0
		return 0, err
	}
	s.lastError = ""
	s.lastFired = len(results)
	s.totalFired += uint64(len(results))

	if len(results) > 0 {
		s.logger.Info("obligations fired",
			zap.Int("count", len(results)),
			zap.Time("tick_at", now),
		)
	}
	return len(results), nil
}

// TriggerManualRun fires one tick outside the schedule
func (s *ObligationScheduler) TriggerManualRun(ctx context.Context) (int, error) {
	s.mu.Lock()
	running := s.isRunning
	s.mu.Unlock()
	if !running {
		return 0, ErrSchedulerNotRunning
	}
	return s.RunOnce(ctx)
}

// GetStatus returns a snapshot of the scheduler state
func (s *ObligationScheduler) GetStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		IsRunning:    s.isRunning,
		TickInterval: s.config.TickInterval,
		BatchLimit:   s.config.BatchLimit,
		LastTickAt:   s.lastTickAt,
		LastFired:    s.lastFired,
		TotalFired:   s.totalFired,
		LastError:    s.lastError,
	}
}
