package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/orris-inc/tracksync/internal/shared/logger"
)

const defaultSweepInterval = 5 * time.Minute

// OrphanProcessor removes customer requests whose create flow never linked
// a ticket.
type OrphanProcessor interface {
	Execute(ctx context.Context) (int64, error)
}

// OrphanSweeper runs the orphan cleanup on a fixed interval
type OrphanSweeper struct {
	processor OrphanProcessor
	logger    logger.Interface
	stopChan  chan struct{}
	stopOnce  sync.Once
	interval  time.Duration
}

func NewOrphanSweeper(
	processor OrphanProcessor,
	interval time.Duration,
	logger logger.Interface,
) *OrphanSweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &OrphanSweeper{
		processor: processor,
		logger:    logger,
		stopChan:  make(chan struct{}),
		interval:  interval,
	}
}

// Start blocks until ctx is cancelled or Stop is called.
func (s *OrphanSweeper) Start(ctx context.Context) {
	s.logger.Infow("starting orphan sweeper", "interval", s.interval)

	// Run immediately on start
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Infow("orphan sweeper stopped due to context cancellation")
			return
		case <-s.stopChan:
			s.logger.Infow("orphan sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop is safe to call more than once.
func (s *OrphanSweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

func (s *OrphanSweeper) sweep(ctx context.Context) {
	s.logger.Debugw("orphan sweep started")

	removed, err := s.processor.Execute(ctx)
	if err != nil {
		s.logger.Errorw("orphan sweep failed", "error", err)
		return
	}

	s.logger.Debugw("orphan sweep finished", "removed", removed)
}
