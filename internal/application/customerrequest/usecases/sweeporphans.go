package usecases

import (
	"context"
	"time"

	"github.com/orris-inc/tracksync/internal/domain/customerrequest"
	"github.com/orris-inc/tracksync/internal/shared/logger"
)

// SweepOrphansUseCase removes records that never got a ticket linked, which
// happens only when the create flow crashed before compensating.
type SweepOrphansUseCase struct {
	repo        customerrequest.Repository
	gracePeriod time.Duration
	logger      logger.Interface
	now         func() time.Time
}

func NewSweepOrphansUseCase(repo customerrequest.Repository, gracePeriod time.Duration, logger logger.Interface) *SweepOrphansUseCase {
	return &SweepOrphansUseCase{
		repo:        repo,
		gracePeriod: gracePeriod,
		logger:      logger,
		now:         time.Now,
	}
}

func (uc *SweepOrphansUseCase) Execute(ctx context.Context) (int64, error) {
	cutoff := uc.now().Add(-uc.gracePeriod)
	n, err := uc.repo.DeleteIncompleteBefore(ctx, cutoff)
	if err != nil {
		uc.logger.Errorw("orphan sweep failed", "cutoff", cutoff, "error", err)
		return 0, err
	}
	if n > 0 {
		uc.logger.Infow("orphan sweep removed records", "count", n)
	}
	return n, nil
}
