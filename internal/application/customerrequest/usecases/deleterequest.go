package usecases

import (
	"context"
	"time"

	"github.com/orris-inc/tracksync/internal/domain/customerrequest"
	apperrors "github.com/orris-inc/tracksync/internal/shared/errors"
	"github.com/orris-inc/tracksync/internal/shared/logger"
)

type DeleteRequestCommand struct {
	RequestID string
}

// DeleteRequestUseCase soft-deletes a request. Deleting an already deleted
// request reports not found.
type DeleteRequestUseCase struct {
	repo   customerrequest.Repository
	logger logger.Interface
	now    func() time.Time
}

func NewDeleteRequestUseCase(repo customerrequest.Repository, logger logger.Interface) *DeleteRequestUseCase {
	return &DeleteRequestUseCase{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (uc *DeleteRequestUseCase) Execute(ctx context.Context, cmd DeleteRequestCommand) error {
	if cmd.RequestID == "" {
		return apperrors.NewValidationError("request ID is required")
	}

	if err := uc.repo.SoftDelete(ctx, cmd.RequestID, uc.now()); err != nil {
		return translateRepoError(uc.logger, cmd.RequestID, err, "failed to delete customer request")
	}

	uc.logger.Infow("customer request deleted", "request_id", cmd.RequestID)
	return nil
}
