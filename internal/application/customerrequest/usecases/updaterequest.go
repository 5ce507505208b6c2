package usecases

import (
	"context"
	"time"

	"github.com/orris-inc/tracksync/internal/application/customerrequest/dto"
	"github.com/orris-inc/tracksync/internal/domain/customerrequest"
	vo "github.com/orris-inc/tracksync/internal/domain/customerrequest/valueobjects"
	apperrors "github.com/orris-inc/tracksync/internal/shared/errors"
	"github.com/orris-inc/tracksync/internal/shared/logger"
)

// UpdateRequestCommand carries a partial update. Nil fields are untouched.
type UpdateRequestCommand struct {
	RequestID string
	Status    *string
	Content   *string
	Type      *string
	Response  *string
	Metadata  *customerrequest.Metadata
}

type UpdateRequestUseCase struct {
	repo   customerrequest.Repository
	logger logger.Interface
	now    func() time.Time
}

func NewUpdateRequestUseCase(repo customerrequest.Repository, logger logger.Interface) *UpdateRequestUseCase {
	return &UpdateRequestUseCase{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (uc *UpdateRequestUseCase) Execute(ctx context.Context, cmd UpdateRequestCommand) (*dto.CustomerRequestDTO, error) {
	uc.logger.Infow("executing update customer request use case", "request_id", cmd.RequestID)

	if cmd.RequestID == "" {
		return nil, apperrors.NewValidationError("request ID is required")
	}

	patch, err := cmd.toPatch()
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Update(ctx, cmd.RequestID, patch, uc.now()); err != nil {
		return nil, translateRepoError(uc.logger, cmd.RequestID, err, "failed to update customer request")
	}

	updated, err := uc.repo.GetByID(ctx, cmd.RequestID)
	if err != nil {
		return nil, translateRepoError(uc.logger, cmd.RequestID, err, "failed to get customer request")
	}

	uc.logger.Infow("customer request updated", "request_id", cmd.RequestID, "status", updated.Status())
	return dto.ToCustomerRequestDTO(updated), nil
}

func (cmd UpdateRequestCommand) toPatch() (customerrequest.Patch, error) {
	patch := customerrequest.Patch{
		Content:  cmd.Content,
		Response: cmd.Response,
		Metadata: cmd.Metadata,
	}
	if cmd.Status != nil {
		s, err := vo.NewStatus(*cmd.Status)
		if err != nil {
			return patch, apperrors.NewValidationError(err.Error())
		}
		patch.Status = &s
	}
	if cmd.Type != nil {
		t, err := vo.NewRequestType(*cmd.Type)
		if err != nil {
			return patch, apperrors.NewValidationError(err.Error())
		}
		patch.Type = &t
	}
	if err := patch.Validate(); err != nil {
		return patch, apperrors.NewValidationError(err.Error())
	}
	return patch, nil
}
