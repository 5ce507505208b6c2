package usecases

import (
	"context"
	"errors"

	"github.com/orris-inc/tracksync/internal/application/customerrequest/dto"
	"github.com/orris-inc/tracksync/internal/domain/customerrequest"
	apperrors "github.com/orris-inc/tracksync/internal/shared/errors"
	"github.com/orris-inc/tracksync/internal/shared/logger"
)

type GetRequestQuery struct {
	RequestID string
}

type GetRequestUseCase struct {
	repo   customerrequest.Repository
	logger logger.Interface
}

func NewGetRequestUseCase(repo customerrequest.Repository, logger logger.Interface) *GetRequestUseCase {
	return &GetRequestUseCase{
		repo:   repo,
		logger: logger,
	}
}

func (uc *GetRequestUseCase) Execute(ctx context.Context, query GetRequestQuery) (*dto.CustomerRequestDTO, error) {
	if query.RequestID == "" {
		return nil, apperrors.NewValidationError("request ID is required")
	}

	req, err := uc.repo.GetByID(ctx, query.RequestID)
	if err != nil {
		return nil, uc.translate(query.RequestID, err)
	}
	return dto.ToCustomerRequestDTO(req), nil
}

func (uc *GetRequestUseCase) translate(requestID string, err error) error {
	return translateRepoError(uc.logger, requestID, err, "failed to get customer request")
}

// translateRepoError maps repository failures onto application errors.
func translateRepoError(log logger.Interface, requestID string, err error, msg string) error {
	if errors.Is(err, customerrequest.ErrRequestNotFound) {
		return apperrors.NewNotFoundError("customer request not found", requestID)
	}
	log.Errorw(msg, "request_id", requestID, "error", err)
	return apperrors.NewInternalError(msg)
}
