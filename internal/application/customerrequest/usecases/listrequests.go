package usecases

import (
	"context"

	"github.com/orris-inc/tracksync/internal/application/customerrequest/dto"
	"github.com/orris-inc/tracksync/internal/domain/customerrequest"
	vo "github.com/orris-inc/tracksync/internal/domain/customerrequest/valueobjects"
	"github.com/orris-inc/tracksync/internal/shared/config"
	apperrors "github.com/orris-inc/tracksync/internal/shared/errors"
	"github.com/orris-inc/tracksync/internal/shared/logger"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type ListRequestsQuery struct {
	Status         *string
	ExternalUserID *string
	Cursor         string
	// Limit of zero selects the default page size.
	Limit int
}

type ListRequestsUseCase struct {
	repo         customerrequest.Repository
	defaultLimit int
	maxLimit     int
	logger       logger.Interface
}

func NewListRequestsUseCase(repo customerrequest.Repository, cfg config.PaginationConfig, logger logger.Interface) *ListRequestsUseCase {
	uc := &ListRequestsUseCase{
		repo:         repo,
		defaultLimit: cfg.DefaultLimit,
		maxLimit:     cfg.MaxLimit,
		logger:       logger,
	}
	if uc.maxLimit <= 0 {
		uc.maxLimit = maxPageSize
	}
	if uc.defaultLimit <= 0 || uc.defaultLimit > uc.maxLimit {
		uc.defaultLimit = min(defaultPageSize, uc.maxLimit)
	}
	return uc
}

func (uc *ListRequestsUseCase) Execute(ctx context.Context, query ListRequestsQuery) (*dto.ListResult, error) {
	limit := query.Limit
	if limit == 0 {
		limit = uc.defaultLimit
	}
	if limit < 1 || limit > uc.maxLimit {
		return nil, apperrors.NewValidationError("invalid limit", "limit must be between 1 and the page size maximum")
	}

	filter := customerrequest.ListFilter{
		ExternalUserID: query.ExternalUserID,
		Cursor:         query.Cursor,
		// One extra row tells whether another page exists.
		Limit: limit + 1,
	}
	if query.Status != nil {
		s, err := vo.NewStatus(*query.Status)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
		filter.Status = &s
	}

	rows, err := uc.repo.List(ctx, filter)
	if err != nil {
		uc.logger.Errorw("failed to list customer requests", "error", err)
		return nil, apperrors.NewInternalError("failed to list customer requests")
	}

	result := &dto.ListResult{}
	if len(rows) > limit {
		rows = rows[:limit]
		next := rows[limit-1].ID()
		result.NextCursor = &next
	}
	result.Items = dto.ToCustomerRequestDTOList(rows)
	return result, nil
}
