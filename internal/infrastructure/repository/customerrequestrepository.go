package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/orris-inc/tracksync/internal/domain/customerrequest"
	"github.com/orris-inc/tracksync/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/tracksync/internal/infrastructure/persistence/models"
	"github.com/orris-inc/tracksync/internal/shared/db"
	"github.com/orris-inc/tracksync/internal/shared/logger"
)

type CustomerRequestRepository struct {
	db     *gorm.DB
	mapper mappers.CustomerRequestMapper
	logger logger.Interface
}

func NewCustomerRequestRepository(gdb *gorm.DB, log logger.Interface) *CustomerRequestRepository {
	return &CustomerRequestRepository{
		db:     gdb,
		mapper: mappers.NewCustomerRequestMapper(),
		logger: log,
	}
}

var _ customerrequest.Repository = (*CustomerRequestRepository)(nil)

func (r *CustomerRequestRepository) model(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.CustomerRequestModel{})
}

func (r *CustomerRequestRepository) Create(ctx context.Context, req *customerrequest.CustomerRequest) error {
	model, err := r.mapper.ToModel(req)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create customer request: %w", err)
	}
	return nil
}

func (r *CustomerRequestRepository) HardDelete(ctx context.Context, requestID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", requestID).
		Delete(&models.CustomerRequestModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete customer request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return customerrequest.ErrRequestNotFound
	}
	return nil
}

func (r *CustomerRequestRepository) LinkTicket(ctx context.Context, requestID, ticketID string, at time.Time) error {
	result := r.model(ctx).
		Scopes(db.NotDeleted()).
		Where("id = ? AND external_ticket_id IS NULL", requestID).
		Updates(map[string]any{
			"external_ticket_id": ticketID,
			"updated_at":         at.UnixMilli(),
			"version":            gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to link ticket: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return customerrequest.ErrRequestNotFound
	}
	return nil
}

func (r *CustomerRequestRepository) GetByID(ctx context.Context, requestID string) (*customerrequest.CustomerRequest, error) {
	return r.first(ctx, "id = ?", requestID)
}

func (r *CustomerRequestRepository) GetByExternalTicketID(ctx context.Context, ticketID string) (*customerrequest.CustomerRequest, error) {
	return r.first(ctx, "external_ticket_id = ?", ticketID)
}

func (r *CustomerRequestRepository) first(ctx context.Context, query string, arg any) (*customerrequest.CustomerRequest, error) {
	var model models.CustomerRequestModel
	err := r.db.WithContext(ctx).
		Scopes(db.NotDeleted()).
		Where(query, arg).
		Order("id ASC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customerrequest.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to find customer request: %w", err)
	}
	return r.mapper.ToDomain(&model)
}

func (r *CustomerRequestRepository) Update(ctx context.Context, requestID string, patch customerrequest.Patch, at time.Time) error {
	updates := map[string]any{
		"updated_at": at.UnixMilli(),
		"version":    gorm.Expr("version + 1"),
	}
	if patch.Status != nil {
		updates["status"] = patch.Status.String()
	}
	if patch.Content != nil {
		updates["content"] = *patch.Content
	}
	if patch.Type != nil {
		updates["type"] = patch.Type.String()
	}
	if patch.Response != nil {
		updates["response"] = *patch.Response
	}
	if patch.Metadata != nil {
		md, err := mappers.MetadataToJSON(*patch.Metadata)
		if err != nil {
			return err
		}
		updates["metadata"] = nullableJSON(md)
	}

	result := r.model(ctx).
		Scopes(db.NotDeleted()).
		Where("id = ?", requestID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update customer request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return customerrequest.ErrRequestNotFound
	}
	return nil
}

func (r *CustomerRequestRepository) Save(ctx context.Context, req *customerrequest.CustomerRequest, guarded bool) error {
	md, err := mappers.MetadataToJSON(req.Metadata())
	if err != nil {
		return err
	}

	updates := map[string]any{
		"status":     req.Status().String(),
		"metadata":   nullableJSON(md),
		"response":   req.Response(),
		"updated_at": req.UpdatedAt().UnixMilli(),
		"version":    gorm.Expr("version + 1"),
	}

	query := r.model(ctx).
		Scopes(db.NotDeleted()).
		Where("id = ?", req.ID())
	if guarded {
		query = query.Where("version = ?", req.Version())
	}

	result := query.Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to save customer request: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}
	if !guarded {
		return customerrequest.ErrRequestNotFound
	}

	// Zero rows under a version guard: either the row is gone or it moved on.
	if _, err := r.GetByID(ctx, req.ID()); err != nil {
		return err
	}
	return customerrequest.ErrVersionConflict
}

func (r *CustomerRequestRepository) SoftDelete(ctx context.Context, requestID string, at time.Time) error {
	ms := at.UnixMilli()
	result := r.model(ctx).
		Scopes(db.NotDeleted()).
		Where("id = ?", requestID).
		Updates(map[string]any{
			"deleted_at": ms,
			"updated_at": ms,
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to soft delete customer request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return customerrequest.ErrRequestNotFound
	}
	return nil
}

func (r *CustomerRequestRepository) List(ctx context.Context, filter customerrequest.ListFilter) ([]*customerrequest.CustomerRequest, error) {
	query := r.db.WithContext(ctx).
		Scopes(db.NotDeleted(), db.AfterCursor(filter.Cursor))

	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}
	if filter.ExternalUserID != nil {
		query = query.Where("external_user_id = ?", *filter.ExternalUserID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []models.CustomerRequestModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list customer requests: %w", err)
	}
	return r.mapper.ToDomainList(rows)
}

func (r *CustomerRequestRepository) DeleteIncompleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("external_ticket_id IS NULL AND created_at < ?", cutoff.UnixMilli()).
		Delete(&models.CustomerRequestModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete incomplete customer requests: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		r.logger.Warnw("removed customer requests without a linked ticket",
			"count", result.RowsAffected,
			"cutoff", cutoff,
		)
	}
	return result.RowsAffected, nil
}

// nullableJSON makes an empty document an explicit SQL NULL in update maps.
func nullableJSON(md datatypes.JSON) any {
	if len(md) == 0 {
		return gorm.Expr("NULL")
	}
	return md
}
