package mappers

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/orris-inc/tracksync/internal/domain/customerrequest"
	vo "github.com/orris-inc/tracksync/internal/domain/customerrequest/valueobjects"
	"github.com/orris-inc/tracksync/internal/infrastructure/persistence/models"
	"github.com/orris-inc/tracksync/internal/shared/mapper"
)

// CustomerRequestMapper converts between the aggregate and its row.
type CustomerRequestMapper interface {
	ToModel(r *customerrequest.CustomerRequest) (*models.CustomerRequestModel, error)
	ToDomain(model *models.CustomerRequestModel) (*customerrequest.CustomerRequest, error)
	ToDomainList(rows []models.CustomerRequestModel) ([]*customerrequest.CustomerRequest, error)
}

type customerRequestMapper struct{}

func NewCustomerRequestMapper() CustomerRequestMapper {
	return &customerRequestMapper{}
}

func (m *customerRequestMapper) ToModel(r *customerrequest.CustomerRequest) (*models.CustomerRequestModel, error) {
	md, err := MetadataToJSON(r.Metadata())
	if err != nil {
		return nil, err
	}

	model := &models.CustomerRequestModel{
		ID:               r.ID(),
		Content:          r.Content(),
		Type:             r.Type().String(),
		Status:           r.Status().String(),
		ExternalUserID:   r.ExternalUserID(),
		UserName:         r.UserName(),
		ProjectID:        r.ScopeID(),
		ExternalTicketID: r.ExternalTicketID(),
		Response:         r.Response(),
		Source:           r.Source(),
		Metadata:         md,
		Version:          r.Version(),
		CreatedAt:        r.CreatedAt().UnixMilli(),
		UpdatedAt:        r.UpdatedAt().UnixMilli(),
	}
	if r.DeletedAt() != nil {
		deleted := r.DeletedAt().UnixMilli()
		model.DeletedAt = &deleted
	}
	return model, nil
}

func (m *customerRequestMapper) ToDomain(model *models.CustomerRequestModel) (*customerrequest.CustomerRequest, error) {
	var md customerrequest.Metadata
	if len(model.Metadata) > 0 {
		if err := json.Unmarshal(model.Metadata, &md); err != nil {
			return nil, fmt.Errorf("failed to decode metadata of %s: %w", model.ID, err)
		}
	}

	var deletedAt *time.Time
	if model.DeletedAt != nil {
		t := time.UnixMilli(*model.DeletedAt).UTC()
		deletedAt = &t
	}

	return customerrequest.ReconstructCustomerRequest(
		model.ID,
		model.Content,
		vo.RequestType(model.Type),
		vo.Status(model.Status),
		model.ExternalUserID,
		model.UserName,
		model.ProjectID,
		model.ExternalTicketID,
		model.Response,
		model.Source,
		md,
		model.Version,
		time.UnixMilli(model.CreatedAt).UTC(),
		time.UnixMilli(model.UpdatedAt).UTC(),
		deletedAt,
	)
}

func (m *customerRequestMapper) ToDomainList(rows []models.CustomerRequestModel) ([]*customerrequest.CustomerRequest, error) {
	ptrs := make([]*models.CustomerRequestModel, len(rows))
	for i := range rows {
		ptrs[i] = &rows[i]
	}
	return mapper.MapSlicePtrWithID(ptrs, m.ToDomain, func(row *models.CustomerRequestModel) string {
		return row.ID
	})
}

// MetadataToJSON encodes metadata for the JSON column. Empty metadata is stored as NULL.
func MetadataToJSON(md customerrequest.Metadata) (datatypes.JSON, error) {
	if md.IsEmpty() {
		return nil, nil
	}
	b, err := json.Marshal(md)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	return datatypes.JSON(b), nil
}
