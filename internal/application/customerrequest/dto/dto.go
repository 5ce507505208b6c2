package dto

import (
	"time"

	"github.com/orris-inc/tracksync/internal/domain/customerrequest"
	"github.com/orris-inc/tracksync/internal/shared/mapper"
)

type CustomerRequestDTO struct {
	ID               string                    `json:"id"`
	CreatedAt        time.Time                 `json:"created_at"`
	UpdatedAt        time.Time                 `json:"updated_at"`
	Content          string                    `json:"content"`
	Type             string                    `json:"type"`
	Status           string                    `json:"status"`
	ExternalUserID   string                    `json:"external_user_id"`
	UserName         *string                   `json:"user_name"`
	ProjectID        string                    `json:"project_id"`
	ExternalTicketID *string                   `json:"external_ticket_id"`
	Response         *string                   `json:"response"`
	Source           *string                   `json:"source"`
	Metadata         *customerrequest.Metadata `json:"metadata"`
	DeletedAt        *time.Time                `json:"deleted_at"`
}

// ListResult is one page of requests. NextCursor is nil on the last page.
type ListResult struct {
	Items      []*CustomerRequestDTO
	NextCursor *string
}

func ToCustomerRequestDTO(r *customerrequest.CustomerRequest) *CustomerRequestDTO {
	if r == nil {
		return nil
	}

	out := &CustomerRequestDTO{
		ID:               r.ID(),
		CreatedAt:        r.CreatedAt(),
		UpdatedAt:        r.UpdatedAt(),
		Content:          r.Content(),
		Type:             r.Type().String(),
		Status:           r.Status().String(),
		ExternalUserID:   r.ExternalUserID(),
		UserName:         r.UserName(),
		ProjectID:        r.ScopeID(),
		ExternalTicketID: r.ExternalTicketID(),
		Response:         r.Response(),
		Source:           r.Source(),
		DeletedAt:        r.DeletedAt(),
	}
	if md := r.Metadata(); !md.IsEmpty() {
		out.Metadata = &md
	}
	return out
}

func ToCustomerRequestDTOList(rs []*customerrequest.CustomerRequest) []*CustomerRequestDTO {
	return mapper.MapSlice(rs, ToCustomerRequestDTO)
}
