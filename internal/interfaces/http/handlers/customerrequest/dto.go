package customerrequest

import (
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/orris-inc/tracksync/internal/application/customerrequest/usecases"
	"github.com/orris-inc/tracksync/internal/domain/customerrequest"
	vo "github.com/orris-inc/tracksync/internal/domain/customerrequest/valueobjects"
	"github.com/orris-inc/tracksync/internal/shared/errors"
	"github.com/orris-inc/tracksync/internal/shared/utils"
)

type CreateCustomerRequestRequest struct {
	Content        string                    `json:"content" binding:"required,max=20000"`
	Type           string                    `json:"type" binding:"required,request_type"`
	ExternalUserID string                    `json:"external_user_id" binding:"required,max=255"`
	UserName       *string                   `json:"user_name,omitempty" binding:"omitempty,max=255"`
	ProjectID      string                    `json:"project_id" binding:"required,max=255"`
	Source         *string                   `json:"source,omitempty" binding:"omitempty,max=255"`
	Reason         *string                   `json:"reason,omitempty" binding:"omitempty,max=2000"`
	Metadata       *customerrequest.Metadata `json:"metadata,omitempty"`
}

func (r *CreateCustomerRequestRequest) ToCommand() usecases.CreateRequestCommand {
	cmd := usecases.CreateRequestCommand{
		Content:        r.Content,
		Type:           r.Type,
		ExternalUserID: r.ExternalUserID,
		UserName:       r.UserName,
		ProjectID:      r.ProjectID,
		Source:         r.Source,
		Reason:         r.Reason,
	}
	if r.Metadata != nil {
		cmd.Metadata = *r.Metadata
	}
	return cmd
}

type UpdateCustomerRequestRequest struct {
	Status   *string                   `json:"status,omitempty" binding:"omitempty,request_status"`
	Content  *string                   `json:"content,omitempty" binding:"omitempty,min=1,max=20000"`
	Type     *string                   `json:"type,omitempty" binding:"omitempty,request_type"`
	Response *string                   `json:"response,omitempty"`
	Metadata *customerrequest.Metadata `json:"metadata,omitempty"`
}

func (r *UpdateCustomerRequestRequest) ToCommand(requestID string) usecases.UpdateRequestCommand {
	return usecases.UpdateRequestCommand{
		RequestID: requestID,
		Status:    r.Status,
		Content:   r.Content,
		Type:      r.Type,
		Response:  r.Response,
		Metadata:  r.Metadata,
	}
}

func parseListRequest(c *gin.Context) (usecases.ListRequestsQuery, error) {
	var query usecases.ListRequestsQuery

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return query, errors.NewValidationError("Invalid limit", "limit must be a positive integer")
		}
		query.Limit = limit
	}

	if status := c.Query("status"); status != "" {
		if !vo.Status(status).IsValid() {
			return query, errors.NewValidationError("Invalid status", status)
		}
		query.Status = &status
	}

	if userID := c.Query("external_user_id"); userID != "" {
		query.ExternalUserID = &userID
	}

	query.Cursor = c.Query("cursor")
	return query, nil
}

var registerOnce sync.Once

// RegisterValidators installs the request_type and request_status binding
// tags on gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(utils.JSONTagName)
		_ = v.RegisterValidation("request_type", func(fl validator.FieldLevel) bool {
			return vo.RequestType(fl.Field().String()).IsValid()
		})
		_ = v.RegisterValidation("request_status", func(fl validator.FieldLevel) bool {
			return vo.Status(fl.Field().String()).IsValid()
		})
	})
}
