package customerrequest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/tracksync/internal/application/customerrequest/usecases"
	"github.com/orris-inc/tracksync/internal/shared/errors"
	"github.com/orris-inc/tracksync/internal/shared/logger"
	"github.com/orris-inc/tracksync/internal/shared/utils"
)

type Handler struct {
	createUC usecases.CreateRequestExecutor
	getUC    usecases.GetRequestExecutor
	updateUC usecases.UpdateRequestExecutor
	deleteUC usecases.DeleteRequestExecutor
	listUC   usecases.ListRequestsExecutor
	logger   logger.Interface
}

func NewHandler(
	createUC usecases.CreateRequestExecutor,
	getUC usecases.GetRequestExecutor,
	updateUC usecases.UpdateRequestExecutor,
	deleteUC usecases.DeleteRequestExecutor,
	listUC usecases.ListRequestsExecutor,
	logger logger.Interface,
) *Handler {
	return &Handler{
		createUC: createUC,
		getUC:    getUC,
		updateUC: updateUC,
		deleteUC: deleteUC,
		listUC:   listUC,
		logger:   logger,
	}
}

// CreateRequest handles POST /api/v1/customer-requests
func (h *Handler) CreateRequest(c *gin.Context) {
	var req CreateCustomerRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create customer request", "error", err)
		utils.ErrorResponseWithError(c, utils.BindError(err))
		return
	}

	result, err := h.createUC.Execute(c.Request.Context(), req.ToCommand())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "Customer request created successfully")
}

// GetRequest handles GET /api/v1/customer-requests/:id
func (h *Handler) GetRequest(c *gin.Context) {
	requestID, err := parseRequestID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.getUC.Execute(c.Request.Context(), usecases.GetRequestQuery{RequestID: requestID})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// ListRequests handles GET /api/v1/customer-requests
func (h *Handler) ListRequests(c *gin.Context) {
	query, err := parseListRequest(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.listUC.Execute(c.Request.Context(), query)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", utils.CursorPage{
		Items:      result.Items,
		NextCursor: result.NextCursor,
	})
}

// UpdateRequest handles PATCH /api/v1/customer-requests/:id
func (h *Handler) UpdateRequest(c *gin.Context) {
	requestID, err := parseRequestID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req UpdateCustomerRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for update customer request", "request_id", requestID, "error", err)
		utils.ErrorResponseWithError(c, utils.BindError(err))
		return
	}

	result, err := h.updateUC.Execute(c.Request.Context(), req.ToCommand(requestID))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Customer request updated successfully", result)
}

// DeleteRequest handles DELETE /api/v1/customer-requests/:id
func (h *Handler) DeleteRequest(c *gin.Context) {
	requestID, err := parseRequestID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if err := h.deleteUC.Execute(c.Request.Context(), usecases.DeleteRequestCommand{RequestID: requestID}); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

func parseRequestID(c *gin.Context) (string, error) {
	requestID := c.Param("id")
	if requestID == "" {
		return "", errors.NewValidationError("Request ID is required")
	}
	return requestID, nil
}
