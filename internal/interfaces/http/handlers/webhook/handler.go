package webhook

import (
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/tracksync/internal/application/webhook/usecases"
	"github.com/orris-inc/tracksync/internal/shared/errors"
	"github.com/orris-inc/tracksync/internal/shared/logger"
	"github.com/orris-inc/tracksync/internal/shared/utils"
)

const (
	headerSignature = "Linear-Signature"
	headerDelivery  = "Linear-Delivery"

	maxBodyBytes = 1 << 20
)

type Handler struct {
	processUC usecases.ProcessEventExecutor
	logger    logger.Interface
}

func NewHandler(processUC usecases.ProcessEventExecutor, logger logger.Interface) *Handler {
	return &Handler{
		processUC: processUC,
		logger:    logger,
	}
}

// HandleLinear handles POST /api/v1/webhooks/linear. Only an authentication
// failure produces a non-2xx status.
func (h *Handler) HandleLinear(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			h.logger.Warnw("webhook payload too large",
				"limit", tooLarge.Limit,
				"delivery_id", c.GetHeader(headerDelivery),
			)
			utils.AcknowledgeWithError(c, errors.NewValidationError("webhook payload too large"))
			return
		}
		h.logger.Warnw("failed to read webhook body", "error", err)
		utils.AcknowledgeWithError(c, errors.NewValidationError("unreadable webhook body"))
		return
	}

	err = h.processUC.Execute(c.Request.Context(), usecases.ProcessEventCommand{
		Body:          body,
		Authorization: c.GetHeader("Authorization"),
		Signature:     c.GetHeader(headerSignature),
		DeliveryID:    c.GetHeader(headerDelivery),
	})
	if err != nil {
		if errors.IsWebhookAuthError(err) {
			utils.ErrorResponseWithError(c, err)
			return
		}
		utils.AcknowledgeWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", nil)
}
