package routes

import (
	"github.com/gin-gonic/gin"

	webhookhandlers "github.com/orris-inc/tracksync/internal/interfaces/http/handlers/webhook"
)

type WebhookRouteConfig struct {
	Handler *webhookhandlers.Handler
}

// SetupWebhookRoutes registers the tracker callbacks. They authenticate in
// the use case, against the raw body, so no auth middleware is attached.
func SetupWebhookRoutes(engine *gin.Engine, config *WebhookRouteConfig) {
	webhooks := engine.Group("/api/v1/webhooks")
	{
		webhooks.POST("/linear", config.Handler.HandleLinear)
	}
}
