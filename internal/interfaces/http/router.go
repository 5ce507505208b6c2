package http

import (
	"github.com/orris-inc/tracksync/internal/interfaces/http/middleware"
	"github.com/orris-inc/tracksync/internal/interfaces/http/routes"
)

// SetupRoutes configures all HTTP routes
func (c *Container) SetupRoutes() {
	c.engine.Use(middleware.Logger(c.log))
	c.engine.Use(middleware.Recovery(c.log))
	c.engine.Use(middleware.CORS(c.cfg.Server.AllowedOrigins))
	c.engine.Use(middleware.SecurityHeaders())

	c.engine.GET("/health", c.hdlrs.healthHandler.HealthCheck)

	routes.SetupCustomerRequestRoutes(c.engine, &routes.CustomerRequestRouteConfig{
		Handler:        c.hdlrs.customerRequestHandler,
		AuthMiddleware: c.authMiddleware,
		RateLimiter:    c.rateLimiter,
	})

	routes.SetupWebhookRoutes(c.engine, &routes.WebhookRouteConfig{
		Handler: c.hdlrs.webhookHandler,
	})
}
