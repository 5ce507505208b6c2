package routes

import (
	"github.com/gin-gonic/gin"

	customerrequesthandlers "github.com/orris-inc/tracksync/internal/interfaces/http/handlers/customerrequest"
	"github.com/orris-inc/tracksync/internal/interfaces/http/middleware"
)

type CustomerRequestRouteConfig struct {
	Handler        *customerrequesthandlers.Handler
	AuthMiddleware *middleware.AuthMiddleware
	// RateLimiter is optional.
	RateLimiter *middleware.RateLimiter
}

func SetupCustomerRequestRoutes(engine *gin.Engine, config *CustomerRequestRouteConfig) {
	requests := engine.Group("/api/v1/customer-requests")
	if config.RateLimiter != nil {
		requests.Use(config.RateLimiter.Limit())
	}
	requests.Use(config.AuthMiddleware.RequireAuth())
	{
		requests.POST("", config.Handler.CreateRequest)
		requests.GET("", config.Handler.ListRequests)

		requests.GET("/:id", config.Handler.GetRequest)
		requests.PATCH("/:id", config.Handler.UpdateRequest)
		requests.DELETE("/:id", config.Handler.DeleteRequest)
	}
}
