package http

import (
	"context"

	"github.com/redis/go-redis/v9"

	customerrequestHandlers "github.com/orris-inc/tracksync/internal/interfaces/http/handlers/customerrequest"
	healthHandlers "github.com/orris-inc/tracksync/internal/interfaces/http/handlers/health"
	webhookHandlers "github.com/orris-inc/tracksync/internal/interfaces/http/handlers/webhook"
)

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	healthHandler          *healthHandlers.Handler
	customerRequestHandler *customerrequestHandlers.Handler
	webhookHandler         *webhookHandlers.Handler
}

func (c *Container) initHandlers() {
	customerrequestHandlers.RegisterValidators()

	checks := map[string]healthHandlers.Pinger{}
	if sqlDB, err := c.db.DB(); err == nil {
		checks["database"] = sqlDB
	} else {
		c.log.Warnw("database handle unavailable for health checks", "error", err)
	}
	if c.redis != nil {
		checks["redis"] = redisPinger{c.redis}
	}

	c.hdlrs = &allHandlers{
		healthHandler: healthHandlers.NewHandler(checks, c.log),
		customerRequestHandler: customerrequestHandlers.NewHandler(
			c.ucs.createRequestUC,
			c.ucs.getRequestUC,
			c.ucs.updateRequestUC,
			c.ucs.deleteRequestUC,
			c.ucs.listRequestsUC,
			c.log,
		),
		webhookHandler: webhookHandlers.NewHandler(c.ucs.processEventUC, c.log),
	}
}

// redisPinger adapts *redis.Client to healthHandlers.Pinger.
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
