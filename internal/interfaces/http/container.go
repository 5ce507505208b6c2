package http

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	webhookUsecases "github.com/orris-inc/tracksync/internal/application/webhook/usecases"
	"github.com/orris-inc/tracksync/internal/infrastructure/config"
	"github.com/orris-inc/tracksync/internal/infrastructure/linear"
	"github.com/orris-inc/tracksync/internal/infrastructure/ratelimit"
	"github.com/orris-inc/tracksync/internal/infrastructure/scheduler"
	"github.com/orris-inc/tracksync/internal/infrastructure/textgen"
	"github.com/orris-inc/tracksync/internal/interfaces/http/middleware"
	"github.com/orris-inc/tracksync/internal/shared/logger"
	"github.com/orris-inc/tracksync/internal/shared/services/markdown"
)

// Container holds the infrastructure components, repositories, use cases,
// handlers and background services, and wires them together.
type Container struct {
	// Core infrastructure
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	repos *repositories
	ucs   *allUseCases
	hdlrs *allHandlers

	// Middlewares
	authMiddleware *middleware.AuthMiddleware
	rateLimiter    *middleware.RateLimiter

	// External services
	linearClient  *linear.Client
	generator     textgen.Generator
	renderer      markdown.Renderer
	dedupe        webhookUsecases.DeliveryDeduplicator
	limiter       ratelimit.Limiter
	authenticator *webhookUsecases.Authenticator

	// Background services
	orphanSweeper *scheduler.OrphanSweeper
}

// NewContainer wires every component. A Redis connection is only opened
// when redis.enabled is set.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
	}

	if err := c.initInfrastructure(ctx); err != nil {
		return nil, err
	}
	if err := c.initServices(); err != nil {
		c.Shutdown()
		return nil, err
	}
	c.initUseCases()
	c.initHandlers()
	c.initBackground()

	return c, nil
}

// Engine returns the Gin engine
func (c *Container) Engine() *gin.Engine {
	return c.engine
}

// OrphanSweeper returns nil when the sweeper is disabled.
func (c *Container) OrphanSweeper() *scheduler.OrphanSweeper {
	return c.orphanSweeper
}

// Shutdown stops background work and releases connections the container owns.
// The database handle belongs to the caller.
func (c *Container) Shutdown() {
	if c.orphanSweeper != nil {
		c.orphanSweeper.Stop()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Warnw("failed to close Redis client", "error", err)
		}
	}
}
