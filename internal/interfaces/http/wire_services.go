package http

import (
	"context"
	"fmt"

	webhookUsecases "github.com/orris-inc/tracksync/internal/application/webhook/usecases"
	"github.com/orris-inc/tracksync/internal/infrastructure/cache"
	"github.com/orris-inc/tracksync/internal/infrastructure/linear"
	"github.com/orris-inc/tracksync/internal/infrastructure/ratelimit"
	"github.com/orris-inc/tracksync/internal/infrastructure/scheduler"
	"github.com/orris-inc/tracksync/internal/infrastructure/textgen"
	"github.com/orris-inc/tracksync/internal/interfaces/http/middleware"
	"github.com/orris-inc/tracksync/internal/shared/services/markdown"
)

// ============================================================
// Section 1: Infrastructure - Redis, Repositories
// ============================================================

func (c *Container) initInfrastructure(ctx context.Context) error {
	if c.cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, c.cfg.Redis)
		if err != nil {
			return err
		}
		c.redis = client
		c.log.Infow("Redis connection established successfully", "addr", c.cfg.Redis.GetAddr())
	} else {
		c.log.Infow("Redis disabled, webhook deliveries are not deduplicated and rate limiting is off")
	}

	c.repos = newRepositories(c.db, c.log)
	return nil
}

// ============================================================
// Section 2: External services - tracker, text generation, auth
// ============================================================

func (c *Container) initServices() error {
	cfg := c.cfg
	log := c.log

	c.linearClient = linear.NewClient(cfg.Linear, log)
	if !c.linearClient.Configured() {
		log.Warnw("Linear credentials are not configured, ticket creation will fail")
	}

	generator, err := textgen.New(cfg.AI, log)
	if err != nil {
		return fmt.Errorf("failed to initialize text generation: %w", err)
	}
	c.generator = generator
	c.renderer = markdown.NewRenderer()

	c.authenticator = webhookUsecases.NewAuthenticator(cfg.Webhook)
	if c.authenticator.Open() {
		log.Warnw("webhook authentication is not configured, every delivery is accepted")
	}

	if c.redis != nil {
		c.dedupe = cache.NewDeliveryDeduplicator(c.redis, cfg.Webhook.DedupeTTL)
	} else {
		c.dedupe = cache.NoopDeduplicator{}
	}

	c.authMiddleware = middleware.NewAuthMiddleware(cfg.Auth.APIBearerToken, log)
	if cfg.Auth.APIBearerToken == "" {
		log.Warnw("auth.api_bearer_token is empty, every customer request API call will be rejected")
	}

	if cfg.RateLimit.Enabled {
		if c.redis == nil {
			log.Warnw("rate limiting requires Redis, leaving it off")
		} else {
			c.limiter = ratelimit.NewRedisRateLimiter(c.redis, cfg.RateLimit.Requests, cfg.RateLimit.Window)
			c.rateLimiter = middleware.NewRateLimiter(c.limiter, "customer-requests", log)
		}
	}

	return nil
}

// ============================================================
// Section 3: Background services
// ============================================================

func (c *Container) initBackground() {
	if !c.cfg.Sweeper.Enabled {
		return
	}
	c.orphanSweeper = scheduler.NewOrphanSweeper(c.ucs.sweepOrphansUC, c.cfg.Sweeper.Interval, c.log.Named("orphan-sweeper"))
}
