package http

import (
	requestUsecases "github.com/orris-inc/tracksync/internal/application/customerrequest/usecases"
	webhookUsecases "github.com/orris-inc/tracksync/internal/application/webhook/usecases"
)

// allUseCases holds all use case instances used by the application.
type allUseCases struct {
	// Customer requests
	createRequestUC *requestUsecases.CreateRequestUseCase
	getRequestUC    *requestUsecases.GetRequestUseCase
	updateRequestUC *requestUsecases.UpdateRequestUseCase
	deleteRequestUC *requestUsecases.DeleteRequestUseCase
	listRequestsUC  *requestUsecases.ListRequestsUseCase
	sweepOrphansUC  *requestUsecases.SweepOrphansUseCase

	// Webhooks
	processEventUC *webhookUsecases.ProcessEventUseCase
}

func (c *Container) initUseCases() {
	repo := c.repos.customerRequestRepo
	log := c.log

	c.ucs = &allUseCases{
		createRequestUC: requestUsecases.NewCreateRequestUseCase(repo, c.linearClient, c.generator, log),
		getRequestUC:    requestUsecases.NewGetRequestUseCase(repo, log),
		updateRequestUC: requestUsecases.NewUpdateRequestUseCase(repo, log),
		deleteRequestUC: requestUsecases.NewDeleteRequestUseCase(repo, log),
		listRequestsUC:  requestUsecases.NewListRequestsUseCase(repo, c.cfg.Pagination, log),
		sweepOrphansUC:  requestUsecases.NewSweepOrphansUseCase(repo, c.cfg.Sweeper.GracePeriod, log),

		processEventUC: webhookUsecases.NewProcessEventUseCase(
			c.authenticator,
			repo,
			c.linearClient,
			c.generator,
			c.renderer,
			c.dedupe,
			c.cfg.Webhook,
			log.Named("webhook"),
		),
	}
}
