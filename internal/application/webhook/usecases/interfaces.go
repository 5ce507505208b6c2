package usecases

import "context"

type ProcessEventExecutor interface {
	Execute(ctx context.Context, cmd ProcessEventCommand) error
}

// TrackerClient is the part of the Linear client reconciliation needs.
type TrackerClient interface {
	AddDefaultLabel(ctx context.Context, ticketID string) error
	FetchLatestComment(ctx context.Context, ticketID string) (*string, error)
}

// DeliveryDeduplicator claims webhook delivery ids so replays are skipped.
type DeliveryDeduplicator interface {
	Claim(ctx context.Context, source, deliveryID string) (bool, error)
	Release(ctx context.Context, source, deliveryID string) error
}
