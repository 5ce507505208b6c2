package usecases

import (
	"context"

	"github.com/orris-inc/tracksync/internal/application/customerrequest/dto"
	"github.com/orris-inc/tracksync/internal/infrastructure/linear"
)

type CreateRequestExecutor interface {
	Execute(ctx context.Context, cmd CreateRequestCommand) (*dto.CustomerRequestDTO, error)
}

type GetRequestExecutor interface {
	Execute(ctx context.Context, query GetRequestQuery) (*dto.CustomerRequestDTO, error)
}

type UpdateRequestExecutor interface {
	Execute(ctx context.Context, cmd UpdateRequestCommand) (*dto.CustomerRequestDTO, error)
}

type DeleteRequestExecutor interface {
	Execute(ctx context.Context, cmd DeleteRequestCommand) error
}

type ListRequestsExecutor interface {
	Execute(ctx context.Context, query ListRequestsQuery) (*dto.ListResult, error)
}

// TicketCreator files an issue in the tracker. Implemented by *linear.Client.
type TicketCreator interface {
	CreateTicket(ctx context.Context, in linear.TicketInput) (*linear.Ticket, error)
}
