package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	requsecases "github.com/orris-inc/tracksync/internal/application/customerrequest/usecases"
	vo "github.com/orris-inc/tracksync/internal/domain/customerrequest/valueobjects"
	"github.com/orris-inc/tracksync/internal/infrastructure/linear"
	"github.com/orris-inc/tracksync/internal/shared/config"
	"github.com/orris-inc/tracksync/internal/shared/logger"
)

type stubTicketCreator struct {
	ticket linear.Ticket
}

func (s stubTicketCreator) CreateTicket(context.Context, linear.TicketInput) (*linear.Ticket, error) {
	t := s.ticket
	return &t, nil
}

func TestRequestLifecycle_CreateResolveComment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.WebhookConfig{OptimisticLocking: true})

	create := requsecases.NewCreateRequestUseCase(
		f.repo,
		stubTicketCreator{ticket: linear.Ticket{ID: "T-42", Identifier: "ENG-42"}},
		nil,
		logger.NewNopLogger(),
	)
	created, err := create.Execute(ctx, requsecases.CreateRequestCommand{
		Content:        "App crashes on save",
		Type:           "bug",
		ExternalUserID: "u1",
		ProjectID:      "proj-1",
	})
	require.NoError(t, err)
	assert.Equal(t, vo.StatusPending.String(), created.Status)
	require.NotNil(t, created.ExternalTicketID)
	assert.Equal(t, "T-42", *created.ExternalTicketID)

	require.NoError(t, f.send(t, `{"type":"Issue","action":"update","data":{"id":"T-42","state":{"id":"s-done","name":"Done"}}}`))

	got := f.get(t, created.ID)
	assert.Equal(t, vo.StatusResolved, got.Status())
	require.NotNil(t, got.Metadata().LinearState)
	assert.Equal(t, "Done", got.Metadata().LinearState.Name)

	require.NoError(t, f.send(t, `{"type":"Comment","action":"create","data":{"id":"T-42","comments":{"nodes":[
		{"id":"c-1","body":"Shipped in 4.0.1","createdAt":"2026-05-04T10:00:00Z"}
	]}}}`))

	got = f.get(t, created.ID)
	require.NotNil(t, got.Metadata().LatestComment)
	assert.Equal(t, "Shipped in 4.0.1", got.Metadata().LatestComment.Body)
	assert.Equal(t, vo.StatusResolved, got.Status())
}
