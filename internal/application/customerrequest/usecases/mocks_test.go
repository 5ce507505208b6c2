package usecases

import (
	"context"

	"github.com/orris-inc/tracksync/internal/domain/customerrequest"
	"github.com/orris-inc/tracksync/internal/infrastructure/linear"
	"github.com/orris-inc/tracksync/internal/infrastructure/textgen"
)

type mockTicketCreator struct {
	CreateTicketFunc func(ctx context.Context, in linear.TicketInput) (*linear.Ticket, error)
	calls            []linear.TicketInput
}

func (m *mockTicketCreator) CreateTicket(ctx context.Context, in linear.TicketInput) (*linear.Ticket, error) {
	m.calls = append(m.calls, in)
	if m.CreateTicketFunc != nil {
		return m.CreateTicketFunc(ctx, in)
	}
	return &linear.Ticket{ID: "lin-1", Identifier: "ENG-1", URL: "https://linear.app/acme/issue/ENG-1"}, nil
}

type mockGenerator struct {
	SuggestIssueFunc           func(ctx context.Context, in textgen.IssueInput) (*customerrequest.IssueSuggestion, error)
	DraftCreationMessageFunc   func(ctx context.Context, in textgen.CreationInput) (string, error)
	DraftResolutionMessageFunc func(ctx context.Context, in textgen.ResolutionInput) (string, error)
}

func (m *mockGenerator) SuggestIssue(ctx context.Context, in textgen.IssueInput) (*customerrequest.IssueSuggestion, error) {
	if m.SuggestIssueFunc != nil {
		return m.SuggestIssueFunc(ctx, in)
	}
	return nil, nil
}

func (m *mockGenerator) DraftCreationMessage(ctx context.Context, in textgen.CreationInput) (string, error) {
	if m.DraftCreationMessageFunc != nil {
		return m.DraftCreationMessageFunc(ctx, in)
	}
	return "", nil
}

func (m *mockGenerator) DraftResolutionMessage(ctx context.Context, in textgen.ResolutionInput) (string, error) {
	if m.DraftResolutionMessageFunc != nil {
		return m.DraftResolutionMessageFunc(ctx, in)
	}
	return "", nil
}
