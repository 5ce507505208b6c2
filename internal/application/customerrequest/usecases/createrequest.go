package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/orris-inc/tracksync/internal/application/customerrequest/dto"
	"github.com/orris-inc/tracksync/internal/domain/customerrequest"
	vo "github.com/orris-inc/tracksync/internal/domain/customerrequest/valueobjects"
	"github.com/orris-inc/tracksync/internal/infrastructure/linear"
	"github.com/orris-inc/tracksync/internal/infrastructure/textgen"
	apperrors "github.com/orris-inc/tracksync/internal/shared/errors"
	"github.com/orris-inc/tracksync/internal/shared/logger"
	"github.com/orris-inc/tracksync/internal/shared/saga"
)

const (
	stepInsertRecord = "insert-record"
	stepCreateTicket = "create-ticket"
	stepLinkTicket   = "link-ticket"

	maxTitleRunes = 80
)

type CreateRequestCommand struct {
	Content        string
	Type           string
	ExternalUserID string
	UserName       *string
	ProjectID      string
	Source         *string
	// Reason is free text shown to the triage team, it is not stored.
	Reason   *string
	Metadata customerrequest.Metadata
}

type CreateRequestUseCase struct {
	repo      customerrequest.Repository
	tracker   TicketCreator
	generator textgen.Generator
	logger    logger.Interface
	now       func() time.Time
}

func NewCreateRequestUseCase(
	repo customerrequest.Repository,
	tracker TicketCreator,
	generator textgen.Generator,
	logger logger.Interface,
) *CreateRequestUseCase {
	if generator == nil {
		generator = textgen.Disabled{}
	}
	return &CreateRequestUseCase{
		repo:      repo,
		tracker:   tracker,
		generator: generator,
		logger:    logger,
		now:       time.Now,
	}
}

func (uc *CreateRequestUseCase) Execute(ctx context.Context, cmd CreateRequestCommand) (*dto.CustomerRequestDTO, error) {
	uc.logger.Infow("executing create customer request use case",
		"external_user_id", cmd.ExternalUserID,
		"project_id", cmd.ProjectID,
		"type", cmd.Type,
	)

	requestType, err := vo.NewRequestType(cmd.Type)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	req, err := customerrequest.NewCustomerRequest(customerrequest.NewParams{
		Content:        cmd.Content,
		Type:           requestType,
		ExternalUserID: cmd.ExternalUserID,
		UserName:       cmd.UserName,
		ScopeID:        cmd.ProjectID,
		Source:         cmd.Source,
		Metadata:       cmd.Metadata,
	}, uc.now())
	if err != nil {
		uc.logger.Warnw("invalid create customer request command", "error", err)
		return nil, apperrors.NewValidationError(err.Error())
	}

	suggestion := uc.suggestIssue(ctx, req)
	if suggestion != nil {
		req.SetIssueSuggestion(*suggestion, uc.now())
	}

	input := buildTicketInput(req, cmd.Reason, suggestion)

	var ticket *linear.Ticket
	err = saga.New("create-customer-request", uc.logger,
		saga.Step{
			Name: stepInsertRecord,
			Do: func(ctx context.Context) error {
				return uc.repo.Create(ctx, req)
			},
			Undo: func(ctx context.Context) error {
				return uc.repo.HardDelete(ctx, req.ID())
			},
		},
		saga.Step{
			Name: stepCreateTicket,
			Do: func(ctx context.Context) error {
				t, err := uc.tracker.CreateTicket(ctx, input)
				if err != nil {
					return err
				}
				ticket = t
				return nil
			},
		},
		saga.Step{
			Name: stepLinkTicket,
			Do: func(ctx context.Context) error {
				return uc.repo.LinkTicket(ctx, req.ID(), ticket.ID, uc.now())
			},
		},
	).Run(ctx)
	if err != nil {
		return nil, uc.translateSagaError(req, ticket, err)
	}

	uc.logger.Infow("customer request created",
		"request_id", req.ID(),
		"ticket_id", ticket.ID,
		"ticket_identifier", ticket.Identifier,
	)

	uc.draftCreationMessage(ctx, req, ticket)

	created, err := uc.repo.GetByID(ctx, req.ID())
	if err != nil {
		uc.logger.Errorw("failed to re-read created customer request", "request_id", req.ID(), "error", err)
		return nil, apperrors.NewInternalError("failed to retrieve created customer request")
	}
	return dto.ToCustomerRequestDTO(created), nil
}

func (uc *CreateRequestUseCase) translateSagaError(req *customerrequest.CustomerRequest, ticket *linear.Ticket, err error) error {
	var stepErr *saga.StepError
	if !errors.As(err, &stepErr) {
		return apperrors.NewInternalError("failed to create customer request")
	}

	switch stepErr.Step {
	case stepCreateTicket:
		return apperrors.NewTrackerError("failed to create tracker ticket", stepErr.Err.Error())
	case stepLinkTicket:
		// The ticket exists in the tracker but no record points at it.
		uc.logger.Errorw("tracker ticket orphaned after link failure",
			"request_id", req.ID(),
			"ticket_id", ticket.ID,
			"ticket_identifier", ticket.Identifier,
			"compensated", stepErr.Compensated(),
			"error", stepErr.Err,
		)
		return apperrors.NewInternalError("failed to link tracker ticket")
	default:
		uc.logger.Errorw("failed to insert customer request", "request_id", req.ID(), "error", stepErr.Err)
		return apperrors.NewInternalError("failed to create customer request")
	}
}

func (uc *CreateRequestUseCase) suggestIssue(ctx context.Context, req *customerrequest.CustomerRequest) *customerrequest.IssueSuggestion {
	md := req.Metadata()
	suggestion, err := uc.generator.SuggestIssue(ctx, textgen.IssueInput{
		Content:    req.Content(),
		Type:       req.Type(),
		Env:        md.ExtraString("env"),
		AppVersion: md.ExtraString("app_version"),
	})
	if err != nil {
		uc.logger.Warnw("issue suggestion failed, using plain ticket text", "error", err)
		return nil
	}
	return suggestion
}

func (uc *CreateRequestUseCase) draftCreationMessage(ctx context.Context, req *customerrequest.CustomerRequest, ticket *linear.Ticket) {
	summary := req.Content()
	if s := req.Metadata().IssueSuggestion; s != nil {
		summary = s.Title
	}

	msg, err := uc.generator.DraftCreationMessage(ctx, textgen.CreationInput{
		UserName:   derefOr(req.UserName(), ""),
		Type:       req.Type(),
		Summary:    summary,
		Identifier: ticket.Identifier,
	})
	if err != nil {
		uc.logger.Warnw("creation message draft failed", "request_id", req.ID(), "error", err)
		return
	}
	if msg == "" {
		return
	}

	if err := uc.repo.Update(ctx, req.ID(), customerrequest.Patch{Response: &msg}, uc.now()); err != nil {
		uc.logger.Warnw("failed to store creation message", "request_id", req.ID(), "error", err)
	}
}

func buildTicketInput(req *customerrequest.CustomerRequest, reason *string, s *customerrequest.IssueSuggestion) linear.TicketInput {
	in := linear.TicketInput{
		ScopeID: req.ScopeID(),
		Type:    req.Type(),
		Title:   fmt.Sprintf("%s: %s", req.Type().Title(), truncateRunes(firstLine(req.Content()), maxTitleRunes)),
	}
	description := req.Content()
	if s != nil {
		in.Title = s.Title
		description = s.Description
		in.Labels = s.Labels
		in.Priority = s.Priority
	}

	var b strings.Builder
	b.WriteString(description)
	b.WriteString("\n\n---\n**Customer context**\n")
	fmt.Fprintf(&b, "- User ID: %s\n", req.ExternalUserID())
	if name := derefOr(req.UserName(), ""); name != "" {
		fmt.Fprintf(&b, "- User name: %s\n", name)
	}
	if r := strings.TrimSpace(derefOr(reason, "")); r != "" {
		fmt.Fprintf(&b, "- Reason: %s\n", r)
	}
	if src := derefOr(req.Source(), ""); src != "" {
		fmt.Fprintf(&b, "- Source: %s\n", src)
	}
	fmt.Fprintf(&b, "- Request ID: %s\n", req.ID())
	in.Description = b.String()

	return in
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n-3])) + "..."
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
