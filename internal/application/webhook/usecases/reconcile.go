package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/orris-inc/tracksync/internal/domain/customerrequest"
	"github.com/orris-inc/tracksync/internal/infrastructure/linear"
	"github.com/orris-inc/tracksync/internal/infrastructure/textgen"
)

const defaultMaxConflictRetries = 3

func newConflictBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 20 * time.Millisecond
	bo.MaxInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = 5 * time.Second
	return bo
}

func (uc *ProcessEventUseCase) handleIssueUpsert(ctx context.Context, ev *Event) error {
	ticketID := ev.Data.ID
	if ticketID == "" {
		return nil
	}

	if ev.Action == actionCreate {
		if err := uc.tracker.AddDefaultLabel(ctx, ticketID); err != nil {
			uc.logger.Warnw("failed to add default label", "ticket_id", ticketID, "error", err)
		}
	}

	state := ev.Data.State
	if state == nil {
		return nil
	}
	mapped := linear.MapStateToStatus(state.Name)

	// Enrichment calls external services, so it runs at most once even when
	// the write is retried.
	var (
		drafted bool
		draft   string
	)

	return uc.withConflictRetry(ctx, func() error {
		req, err := uc.repo.GetByExternalTicketID(ctx, ticketID)
		if errors.Is(err, customerrequest.ErrRequestNotFound) {
			uc.logger.Debugw("no customer request for ticket", "ticket_id", ticketID)
			return nil
		}
		if err != nil {
			return err
		}

		now := uc.now()
		change := req.ApplyTrackerState(state.ID, state.Name, mapped, now)
		if !change.Changed {
			return nil
		}

		if change.EnteredResolved {
			if !drafted {
				draft = uc.draftResolution(ctx, ev, req)
				drafted = true
			}
			if draft != "" {
				req.SetResponse(draft, now)
			}
		}

		if err := uc.repo.Save(ctx, req, uc.locking); err != nil {
			return err
		}
		uc.logger.Infow("customer request status reconciled",
			"request_id", req.ID(),
			"ticket_id", ticketID,
			"from", change.From,
			"to", change.To,
		)
		return nil
	})
}

// draftResolution returns an empty string when any step fails, which keeps
// the stored response.
func (uc *ProcessEventUseCase) draftResolution(ctx context.Context, ev *Event, req *customerrequest.CustomerRequest) string {
	comment, err := uc.tracker.FetchLatestComment(ctx, ev.Data.ID)
	if err != nil {
		uc.logger.Warnw("failed to fetch latest comment", "ticket_id", ev.Data.ID, "error", err)
		return ""
	}
	if comment == nil {
		return ""
	}

	userName := ""
	if req.UserName() != nil {
		userName = *req.UserName()
	}
	msg, err := uc.generator.DraftResolutionMessage(ctx, textgen.ResolutionInput{
		UserName:        userName,
		Type:            req.Type(),
		OriginalContent: req.Content(),
		LatestComment:   *comment,
		Identifier:      ev.identifier(),
	})
	if err != nil {
		uc.logger.Warnw("failed to draft resolution message", "ticket_id", ev.Data.ID, "error", err)
		return ""
	}
	return msg
}

func (uc *ProcessEventUseCase) handleIssueDeletion(ctx context.Context, ev *Event) error {
	ticketID := ev.Data.ID
	if ticketID == "" {
		return nil
	}

	req, err := uc.repo.GetByExternalTicketID(ctx, ticketID)
	if errors.Is(err, customerrequest.ErrRequestNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	err = uc.repo.SoftDelete(ctx, req.ID(), uc.now())
	if errors.Is(err, customerrequest.ErrRequestNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	uc.logger.Infow("customer request deleted with its ticket", "request_id", req.ID(), "ticket_id", ticketID)
	return nil
}

func (uc *ProcessEventUseCase) handleComment(ctx context.Context, ev *Event) error {
	ticketID, comments := ev.commentTarget()
	if ticketID == "" || len(comments) == 0 {
		return nil
	}

	last := comments[len(comments)-1]
	snapshot := customerrequest.LatestComment{
		ID:        last.ID,
		Body:      last.Body,
		CreatedAt: last.CreatedAt,
	}
	if last.User != nil {
		snapshot.User = &customerrequest.CommentAuthor{ID: last.User.ID, Name: last.User.Name}
	}
	if html, err := uc.renderer.Render(last.Body); err != nil {
		uc.logger.Warnw("failed to render comment body", "ticket_id", ticketID, "error", err)
	} else {
		snapshot.BodyHTML = html
	}

	return uc.withConflictRetry(ctx, func() error {
		req, err := uc.repo.GetByExternalTicketID(ctx, ticketID)
		if errors.Is(err, customerrequest.ErrRequestNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		req.RecordLatestComment(snapshot, uc.now())
		return uc.repo.Save(ctx, req, uc.locking)
	})
}

// withConflictRetry re-runs op on a version conflict. Other errors stop
// immediately. Without optimistic locking op runs once.
func (uc *ProcessEventUseCase) withConflictRetry(ctx context.Context, op func() error) error {
	if !uc.locking {
		return op()
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(newConflictBackoff(), uint64(uc.maxRetries)), ctx)
	return backoff.Retry(func() error {
		err := op()
		if errors.Is(err, customerrequest.ErrVersionConflict) {
			uc.logger.Debugw("version conflict, re-evaluating event")
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}, bo)
}
