package usecases

import (
	"context"
	"time"

	"github.com/orris-inc/tracksync/internal/domain/customerrequest"
	"github.com/orris-inc/tracksync/internal/infrastructure/textgen"
	"github.com/orris-inc/tracksync/internal/shared/config"
	apperrors "github.com/orris-inc/tracksync/internal/shared/errors"
	"github.com/orris-inc/tracksync/internal/shared/logger"
	"github.com/orris-inc/tracksync/internal/shared/services/markdown"
)

const deliverySource = "linear"

const (
	outcomeProcessed = "processed"
	outcomeIgnored   = "ignored"
	outcomeDuplicate = "duplicate"
	outcomeFailed    = "failed"
)

type ProcessEventCommand struct {
	Body          []byte
	Authorization string
	Signature     string
	// DeliveryID is the Linear-Delivery header, empty when absent.
	DeliveryID string
}

// ProcessEventUseCase authenticates a Linear delivery and reconciles the
// matching customer request with it.
type ProcessEventUseCase struct {
	auth       *Authenticator
	repo       customerrequest.Repository
	tracker    TrackerClient
	generator  textgen.Generator
	renderer   markdown.Renderer
	dedupe     DeliveryDeduplicator
	locking    bool
	maxRetries int
	logger     logger.Interface
	now        func() time.Time
}

func NewProcessEventUseCase(
	auth *Authenticator,
	repo customerrequest.Repository,
	tracker TrackerClient,
	generator textgen.Generator,
	renderer markdown.Renderer,
	dedupe DeliveryDeduplicator,
	cfg config.WebhookConfig,
	logger logger.Interface,
) *ProcessEventUseCase {
	if generator == nil {
		generator = textgen.Disabled{}
	}
	if renderer == nil {
		renderer = markdown.NewRenderer()
	}
	maxRetries := cfg.MaxConflictRetry
	if maxRetries <= 0 {
		maxRetries = defaultMaxConflictRetries
	}
	return &ProcessEventUseCase{
		auth:       auth,
		repo:       repo,
		tracker:    tracker,
		generator:  generator,
		renderer:   renderer,
		dedupe:     dedupe,
		locking:    cfg.OptimisticLocking,
		maxRetries: maxRetries,
		logger:     logger,
		now:        time.Now,
	}
}

// Execute returns a webhook auth error when the delivery is rejected. Every
// other failure is returned as an application error for the caller to report
// inside a successful acknowledgement.
func (uc *ProcessEventUseCase) Execute(ctx context.Context, cmd ProcessEventCommand) error {
	if err := uc.auth.Authenticate(cmd.Authorization, cmd.Signature, cmd.Body); err != nil {
		uc.logger.Warnw("webhook authentication failed", "delivery_id", cmd.DeliveryID)
		return err
	}

	ev, err := ParseEvent(cmd.Body)
	if err != nil {
		uc.logger.Warnw("malformed webhook payload", "delivery_id", cmd.DeliveryID, "error", err)
		recordEvent(ctx, "", "", outcomeFailed)
		return apperrors.NewValidationError("malformed webhook payload", err.Error())
	}

	kind := ev.kind()
	if kind == kindIgnored {
		uc.logger.Debugw("ignoring webhook event", "type", ev.Type, "action", ev.Action)
		recordEvent(ctx, ev.Type, ev.Action, outcomeIgnored)
		return nil
	}

	claimed, err := uc.claim(ctx, cmd.DeliveryID)
	if err != nil {
		uc.logger.Warnw("delivery dedupe unavailable, processing anyway", "delivery_id", cmd.DeliveryID, "error", err)
	} else if !claimed {
		uc.logger.Infow("skipping replayed webhook delivery", "delivery_id", cmd.DeliveryID)
		recordEvent(ctx, ev.Type, ev.Action, outcomeDuplicate)
		return nil
	}

	if err := uc.dispatch(ctx, kind, ev); err != nil {
		uc.logger.Errorw("webhook event processing failed",
			"type", ev.Type,
			"action", ev.Action,
			"ticket_id", ev.Data.ID,
			"delivery_id", cmd.DeliveryID,
			"error", err,
		)
		uc.release(ctx, cmd.DeliveryID, claimed)
		recordEvent(ctx, ev.Type, ev.Action, outcomeFailed)
		return apperrors.NewInternalError("failed to process webhook event")
	}

	recordEvent(ctx, ev.Type, ev.Action, outcomeProcessed)
	return nil
}

func (uc *ProcessEventUseCase) dispatch(ctx context.Context, kind eventKind, ev *Event) error {
	switch kind {
	case kindIssueUpsert:
		return uc.handleIssueUpsert(ctx, ev)
	case kindIssueDeletion:
		return uc.handleIssueDeletion(ctx, ev)
	case kindComment:
		return uc.handleComment(ctx, ev)
	}
	return nil
}

// claim returns true when there is nothing to dedupe against.
func (uc *ProcessEventUseCase) claim(ctx context.Context, deliveryID string) (bool, error) {
	if uc.dedupe == nil || deliveryID == "" {
		return true, nil
	}
	return uc.dedupe.Claim(ctx, deliverySource, deliveryID)
}

func (uc *ProcessEventUseCase) release(ctx context.Context, deliveryID string, claimed bool) {
	if uc.dedupe == nil || deliveryID == "" || !claimed {
		return
	}
	if err := uc.dedupe.Release(context.WithoutCancel(ctx), deliverySource, deliveryID); err != nil {
		uc.logger.Warnw("failed to release webhook delivery claim", "delivery_id", deliveryID, "error", err)
	}
}
