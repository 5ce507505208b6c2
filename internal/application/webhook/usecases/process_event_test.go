package usecases

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/tracksync/internal/application/customerrequest/testutil"
	"github.com/orris-inc/tracksync/internal/domain/customerrequest"
	vo "github.com/orris-inc/tracksync/internal/domain/customerrequest/valueobjects"
	"github.com/orris-inc/tracksync/internal/infrastructure/textgen"
	"github.com/orris-inc/tracksync/internal/shared/config"
	apperrors "github.com/orris-inc/tracksync/internal/shared/errors"
	"github.com/orris-inc/tracksync/internal/shared/logger"
)

var baseTime = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

type fixture struct {
	repo    *testutil.MockCustomerRequestRepository
	tracker *mockTracker
	gen     *mockGenerator
	dedupe  *mockDeduplicator
	uc      *ProcessEventUseCase
	clock   time.Time
}

func newFixture(t *testing.T, cfg config.WebhookConfig) *fixture {
	t.Helper()
	f := &fixture{
		repo:    testutil.NewMockCustomerRequestRepository(),
		tracker: &mockTracker{},
		gen:     &mockGenerator{},
		dedupe:  newMockDeduplicator(),
		clock:   baseTime,
	}
	f.uc = NewProcessEventUseCase(
		NewAuthenticator(cfg),
		f.repo,
		f.tracker,
		f.gen,
		&mockRenderer{},
		f.dedupe,
		cfg,
		logger.NewNopLogger(),
	)
	f.uc.now = func() time.Time {
		f.clock = f.clock.Add(time.Second)
		return f.clock
	}
	return f
}

func (f *fixture) seed(t *testing.T, ticketID string, status vo.Status) *customerrequest.CustomerRequest {
	t.Helper()
	name := "Ana"
	r, err := customerrequest.NewCustomerRequest(customerrequest.NewParams{
		Content:        "App crashes on save",
		Type:           vo.RequestTypeBug,
		ExternalUserID: "u1",
		UserName:       &name,
		ScopeID:        "proj-1",
	}, baseTime)
	require.NoError(t, err)
	require.NoError(t, f.repo.Create(context.Background(), r))
	require.NoError(t, f.repo.LinkTicket(context.Background(), r.ID(), ticketID, baseTime))
	if status != vo.StatusPending {
		require.NoError(t, f.repo.Update(context.Background(), r.ID(), customerrequest.Patch{Status: &status}, baseTime))
	}
	got, err := f.repo.GetByID(context.Background(), r.ID())
	require.NoError(t, err)
	return got
}

func (f *fixture) send(t *testing.T, body string) error {
	t.Helper()
	return f.uc.Execute(context.Background(), ProcessEventCommand{Body: []byte(body)})
}

func (f *fixture) get(t *testing.T, id string) *customerrequest.CustomerRequest {
	t.Helper()
	got, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return got
}

func issueUpdate(ticketID, stateName string) string {
	return fmt.Sprintf(`{"type":"Issue","action":"update","data":{"id":%q,"identifier":"ENG-42","state":{"id":"state-%s","name":%q}}}`,
		ticketID, stateName, stateName)
}

func TestProcessEvent_StatusTransition(t *testing.T) {
	f := newFixture(t, config.WebhookConfig{OptimisticLocking: true})
	req := f.seed(t, "lin-1", vo.StatusPending)

	require.NoError(t, f.send(t, issueUpdate("lin-1", "In Progress")))

	got := f.get(t, req.ID())
	assert.Equal(t, vo.StatusInProgress, got.Status())
	require.NotNil(t, got.Metadata().LinearState)
	assert.Equal(t, "In Progress", got.Metadata().LinearState.Name)
	assert.Equal(t, "state-In Progress", got.Metadata().LinearState.ID)
	assert.Nil(t, got.Response())
	assert.Empty(t, f.tracker.fetchCalls, "only resolution triggers enrichment")
}

func TestProcessEvent_IdempotentRedelivery(t *testing.T) {
	f := newFixture(t, config.WebhookConfig{OptimisticLocking: true})
	req := f.seed(t, "lin-1", vo.StatusPending)
	f.tracker.FetchLatestCommentFunc = func(ctx context.Context, ticketID string) (*string, error) {
		c := "Fixed in 3.2"
		return &c, nil
	}
	f.gen.DraftResolutionMessageFunc = func(ctx context.Context, in textgen.ResolutionInput) (string, error) {
		return "Resuelto", nil
	}

	require.NoError(t, f.send(t, issueUpdate("lin-1", "Done")))
	first := f.get(t, req.ID())

	require.NoError(t, f.send(t, issueUpdate("lin-1", "Done")))
	second := f.get(t, req.ID())

	assert.Equal(t, first.UpdatedAt(), second.UpdatedAt())
	assert.Equal(t, first.Version(), second.Version())
	assert.Equal(t, first.Response(), second.Response())
	assert.Empty(t, cmp.Diff(first.Metadata(), second.Metadata()))
	assert.Equal(t, 1, f.gen.calls, "enrichment runs once")
	assert.Len(t, f.tracker.fetchCalls, 1)
}

func TestProcessEvent_ResolutionEnrichment(t *testing.T) {
	comment := "Released the fix in 3.2.1"

	tests := []struct {
		name         string
		fetch        func(ctx context.Context, ticketID string) (*string, error)
		draft        func(ctx context.Context, in textgen.ResolutionInput) (string, error)
		wantResponse string
		wantGenCalls int
	}{
		{
			name:  "comment and draft replace the response",
			fetch: func(context.Context, string) (*string, error) { return &comment, nil },
			draft: func(ctx context.Context, in textgen.ResolutionInput) (string, error) {
				return "Hola " + in.UserName + ", " + in.Identifier + " quedó resuelto.", nil
			},
			wantResponse: "Hola Ana, ENG-42 quedó resuelto.",
			wantGenCalls: 1,
		},
		{
			name:         "fetch failure keeps prior response",
			fetch:        func(context.Context, string) (*string, error) { return nil, errors.New("linear down") },
			wantResponse: "prior",
		},
		{
			name:         "no comment skips generation",
			fetch:        func(context.Context, string) (*string, error) { return nil, nil },
			wantResponse: "prior",
		},
		{
			name:  "generation failure keeps prior response",
			fetch: func(context.Context, string) (*string, error) { return &comment, nil },
			draft: func(context.Context, textgen.ResolutionInput) (string, error) {
				return "", errors.New("overloaded")
			},
			wantResponse: "prior",
			wantGenCalls: 1,
		},
		{
			name:         "disabled generation keeps prior response",
			fetch:        func(context.Context, string) (*string, error) { return &comment, nil },
			draft:        func(context.Context, textgen.ResolutionInput) (string, error) { return "", nil },
			wantResponse: "prior",
			wantGenCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, config.WebhookConfig{OptimisticLocking: true})
			req := f.seed(t, "lin-1", vo.StatusInReview)
			prior := "prior"
			require.NoError(t, f.repo.Update(context.Background(), req.ID(), customerrequest.Patch{Response: &prior}, baseTime))
			f.tracker.FetchLatestCommentFunc = tt.fetch
			f.gen.DraftResolutionMessageFunc = tt.draft

			require.NoError(t, f.send(t, issueUpdate("lin-1", "Done")))

			got := f.get(t, req.ID())
			assert.Equal(t, vo.StatusResolved, got.Status(), "the transition always commits")
			require.NotNil(t, got.Response())
			assert.Equal(t, tt.wantResponse, *got.Response())
			assert.Equal(t, tt.wantGenCalls, f.gen.calls)
		})
	}
}

func TestProcessEvent_ResolvedToResolvedDoesNotEnrich(t *testing.T) {
	f := newFixture(t, config.WebhookConfig{OptimisticLocking: true})
	req := f.seed(t, "lin-1", vo.StatusResolved)

	// "Completed" maps to resolved as well, so nothing changes.
	require.NoError(t, f.send(t, issueUpdate("lin-1", "Completed")))

	assert.Empty(t, f.tracker.fetchCalls)
	assert.Equal(t, req.Version(), f.get(t, req.ID()).Version())
}

func TestProcessEvent_IssueCreateAddsLabel(t *testing.T) {
	f := newFixture(t, config.WebhookConfig{})
	f.tracker.AddDefaultLabelFunc = func(context.Context, string) error {
		return errors.New("label missing")
	}

	err := f.send(t, `{"type":"Issue","action":"create","data":{"id":"lin-new"}}`)

	require.NoError(t, err, "label failures are swallowed")
	assert.Equal(t, []string{"lin-new"}, f.tracker.labelCalls)

	require.NoError(t, f.send(t, `{"type":"Issue","action":"update","data":{"id":"lin-new"}}`))
	assert.Len(t, f.tracker.labelCalls, 1, "only create events label")
}

func TestProcessEvent_UnknownTicketIsNoop(t *testing.T) {
	f := newFixture(t, config.WebhookConfig{})
	f.seed(t, "lin-1", vo.StatusPending)

	assert.NoError(t, f.send(t, issueUpdate("lin-unknown", "Done")))
	assert.NoError(t, f.send(t, `{"type":"Issue","action":"remove","data":{"id":"lin-unknown"}}`))
	assert.NoError(t, f.send(t, `{"type":"Comment","action":"create","data":{"id":"lin-unknown","comments":{"nodes":[{"id":"c","body":"b"}]}}}`))
	assert.Zero(t, f.repo.SaveCalls)
}

func TestProcessEvent_Deletion(t *testing.T) {
	for _, action := range []string{"remove", "delete"} {
		t.Run(action, func(t *testing.T) {
			f := newFixture(t, config.WebhookConfig{})
			req := f.seed(t, "lin-1", vo.StatusPending)

			body := fmt.Sprintf(`{"type":"Issue","action":%q,"data":{"id":"lin-1"}}`, action)
			require.NoError(t, f.send(t, body))

			raw := f.repo.Raw(req.ID())
			require.NotNil(t, raw)
			require.NotNil(t, raw.DeletedAt())
			assert.Equal(t, *raw.DeletedAt(), raw.UpdatedAt())

			require.NoError(t, f.send(t, body), "second delivery finds nothing to delete")
			require.NoError(t, f.send(t, issueUpdate("lin-1", "Done")))
			assert.Equal(t, vo.StatusPending, f.repo.Raw(req.ID()).Status(), "deleted rows are not reconciled")
		})
	}
}

func TestProcessEvent_Comment(t *testing.T) {
	f := newFixture(t, config.WebhookConfig{OptimisticLocking: true})
	req := f.seed(t, "lin-1", vo.StatusInProgress)

	require.NoError(t, f.send(t, `{"type":"Comment","action":"create","data":{"id":"lin-1","comments":{"nodes":[
		{"id":"c1","body":"older","createdAt":"2026-05-01T00:00:00Z"},
		{"id":"c2","body":"**newest**","createdAt":"2026-05-02T00:00:00Z","user":{"id":"dev-1","name":"Dev"}}
	]}}}`))

	got := f.get(t, req.ID())
	want := &customerrequest.LatestComment{
		ID:        "c2",
		Body:      "**newest**",
		BodyHTML:  "<p>**newest**</p>",
		CreatedAt: "2026-05-02T00:00:00Z",
		User:      &customerrequest.CommentAuthor{ID: "dev-1", Name: "Dev"},
	}
	assert.Empty(t, cmp.Diff(want, got.Metadata().LatestComment))
	assert.Equal(t, vo.StatusInProgress, got.Status())

	t.Run("empty comment list is a no-op", func(t *testing.T) {
		before := f.get(t, req.ID())
		require.NoError(t, f.send(t, `{"type":"Comment","action":"create","data":{"id":"lin-1","comments":{"nodes":[]}}}`))
		assert.Equal(t, before.Version(), f.get(t, req.ID()).Version())
	})

	t.Run("render failure still records the comment", func(t *testing.T) {
		f.uc.renderer = &mockRenderer{RenderFunc: func(string) (string, error) { return "", errors.New("bad markdown") }}
		require.NoError(t, f.send(t, `{"type":"Comment","action":"create","data":{"id":"c3","body":"plain","issueId":"lin-1"}}`))
		lc := f.get(t, req.ID()).Metadata().LatestComment
		require.NotNil(t, lc)
		assert.Equal(t, "plain", lc.Body)
		assert.Empty(t, lc.BodyHTML)
	})
}

func TestProcessEvent_IgnoredAndMalformed(t *testing.T) {
	f := newFixture(t, config.WebhookConfig{})

	assert.NoError(t, f.send(t, `{"type":"Project","action":"update","data":{"id":"p"}}`))

	err := f.send(t, `{not json`)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
	assert.False(t, apperrors.IsWebhookAuthError(err))
}

func TestProcessEvent_AuthFailure(t *testing.T) {
	f := newFixture(t, config.WebhookConfig{BearerToken: "tok"})
	f.seed(t, "lin-1", vo.StatusPending)

	err := f.uc.Execute(context.Background(), ProcessEventCommand{
		Body:          []byte(issueUpdate("lin-1", "Done")),
		Authorization: "Bearer wrong",
	})
	assert.True(t, apperrors.IsWebhookAuthError(err))
	assert.Zero(t, f.repo.SaveCalls)
}

func TestProcessEvent_StoreFailureIsReported(t *testing.T) {
	f := newFixture(t, config.WebhookConfig{})
	f.seed(t, "lin-1", vo.StatusPending)
	f.repo.SaveError = errors.New("db down")

	err := f.uc.Execute(context.Background(), ProcessEventCommand{
		Body:       []byte(issueUpdate("lin-1", "Done")),
		DeliveryID: "d-1",
	})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.GetAppError(err).Type)
	assert.Equal(t, []string{"linear:d-1"}, f.dedupe.released, "failed deliveries can be retried")
}

func TestProcessEvent_DuplicateDeliveryIsSkipped(t *testing.T) {
	f := newFixture(t, config.WebhookConfig{})
	req := f.seed(t, "lin-1", vo.StatusPending)

	cmd := ProcessEventCommand{Body: []byte(issueUpdate("lin-1", "In Progress")), DeliveryID: "d-7"}
	require.NoError(t, f.uc.Execute(context.Background(), cmd))
	require.Equal(t, 1, f.repo.SaveCalls)

	// Put the row back so only dedupe can explain a skipped write.
	pending := vo.StatusPending
	require.NoError(t, f.repo.Update(context.Background(), req.ID(), customerrequest.Patch{Status: &pending}, baseTime))

	require.NoError(t, f.uc.Execute(context.Background(), cmd))
	assert.Equal(t, 1, f.repo.SaveCalls)
	assert.Equal(t, vo.StatusPending, f.get(t, req.ID()).Status())

	t.Run("dedupe outage does not block processing", func(t *testing.T) {
		f.dedupe.ClaimFunc = func(context.Context, string, string) (bool, error) {
			return false, errors.New("redis unreachable")
		}
		require.NoError(t, f.uc.Execute(context.Background(), cmd))
		assert.Equal(t, vo.StatusInProgress, f.get(t, req.ID()).Status())
	})
}

func TestProcessEvent_VersionConflictIsRetried(t *testing.T) {
	f := newFixture(t, config.WebhookConfig{OptimisticLocking: true, MaxConflictRetry: 3})
	req := f.seed(t, "lin-1", vo.StatusPending)

	// A competing writer bumps the version right before the first save.
	interfered := false
	f.repo.BeforeSave = func(r *customerrequest.CustomerRequest) {
		if interfered {
			return
		}
		interfered = true
		reason := "customer follow-up"
		require.NoError(t, f.repo.Update(context.Background(), r.ID(), customerrequest.Patch{
			Metadata: &customerrequest.Metadata{CancelReason: &reason},
		}, baseTime))
	}

	require.NoError(t, f.send(t, issueUpdate("lin-1", "In Review")))

	got := f.get(t, req.ID())
	assert.Equal(t, vo.StatusInReview, got.Status())
	assert.Equal(t, 2, f.repo.SaveCalls)
	require.NotNil(t, got.Metadata().CancelReason, "the competing write survives")
	assert.Equal(t, "In Review", got.Metadata().LinearState.Name)
}

func TestProcessEvent_ConflictRetriesAreBounded(t *testing.T) {
	f := newFixture(t, config.WebhookConfig{OptimisticLocking: true, MaxConflictRetry: 2})
	f.seed(t, "lin-1", vo.StatusPending)
	f.repo.BeforeSave = func(r *customerrequest.CustomerRequest) {
		require.NoError(t, f.repo.Update(context.Background(), r.ID(), customerrequest.Patch{}, baseTime))
	}

	err := f.send(t, issueUpdate("lin-1", "Done"))

	require.Error(t, err)
	assert.Equal(t, 3, f.repo.SaveCalls, "one attempt plus two retries")
}

func TestProcessEvent_WithoutLockingLastWriteWins(t *testing.T) {
	f := newFixture(t, config.WebhookConfig{OptimisticLocking: false})
	req := f.seed(t, "lin-1", vo.StatusPending)
	f.repo.BeforeSave = func(r *customerrequest.CustomerRequest) {
		f.repo.BeforeSave = nil
		require.NoError(t, f.repo.Update(context.Background(), r.ID(), customerrequest.Patch{}, baseTime))
	}

	require.NoError(t, f.send(t, issueUpdate("lin-1", "Done")))
	assert.Equal(t, 1, f.repo.SaveCalls)
	assert.Equal(t, vo.StatusResolved, f.get(t, req.ID()).Status())
}
