package usecases

import (
	"context"
	"sync"

	"github.com/orris-inc/tracksync/internal/infrastructure/textgen"
)

type mockTracker struct {
	AddDefaultLabelFunc    func(ctx context.Context, ticketID string) error
	FetchLatestCommentFunc func(ctx context.Context, ticketID string) (*string, error)

	mu         sync.Mutex
	labelCalls []string
	fetchCalls []string
}

func (m *mockTracker) AddDefaultLabel(ctx context.Context, ticketID string) error {
	m.mu.Lock()
	m.labelCalls = append(m.labelCalls, ticketID)
	m.mu.Unlock()
	if m.AddDefaultLabelFunc != nil {
		return m.AddDefaultLabelFunc(ctx, ticketID)
	}
	return nil
}

func (m *mockTracker) FetchLatestComment(ctx context.Context, ticketID string) (*string, error) {
	m.mu.Lock()
	m.fetchCalls = append(m.fetchCalls, ticketID)
	m.mu.Unlock()
	if m.FetchLatestCommentFunc != nil {
		return m.FetchLatestCommentFunc(ctx, ticketID)
	}
	return nil, nil
}

type mockGenerator struct {
	textgen.Disabled
	DraftResolutionMessageFunc func(ctx context.Context, in textgen.ResolutionInput) (string, error)
	calls                      int
}

func (m *mockGenerator) DraftResolutionMessage(ctx context.Context, in textgen.ResolutionInput) (string, error) {
	m.calls++
	if m.DraftResolutionMessageFunc != nil {
		return m.DraftResolutionMessageFunc(ctx, in)
	}
	return "", nil
}

var _ textgen.Generator = (*mockGenerator)(nil)

type mockDeduplicator struct {
	ClaimFunc func(ctx context.Context, source, deliveryID string) (bool, error)

	mu       sync.Mutex
	claimed  map[string]bool
	released []string
}

func newMockDeduplicator() *mockDeduplicator {
	return &mockDeduplicator{claimed: make(map[string]bool)}
}

func (m *mockDeduplicator) Claim(ctx context.Context, source, deliveryID string) (bool, error) {
	if m.ClaimFunc != nil {
		return m.ClaimFunc(ctx, source, deliveryID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := source + ":" + deliveryID
	if m.claimed[key] {
		return false, nil
	}
	m.claimed[key] = true
	return true, nil
}

func (m *mockDeduplicator) Release(ctx context.Context, source, deliveryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := source + ":" + deliveryID
	delete(m.claimed, key)
	m.released = append(m.released, key)
	return nil
}

type mockRenderer struct {
	RenderFunc func(md string) (string, error)
}

func (m *mockRenderer) Render(md string) (string, error) {
	if m.RenderFunc != nil {
		return m.RenderFunc(md)
	}
	return "<p>" + md + "</p>", nil
}
