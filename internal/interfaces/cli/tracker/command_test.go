package tracker

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/tracksync/internal/infrastructure/linear"
)

type mockProjectLister struct {
	ListProjectsFunc func(ctx context.Context, first int) ([]linear.Project, error)
}

func (m *mockProjectLister) ListProjects(ctx context.Context, first int) ([]linear.Project, error) {
	return m.ListProjectsFunc(ctx, first)
}

func TestListProjects(t *testing.T) {
	state := "started"
	lister := &mockProjectLister{ListProjectsFunc: func(_ context.Context, first int) ([]linear.Project, error) {
		assert.Equal(t, 10, first)
		return []linear.Project{
			{ID: "p-1", Name: "Mobile app", State: &state},
			{ID: "p-2", Name: "Billing"},
		}, nil
	}}

	var out bytes.Buffer
	require.NoError(t, listProjects(context.Background(), lister, 10, &out))

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Contains(t, string(lines[0]), "NAME")
	assert.Contains(t, string(lines[1]), "Mobile app")
	assert.Contains(t, string(lines[1]), "started")
	assert.Contains(t, string(lines[2]), "-")
}

func TestListProjects_EmptyAndError(t *testing.T) {
	var out bytes.Buffer
	empty := &mockProjectLister{ListProjectsFunc: func(context.Context, int) ([]linear.Project, error) {
		return nil, nil
	}}
	require.NoError(t, listProjects(context.Background(), empty, 5, &out))
	assert.Equal(t, "no projects found\n", out.String())

	failing := &mockProjectLister{ListProjectsFunc: func(context.Context, int) ([]linear.Project, error) {
		return nil, errors.New("401 unauthorized")
	}}
	assert.ErrorContains(t, listProjects(context.Background(), failing, 5, &out), "failed to list projects")
}
