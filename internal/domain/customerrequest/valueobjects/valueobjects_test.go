package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStatus(t *testing.T) {
	for _, s := range []string{"pending", "triaged", "in_progress", "in_review", "resolved", "closed", "cancelled", "error"} {
		st, err := NewStatus(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, st.String())
	}

	_, err := NewStatus("done")
	assert.Error(t, err)
	_, err = NewStatus("")
	assert.Error(t, err)
}

func TestStatus_Predicates(t *testing.T) {
	assert.True(t, StatusResolved.IsResolved())
	assert.False(t, StatusClosed.IsResolved())

	assert.True(t, StatusResolved.IsTerminal())
	assert.True(t, StatusClosed.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusInReview.IsTerminal())
	assert.False(t, StatusError.IsTerminal())
}

func TestNewRequestType(t *testing.T) {
	bug, err := NewRequestType("bug")
	require.NoError(t, err)
	assert.Equal(t, "Bug", bug.Title())

	feature, err := NewRequestType("feature")
	require.NoError(t, err)
	assert.Equal(t, "Feature", feature.Title())

	_, err = NewRequestType("Bug")
	assert.Error(t, err)
}
