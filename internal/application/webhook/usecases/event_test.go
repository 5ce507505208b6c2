package usecases

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventKind(t *testing.T) {
	tests := []struct {
		typ, action string
		want        eventKind
	}{
		{"Issue", "create", kindIssueUpsert},
		{"Issue", "update", kindIssueUpsert},
		{"Issue", "remove", kindIssueDeletion},
		{"Issue", "delete", kindIssueDeletion},
		{"Comment", "create", kindComment},
		{"Comment", "update", kindIgnored},
		{"Project", "update", kindIgnored},
		{"issue", "update", kindIgnored},
	}
	for _, tt := range tests {
		t.Run(tt.typ+"/"+tt.action, func(t *testing.T) {
			ev := &Event{Type: tt.typ, Action: tt.action}
			assert.Equal(t, tt.want, ev.kind())
		})
	}
}

func TestParseEvent(t *testing.T) {
	ev, err := ParseEvent([]byte(`{
		"type": "Issue",
		"action": "update",
		"data": {"id": "lin-1", "identifier": "ENG-42", "state": {"id": "s-done", "name": "Done"}, "team": {"id": "t-1"}}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "lin-1", ev.Data.ID)
	assert.Equal(t, "ENG-42", ev.identifier())
	require.NotNil(t, ev.Data.State)
	assert.Equal(t, "Done", ev.Data.State.Name)

	_, err = ParseEvent([]byte(`{"type":`))
	assert.Error(t, err)
}

func TestEvent_CommentTarget(t *testing.T) {
	t.Run("comment list shape", func(t *testing.T) {
		ev, err := ParseEvent([]byte(`{"type":"Comment","action":"create","data":{"id":"lin-1","comments":{"nodes":[
			{"id":"c1","body":"first","createdAt":"2026-01-01T00:00:00Z"},
			{"id":"c2","body":"second","createdAt":"2026-01-02T00:00:00Z","user":{"id":"u1","name":"Dev"}}
		]}}}`))
		require.NoError(t, err)
		ticketID, comments := ev.commentTarget()
		assert.Equal(t, "lin-1", ticketID)
		require.Len(t, comments, 2)
		assert.Equal(t, "second", comments[1].Body)
	})

	t.Run("native comment shape", func(t *testing.T) {
		ev, err := ParseEvent([]byte(`{"type":"Comment","action":"create","data":{
			"id":"c9","body":"Fixed in 3.2","issueId":"lin-7","createdAt":"2026-01-03T00:00:00Z","user":{"id":"u2","name":"QA"}
		}}`))
		require.NoError(t, err)
		ticketID, comments := ev.commentTarget()
		assert.Equal(t, "lin-7", ticketID)
		require.Len(t, comments, 1)
		assert.Equal(t, "c9", comments[0].ID)
		assert.Equal(t, "QA", comments[0].User.Name)
	})

	t.Run("no comments", func(t *testing.T) {
		ev := &Event{Type: "Comment", Action: "create", Data: EventData{ID: "lin-1"}}
		_, comments := ev.commentTarget()
		assert.Empty(t, comments)
	})
}
