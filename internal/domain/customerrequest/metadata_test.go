package customerrequest

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata_UnmarshalSplitsKnownAndExtraKeys(t *testing.T) {
	in := `{
		"linear_state": {"id": "s1", "name": "Done", "updated_at": "2026-03-01T10:00:00Z"},
		"latest_comment": {"id": "c1", "body": "shipped", "createdAt": "2026-03-01T09:00:00.000Z", "user": {"id": "u1", "name": "Lea"}},
		"cancel_reason": "wontfix",
		"plan": "enterprise",
		"seats": 40
	}`

	var md Metadata
	require.NoError(t, json.Unmarshal([]byte(in), &md))

	want := Metadata{
		LinearState: &LinearState{ID: "s1", Name: "Done", UpdatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		LatestComment: &LatestComment{
			ID: "c1", Body: "shipped", CreatedAt: "2026-03-01T09:00:00.000Z",
			User: &CommentAuthor{ID: "u1", Name: "Lea"},
		},
		CancelReason: strPtr("wontfix"),
		Extra: map[string]json.RawMessage{
			"plan":  json.RawMessage(`"enterprise"`),
			"seats": json.RawMessage(`40`),
		},
	}
	if diff := cmp.Diff(want, md); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestMetadata_MalformedKnownKeyIsPreserved(t *testing.T) {
	var md Metadata
	require.NoError(t, json.Unmarshal([]byte(`{"linear_state": "legacy-text"}`), &md))

	assert.Nil(t, md.LinearState)
	assert.JSONEq(t, `"legacy-text"`, string(md.Extra["linear_state"]))

	out, err := json.Marshal(md)
	require.NoError(t, err)
	assert.JSONEq(t, `{"linear_state": "legacy-text"}`, string(out))
}

func TestMetadata_TypedValueOverridesStaleExtra(t *testing.T) {
	var md Metadata
	require.NoError(t, json.Unmarshal([]byte(`{"linear_state": 7, "source_app": "ios"}`), &md))

	md.LinearState = &LinearState{ID: "s9", Name: "Todo"}
	out, err := json.Marshal(md)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "ios", doc["source_app"])
	assert.Equal(t, "s9", doc["linear_state"].(map[string]any)["id"])
}

func TestMetadata_NullAndEmpty(t *testing.T) {
	var md Metadata
	require.NoError(t, json.Unmarshal([]byte(`null`), &md))
	assert.True(t, md.IsEmpty())

	require.NoError(t, json.Unmarshal([]byte(`{"latest_comment": null}`), &md))
	assert.True(t, md.IsEmpty())

	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &md))

	out, err := json.Marshal(Metadata{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(out))
}

func TestMetadata_CloneIsDeep(t *testing.T) {
	orig := Metadata{
		IssueSuggestion: &IssueSuggestion{Title: "t", Labels: []string{"bug"}},
		LatestComment:   &LatestComment{ID: "c", User: &CommentAuthor{Name: "a"}},
		Extra:           map[string]json.RawMessage{"k": json.RawMessage(`1`)},
	}

	c := orig.Clone()
	c.IssueSuggestion.Labels[0] = "feature"
	c.LatestComment.User.Name = "b"
	c.Extra["k"] = json.RawMessage(`2`)

	assert.Equal(t, "bug", orig.IssueSuggestion.Labels[0])
	assert.Equal(t, "a", orig.LatestComment.User.Name)
	assert.Equal(t, json.RawMessage(`1`), orig.Extra["k"])
}
