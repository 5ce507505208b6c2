package customerrequest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"time"
)

const (
	metadataKeyLinearState     = "linear_state"
	metadataKeyLatestComment   = "latest_comment"
	metadataKeyIssueSuggestion = "model_issue_suggestion"
	metadataKeyCancelReason    = "cancel_reason"
)

// LinearState is the tracker workflow state last applied to a request.
type LinearState struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CommentAuthor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LatestComment mirrors the newest tracker comment. CreatedAt keeps the
// tracker's own timestamp text.
type LatestComment struct {
	ID        string         `json:"id"`
	Body      string         `json:"body"`
	BodyHTML  string         `json:"body_html,omitempty"`
	CreatedAt string         `json:"createdAt"`
	User      *CommentAuthor `json:"user,omitempty"`
}

// IssueSuggestion is a generated title/description/labels proposal for a ticket.
type IssueSuggestion struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Labels      []string `json:"labels"`
	Priority    int      `json:"priority"`
}

// Metadata is the enrichment document attached to a request. Known keys are
// typed; every other key is carried through untouched in Extra.
type Metadata struct {
	LinearState     *LinearState
	LatestComment   *LatestComment
	IssueSuggestion *IssueSuggestion
	CancelReason    *string
	Extra           map[string]json.RawMessage
}

func (m Metadata) IsEmpty() bool {
	return m.LinearState == nil &&
		m.LatestComment == nil &&
		m.IssueSuggestion == nil &&
		m.CancelReason == nil &&
		len(m.Extra) == 0
}

// Clone returns a copy that shares no mutable state with m.
func (m Metadata) Clone() Metadata {
	out := Metadata{Extra: maps.Clone(m.Extra)}
	if m.LinearState != nil {
		ls := *m.LinearState
		out.LinearState = &ls
	}
	if m.LatestComment != nil {
		lc := *m.LatestComment
		if lc.User != nil {
			u := *lc.User
			lc.User = &u
		}
		out.LatestComment = &lc
	}
	if m.IssueSuggestion != nil {
		s := *m.IssueSuggestion
		s.Labels = append([]string(nil), s.Labels...)
		out.IssueSuggestion = &s
	}
	if m.CancelReason != nil {
		r := *m.CancelReason
		out.CancelReason = &r
	}
	return out
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(m.Extra)+4)
	for k, v := range m.Extra {
		doc[k] = v
	}
	if m.LinearState != nil {
		doc[metadataKeyLinearState] = m.LinearState
	}
	if m.LatestComment != nil {
		doc[metadataKeyLatestComment] = m.LatestComment
	}
	if m.IssueSuggestion != nil {
		doc[metadataKeyIssueSuggestion] = m.IssueSuggestion
	}
	if m.CancelReason != nil {
		doc[metadataKeyCancelReason] = *m.CancelReason
	}
	return json.Marshal(doc)
}

// UnmarshalJSON accepts any JSON object. A known key whose value does not fit
// its typed shape is kept verbatim in Extra rather than rejected.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	*m = Metadata{}
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("metadata must be a JSON object: %w", err)
	}

	for key, value := range raw {
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) && isKnownMetadataKey(key) {
			continue
		}
		if !m.decodeKnown(key, value) {
			if m.Extra == nil {
				m.Extra = make(map[string]json.RawMessage)
			}
			m.Extra[key] = value
		}
	}
	return nil
}

func isKnownMetadataKey(key string) bool {
	switch key {
	case metadataKeyLinearState, metadataKeyLatestComment, metadataKeyIssueSuggestion, metadataKeyCancelReason:
		return true
	}
	return false
}

func (m *Metadata) decodeKnown(key string, value json.RawMessage) bool {
	switch key {
	case metadataKeyLinearState:
		var v LinearState
		if json.Unmarshal(value, &v) != nil {
			return false
		}
		m.LinearState = &v
	case metadataKeyLatestComment:
		var v LatestComment
		if json.Unmarshal(value, &v) != nil {
			return false
		}
		m.LatestComment = &v
	case metadataKeyIssueSuggestion:
		var v IssueSuggestion
		if json.Unmarshal(value, &v) != nil {
			return false
		}
		m.IssueSuggestion = &v
	case metadataKeyCancelReason:
		var v string
		if json.Unmarshal(value, &v) != nil {
			return false
		}
		m.CancelReason = &v
	default:
		return false
	}
	return true
}

// ExtraString returns a caller-supplied string field, or "" when the key is
// absent or not a JSON string.
func (m Metadata) ExtraString(key string) string {
	raw, ok := m.Extra[key]
	if !ok {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}
