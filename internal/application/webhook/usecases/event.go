package usecases

import (
	"encoding/json"
	"fmt"
)

const (
	eventTypeIssue   = "Issue"
	eventTypeComment = "Comment"

	actionCreate = "create"
	actionUpdate = "update"
	actionRemove = "remove"
	actionDelete = "delete"
)

type eventKind int

const (
	kindIgnored eventKind = iota
	kindIssueUpsert
	kindIssueDeletion
	kindComment
)

func (k eventKind) String() string {
	switch k {
	case kindIssueUpsert:
		return "issue_upsert"
	case kindIssueDeletion:
		return "issue_deletion"
	case kindComment:
		return "comment"
	default:
		return "ignored"
	}
}

// Event is a Linear webhook delivery. Only the fields reconciliation reads
// are decoded.
type Event struct {
	Type   string    `json:"type"`
	Action string    `json:"action"`
	Data   EventData `json:"data"`
}

type EventData struct {
	ID         string            `json:"id"`
	Identifier string            `json:"identifier,omitempty"`
	Title      string            `json:"title,omitempty"`
	State      *EventState       `json:"state,omitempty"`
	Team       *EventTeam        `json:"team,omitempty"`
	Comments   *EventCommentList `json:"comments,omitempty"`

	// Set on Linear's native Comment payload, where data is the comment itself.
	IssueID   string     `json:"issueId,omitempty"`
	Body      string     `json:"body,omitempty"`
	CreatedAt string     `json:"createdAt,omitempty"`
	User      *EventUser `json:"user,omitempty"`
}

type EventState struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type EventTeam struct {
	ID string `json:"id"`
}

type EventCommentList struct {
	Nodes []EventComment `json:"nodes"`
}

type EventComment struct {
	ID        string     `json:"id"`
	Body      string     `json:"body"`
	CreatedAt string     `json:"createdAt"`
	User      *EventUser `json:"user,omitempty"`
}

type EventUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ParseEvent decodes a raw delivery body.
func ParseEvent(body []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("decode webhook event: %w", err)
	}
	return &ev, nil
}

func (e *Event) kind() eventKind {
	switch e.Type {
	case eventTypeIssue:
		switch e.Action {
		case actionCreate, actionUpdate:
			return kindIssueUpsert
		case actionRemove, actionDelete:
			return kindIssueDeletion
		}
	case eventTypeComment:
		if e.Action == actionCreate {
			return kindComment
		}
	}
	return kindIgnored
}

// commentTarget returns the ticket a Comment event belongs to and its
// comments, oldest first. The native payload shape is folded into a
// single-element list.
func (e *Event) commentTarget() (string, []EventComment) {
	if e.Data.Comments != nil && len(e.Data.Comments.Nodes) > 0 {
		return e.Data.ID, e.Data.Comments.Nodes
	}
	if e.Data.IssueID != "" && e.Data.Body != "" {
		return e.Data.IssueID, []EventComment{{
			ID:        e.Data.ID,
			Body:      e.Data.Body,
			CreatedAt: e.Data.CreatedAt,
			User:      e.Data.User,
		}}
	}
	return e.Data.ID, nil
}

// identifier is the human-readable ticket key, falling back to the id.
func (e *Event) identifier() string {
	if e.Data.Identifier != "" {
		return e.Data.Identifier
	}
	return e.Data.ID
}
