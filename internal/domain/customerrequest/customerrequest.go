// Package customerrequest holds the customer request aggregate: a bug report or
// feature request mirrored as a ticket in the external issue tracker.
package customerrequest

import (
	"fmt"
	"strings"
	"time"

	vo "github.com/orris-inc/tracksync/internal/domain/customerrequest/valueobjects"
	"github.com/orris-inc/tracksync/internal/shared/id"
)

type CustomerRequest struct {
	id               string
	content          string
	requestType      vo.RequestType
	status           vo.Status
	externalUserID   string
	userName         *string
	scopeID          string
	externalTicketID *string
	response         *string
	source           *string
	metadata         Metadata
	version          int
	createdAt        time.Time
	updatedAt        time.Time
	deletedAt        *time.Time
}

// NewParams carries the caller-supplied fields of a new request.
type NewParams struct {
	Content        string
	Type           vo.RequestType
	ExternalUserID string
	UserName       *string
	ScopeID        string
	Source         *string
	Metadata       Metadata
}

// NewCustomerRequest validates params and returns a pending, unlinked request
// with a fresh time-ordered id.
func NewCustomerRequest(p NewParams, now time.Time) (*CustomerRequest, error) {
	if strings.TrimSpace(p.Content) == "" {
		return nil, fmt.Errorf("content is required")
	}
	if !p.Type.IsValid() {
		return nil, fmt.Errorf("invalid request type: %s", p.Type)
	}
	if strings.TrimSpace(p.ExternalUserID) == "" {
		return nil, fmt.Errorf("external user ID is required")
	}
	if strings.TrimSpace(p.ScopeID) == "" {
		return nil, fmt.Errorf("project ID is required")
	}

	newID, err := id.New()
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	return &CustomerRequest{
		id:             newID,
		content:        p.Content,
		requestType:    p.Type,
		status:         vo.StatusPending,
		externalUserID: p.ExternalUserID,
		userName:       p.UserName,
		scopeID:        p.ScopeID,
		source:         p.Source,
		metadata:       p.Metadata.Clone(),
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// ReconstructCustomerRequest rebuilds an aggregate from persisted state.
func ReconstructCustomerRequest(
	requestID string,
	content string,
	requestType vo.RequestType,
	status vo.Status,
	externalUserID string,
	userName *string,
	scopeID string,
	externalTicketID *string,
	response *string,
	source *string,
	metadata Metadata,
	version int,
	createdAt, updatedAt time.Time,
	deletedAt *time.Time,
) (*CustomerRequest, error) {
	if requestID == "" {
		return nil, fmt.Errorf("customer request ID is required")
	}
	if !requestType.IsValid() {
		return nil, fmt.Errorf("invalid request type: %s", requestType)
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid status: %s", status)
	}

	return &CustomerRequest{
		id:               requestID,
		content:          content,
		requestType:      requestType,
		status:           status,
		externalUserID:   externalUserID,
		userName:         userName,
		scopeID:          scopeID,
		externalTicketID: externalTicketID,
		response:         response,
		source:           source,
		metadata:         metadata,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
		deletedAt:        deletedAt,
	}, nil
}

func (r *CustomerRequest) ID() string {
	return r.id
}

func (r *CustomerRequest) Content() string {
	return r.content
}

func (r *CustomerRequest) Type() vo.RequestType {
	return r.requestType
}

func (r *CustomerRequest) Status() vo.Status {
	return r.status
}

func (r *CustomerRequest) ExternalUserID() string {
	return r.externalUserID
}

func (r *CustomerRequest) UserName() *string {
	return r.userName
}

// ScopeID is the tracker project or team the ticket is filed under.
func (r *CustomerRequest) ScopeID() string {
	return r.scopeID
}

func (r *CustomerRequest) ExternalTicketID() *string {
	return r.externalTicketID
}

func (r *CustomerRequest) Response() *string {
	return r.response
}

func (r *CustomerRequest) Source() *string {
	return r.source
}

func (r *CustomerRequest) Metadata() Metadata {
	return r.metadata.Clone()
}

func (r *CustomerRequest) Version() int {
	return r.version
}

func (r *CustomerRequest) CreatedAt() time.Time {
	return r.createdAt
}

func (r *CustomerRequest) UpdatedAt() time.Time {
	return r.updatedAt
}

func (r *CustomerRequest) DeletedAt() *time.Time {
	return r.deletedAt
}

func (r *CustomerRequest) IsDeleted() bool {
	return r.deletedAt != nil
}

// IsLinked reports whether the create flow finished attaching a ticket.
func (r *CustomerRequest) IsLinked() bool {
	return r.externalTicketID != nil && *r.externalTicketID != ""
}

func (r *CustomerRequest) LinkTicket(ticketID string, now time.Time) error {
	if ticketID == "" {
		return fmt.Errorf("ticket ID is required")
	}
	if r.IsLinked() {
		return ErrAlreadyLinked
	}
	r.externalTicketID = &ticketID
	r.touch(now)
	return nil
}

// StateChange describes the effect of applying a tracker state.
type StateChange struct {
	Changed bool
	From    vo.Status
	To      vo.Status
	// EnteredResolved is true only on the transition into resolved.
	EnteredResolved bool
}

// ApplyTrackerState moves the request to mapped and records the tracker state.
// When mapped equals the current status nothing changes, which keeps redelivered
// events from rewriting the record or repeating enrichment.
func (r *CustomerRequest) ApplyTrackerState(stateID, stateName string, mapped vo.Status, now time.Time) StateChange {
	change := StateChange{From: r.status, To: mapped}
	if mapped == r.status {
		return change
	}

	now = now.UTC()
	r.metadata.LinearState = &LinearState{
		ID:        stateID,
		Name:      stateName,
		UpdatedAt: now,
	}
	r.status = mapped
	r.touch(now)

	change.Changed = true
	change.EnteredResolved = mapped.IsResolved() && !change.From.IsResolved()
	return change
}

func (r *CustomerRequest) SetResponse(response string, now time.Time) {
	r.response = &response
	r.touch(now)
}

// RecordLatestComment replaces the stored comment snapshot as a whole.
func (r *CustomerRequest) RecordLatestComment(c LatestComment, now time.Time) {
	r.metadata.LatestComment = &c
	r.touch(now)
}

func (r *CustomerRequest) SetIssueSuggestion(s IssueSuggestion, now time.Time) {
	r.metadata.IssueSuggestion = &s
	r.touch(now)
}

func (r *CustomerRequest) MarkDeleted(now time.Time) {
	now = now.UTC()
	r.deletedAt = &now
	r.touch(now)
}

func (r *CustomerRequest) touch(now time.Time) {
	r.updatedAt = now.UTC()
}
