package customerrequest

import (
	"context"
	"fmt"
	"strings"
	"time"

	vo "github.com/orris-inc/tracksync/internal/domain/customerrequest/valueobjects"
)

// Repository persists customer requests. Every mutating method is a single
// statement; none of them relies on a multi-statement transaction.
// Reads and writes other than HardDelete and DeleteIncompleteBefore ignore
// soft-deleted rows.
type Repository interface {
	Create(ctx context.Context, r *CustomerRequest) error
	// HardDelete removes the row outright. Used to undo a failed create.
	HardDelete(ctx context.Context, requestID string) error
	LinkTicket(ctx context.Context, requestID, ticketID string, at time.Time) error
	GetByID(ctx context.Context, requestID string) (*CustomerRequest, error)
	GetByExternalTicketID(ctx context.Context, ticketID string) (*CustomerRequest, error)
	Update(ctx context.Context, requestID string, patch Patch, at time.Time) error
	// Save writes status, response, metadata and updated_at from r. When
	// guarded, the write only applies if the stored version still equals
	// r.Version(); otherwise ErrVersionConflict is returned.
	Save(ctx context.Context, r *CustomerRequest, guarded bool) error
	SoftDelete(ctx context.Context, requestID string, at time.Time) error
	// List returns up to filter.Limit rows ordered by id ascending.
	List(ctx context.Context, filter ListFilter) ([]*CustomerRequest, error)
	// DeleteIncompleteBefore hard-deletes rows that never got a ticket linked
	// and were created before cutoff.
	DeleteIncompleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type ListFilter struct {
	Status         *vo.Status
	ExternalUserID *string
	// Cursor is the id of the last row of the previous page.
	Cursor string
	Limit  int
}

// Patch lists the fields of an explicit update. Nil fields are left alone.
// Metadata, when present, replaces the stored document wholesale.
type Patch struct {
	Status   *vo.Status
	Content  *string
	Type     *vo.RequestType
	Response *string
	Metadata *Metadata
}

func (p Patch) Validate() error {
	if p.Status != nil && !p.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", *p.Status)
	}
	if p.Type != nil && !p.Type.IsValid() {
		return fmt.Errorf("invalid request type: %s", *p.Type)
	}
	if p.Content != nil && strings.TrimSpace(*p.Content) == "" {
		return fmt.Errorf("content must not be empty")
	}
	return nil
}
