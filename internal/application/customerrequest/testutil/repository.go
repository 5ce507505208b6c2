// Package testutil provides an in-memory customer request repository for
// application-layer tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/orris-inc/tracksync/internal/domain/customerrequest"
	vo "github.com/orris-inc/tracksync/internal/domain/customerrequest/valueobjects"
)

// MockCustomerRequestRepository keeps rows in memory with the same
// visibility and versioning rules as the SQL repository.
type MockCustomerRequestRepository struct {
	mu   sync.RWMutex
	rows map[string]*customerrequest.CustomerRequest

	// Error injection for testing
	CreateError     error
	LinkError       error
	HardDeleteError error
	GetError        error
	UpdateError     error
	SaveError       error
	ListError       error

	// BeforeSave runs before every Save, outside the lock. Tests use it to
	// interleave a competing write.
	BeforeSave func(r *customerrequest.CustomerRequest)

	SaveCalls int
}

func NewMockCustomerRequestRepository() *MockCustomerRequestRepository {
	return &MockCustomerRequestRepository{
		rows: make(map[string]*customerrequest.CustomerRequest),
	}
}

var _ customerrequest.Repository = (*MockCustomerRequestRepository)(nil)

func (m *MockCustomerRequestRepository) Create(ctx context.Context, r *customerrequest.CustomerRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	m.rows[r.ID()] = snapshot(r, func(*state) {})
	return nil
}

func (m *MockCustomerRequestRepository) HardDelete(ctx context.Context, requestID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.HardDeleteError != nil {
		return m.HardDeleteError
	}
	if _, ok := m.rows[requestID]; !ok {
		return customerrequest.ErrRequestNotFound
	}
	delete(m.rows, requestID)
	return nil
}

func (m *MockCustomerRequestRepository) LinkTicket(ctx context.Context, requestID, ticketID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LinkError != nil {
		return m.LinkError
	}
	row, ok := m.live(requestID)
	if !ok || row.IsLinked() {
		return customerrequest.ErrRequestNotFound
	}
	m.rows[requestID] = snapshot(row, func(s *state) {
		s.ticketID = &ticketID
		s.updatedAt = at.UTC()
		s.version++
	})
	return nil
}

func (m *MockCustomerRequestRepository) GetByID(ctx context.Context, requestID string) (*customerrequest.CustomerRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	row, ok := m.live(requestID)
	if !ok {
		return nil, customerrequest.ErrRequestNotFound
	}
	return snapshot(row, func(*state) {}), nil
}

func (m *MockCustomerRequestRepository) GetByExternalTicketID(ctx context.Context, ticketID string) (*customerrequest.CustomerRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	for _, id := range m.sortedIDs() {
		row := m.rows[id]
		if row.IsDeleted() || row.ExternalTicketID() == nil || *row.ExternalTicketID() != ticketID {
			continue
		}
		return snapshot(row, func(*state) {}), nil
	}
	return nil, customerrequest.ErrRequestNotFound
}

func (m *MockCustomerRequestRepository) Update(ctx context.Context, requestID string, patch customerrequest.Patch, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return m.UpdateError
	}
	row, ok := m.live(requestID)
	if !ok {
		return customerrequest.ErrRequestNotFound
	}
	m.rows[requestID] = snapshot(row, func(s *state) {
		if patch.Status != nil {
			s.status = *patch.Status
		}
		if patch.Content != nil {
			s.content = *patch.Content
		}
		if patch.Type != nil {
			s.requestType = *patch.Type
		}
		if patch.Response != nil {
			resp := *patch.Response
			s.response = &resp
		}
		if patch.Metadata != nil {
			s.metadata = patch.Metadata.Clone()
		}
		s.updatedAt = at.UTC()
		s.version++
	})
	return nil
}

func (m *MockCustomerRequestRepository) Save(ctx context.Context, r *customerrequest.CustomerRequest, guarded bool) error {
	if m.BeforeSave != nil {
		m.BeforeSave(r)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.SaveError != nil {
		return m.SaveError
	}
	row, ok := m.live(r.ID())
	if !ok {
		return customerrequest.ErrRequestNotFound
	}
	if guarded && row.Version() != r.Version() {
		return customerrequest.ErrVersionConflict
	}
	m.rows[r.ID()] = snapshot(row, func(s *state) {
		s.status = r.Status()
		s.metadata = r.Metadata()
		s.response = r.Response()
		s.updatedAt = r.UpdatedAt()
		s.version++
	})
	return nil
}

func (m *MockCustomerRequestRepository) SoftDelete(ctx context.Context, requestID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return m.UpdateError
	}
	row, ok := m.live(requestID)
	if !ok {
		return customerrequest.ErrRequestNotFound
	}
	m.rows[requestID] = snapshot(row, func(s *state) {
		ts := at.UTC()
		s.deletedAt = &ts
		s.updatedAt = ts
		s.version++
	})
	return nil
}

func (m *MockCustomerRequestRepository) List(ctx context.Context, filter customerrequest.ListFilter) ([]*customerrequest.CustomerRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ListError != nil {
		return nil, m.ListError
	}

	var out []*customerrequest.CustomerRequest
	for _, id := range m.sortedIDs() {
		row := m.rows[id]
		if row.IsDeleted() {
			continue
		}
		if filter.Cursor != "" && id <= filter.Cursor {
			continue
		}
		if filter.Status != nil && row.Status() != *filter.Status {
			continue
		}
		if filter.ExternalUserID != nil && row.ExternalUserID() != *filter.ExternalUserID {
			continue
		}
		out = append(out, snapshot(row, func(*state) {}))
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (m *MockCustomerRequestRepository) DeleteIncompleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, row := range m.rows {
		if !row.IsLinked() && row.CreatedAt().Before(cutoff) {
			delete(m.rows, id)
			n++
		}
	}
	return n, nil
}

// Len counts every stored row, soft-deleted ones included.
func (m *MockCustomerRequestRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}

// Raw returns a row regardless of its deleted state.
func (m *MockCustomerRequestRepository) Raw(requestID string) *customerrequest.CustomerRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.rows[requestID]
	if !ok {
		return nil
	}
	return snapshot(row, func(*state) {})
}

func (m *MockCustomerRequestRepository) live(requestID string) (*customerrequest.CustomerRequest, bool) {
	row, ok := m.rows[requestID]
	if !ok || row.IsDeleted() {
		return nil, false
	}
	return row, true
}

func (m *MockCustomerRequestRepository) sortedIDs() []string {
	ids := make([]string, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type state struct {
	content     string
	requestType vo.RequestType
	status      vo.Status
	ticketID    *string
	response    *string
	metadata    customerrequest.Metadata
	version     int
	updatedAt   time.Time
	deletedAt   *time.Time
}

// snapshot copies r, applies mutate to the copy and returns it. Stored rows
// and returned rows never share memory.
func snapshot(r *customerrequest.CustomerRequest, mutate func(s *state)) *customerrequest.CustomerRequest {
	s := state{
		content:     r.Content(),
		requestType: r.Type(),
		status:      r.Status(),
		ticketID:    copyString(r.ExternalTicketID()),
		response:    copyString(r.Response()),
		metadata:    r.Metadata(),
		version:     r.Version(),
		updatedAt:   r.UpdatedAt(),
		deletedAt:   r.DeletedAt(),
	}
	mutate(&s)

	out, err := customerrequest.ReconstructCustomerRequest(
		r.ID(),
		s.content,
		s.requestType,
		s.status,
		r.ExternalUserID(),
		copyString(r.UserName()),
		r.ScopeID(),
		s.ticketID,
		s.response,
		copyString(r.Source()),
		s.metadata,
		s.version,
		r.CreatedAt(),
		s.updatedAt,
		s.deletedAt,
	)
	if err != nil {
		panic(err)
	}
	return out
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
