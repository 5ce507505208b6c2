package valueobjects

import "fmt"

// Status is the local lifecycle state of a customer request. Tracker-driven
// changes come from the webhook engine; explicit updates may set any valid value.
type Status string

const (
	StatusPending    Status = "pending"
	StatusTriaged    Status = "triaged"
	StatusInProgress Status = "in_progress"
	StatusInReview   Status = "in_review"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
	StatusCancelled  Status = "cancelled"
	// StatusError is set internally only; no tracker state maps to it.
	StatusError Status = "error"
)

var validStatuses = map[Status]bool{
	StatusPending:    true,
	StatusTriaged:    true,
	StatusInProgress: true,
	StatusInReview:   true,
	StatusResolved:   true,
	StatusClosed:     true,
	StatusCancelled:  true,
	StatusError:      true,
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	return validStatuses[s]
}

func (s Status) IsResolved() bool {
	return s == StatusResolved
}

// IsTerminal reports whether the tracker considers the work finished.
func (s Status) IsTerminal() bool {
	return s == StatusResolved || s == StatusClosed || s == StatusCancelled
}

func NewStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid status: %s", s)
	}
	return st, nil
}
