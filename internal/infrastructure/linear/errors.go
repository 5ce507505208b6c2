package linear

import (
	"errors"
	"fmt"
	"strings"
)

// ErrLabelNotFound is returned when a configured label does not exist on the team.
var ErrLabelNotFound = errors.New("linear: label not found")

// APIError is a non-2xx HTTP response or a GraphQL error payload.
type APIError struct {
	StatusCode int
	Messages   []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("linear API error %d", e.StatusCode)
	}
	return fmt.Sprintf("linear API error %d: %s", e.StatusCode, strings.Join(e.Messages, ", "))
}

// IsRateLimited reports whether err is a 429 from the Linear API.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
