package valueobjects

import "fmt"

type RequestType string

const (
	RequestTypeBug     RequestType = "bug"
	RequestTypeFeature RequestType = "feature"
)

func (t RequestType) String() string {
	return string(t)
}

func (t RequestType) IsValid() bool {
	return t == RequestTypeBug || t == RequestTypeFeature
}

// Title is the human label used in ticket titles and generated messages.
func (t RequestType) Title() string {
	switch t {
	case RequestTypeBug:
		return "Bug"
	case RequestTypeFeature:
		return "Feature"
	default:
		return string(t)
	}
}

func NewRequestType(s string) (RequestType, error) {
	t := RequestType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid request type: %s", s)
	}
	return t, nil
}
