package customerrequest

import "errors"

var (
	// ErrRequestNotFound covers both absent and soft-deleted records.
	ErrRequestNotFound = errors.New("customer request not found")
	// ErrVersionConflict means the row changed between read and guarded write.
	ErrVersionConflict = errors.New("customer request was modified concurrently")
	ErrAlreadyLinked   = errors.New("customer request is already linked to a ticket")
)
