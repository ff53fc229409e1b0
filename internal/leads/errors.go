package leads

import "errors"

var (
	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")

	// ErrDuplicatePath is returned when an image storage path collides
	ErrDuplicatePath = errors.New("storage path already exists")
)
