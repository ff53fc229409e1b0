package intake

import "errors"

var (
	// ErrMissingField is returned when a mandatory field is empty after
	// normalization
	ErrMissingField = errors.New("required field missing")

	// ErrInvalidEmail is returned when the email does not look like
	// local@domain.tld
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrMismatchedDetails is returned under the strict detail policy when
	// the count of notes does not match the count of images
	ErrMismatchedDetails = errors.New("each image needs its own detail note")

	// ErrPersistence is returned when the lead row cannot be created
	ErrPersistence = errors.New("could not save the lead")
)
