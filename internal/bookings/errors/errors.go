package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	// ErrStatusConflict means the conditional status update matched no
	// document: the booking changed underneath us between the read and
	// the write.
	ErrStatusConflict = errors.New("booking status changed concurrently")

	ErrDuplicateBookingID = errors.New("booking ID already exists")
)
