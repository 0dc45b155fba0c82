package model

import "time"

// BookingEvent is published after every successful creation or status
// transition so the notification dispatcher can act on it asynchronously.
// PreviousStatus is empty for creation events.
type BookingEvent struct {
	BookingID      string        `json:"booking_id"`
	Kind           BookingKind   `json:"kind"`
	PreviousStatus BookingStatus `json:"previous_status,omitempty"`
	NewStatus      BookingStatus `json:"new_status"`
	OccurredAt     time.Time     `json:"occurred_at"`
}
