package model

import "time"

type BookingKind string

const (
	KindAppointment BookingKind = "appointment"
	KindTest        BookingKind = "test"
)

type BookingStatus string

const (
	StatusPending         BookingStatus = "pending"
	StatusConfirmed       BookingStatus = "confirmed"
	StatusSampleCollected BookingStatus = "sample_collected"
	StatusCompleted       BookingStatus = "completed"
	StatusCancelled       BookingStatus = "cancelled"
)

// Booking is a persisted reservation of a service instance: a doctor
// appointment or a diagnostic-test order. BookingID is the human-readable
// identifier handed to the patient; the Mongo _id stays internal.
type Booking struct {
	ID            string        `json:"-" bson:"_id,omitempty"`
	BookingID     string        `json:"booking_id" bson:"booking_id" validate:"required"`
	Kind          BookingKind   `json:"kind" bson:"kind" validate:"required,oneof=appointment test"`
	PatientName   string        `json:"patient_name" bson:"patient_name" validate:"required,min=2,max=100"`
	PatientMobile string        `json:"patient_mobile" bson:"patient_mobile" validate:"required,patient_mobile"`
	PatientEmail  string        `json:"patient_email,omitempty" bson:"patient_email,omitempty" validate:"omitempty,email"`
	ReferenceID   string        `json:"reference_id" bson:"reference_id" validate:"required,mongodb"`
	ScheduledDate string        `json:"scheduled_date" bson:"scheduled_date" validate:"required,datetime=2006-01-02"`
	ScheduledTime string        `json:"scheduled_time" bson:"scheduled_time" validate:"required,hhmm_time"`
	Status        BookingStatus `json:"status" bson:"status" validate:"required,oneof=pending confirmed sample_collected completed cancelled"`
	Reason        string        `json:"reason,omitempty" bson:"reason,omitempty" validate:"omitempty,max=500"`
	CreatedBy     string        `json:"created_by" bson:"created_by" validate:"required,oneof=patient receptionist admin system"`
	UpdatedBy     string        `json:"updated_by,omitempty" bson:"updated_by,omitempty"`
	CreatedAt     time.Time     `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt     time.Time     `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// BookingRequest is the exhaustive input for creating a booking. Requests
// never carry a status or an ID; both are owned by the lifecycle manager.
type BookingRequest struct {
	Kind          BookingKind `json:"kind" validate:"required,oneof=appointment test"`
	PatientName   string      `json:"patient_name" validate:"required,min=2,max=100"`
	PatientMobile string      `json:"patient_mobile" validate:"required,patient_mobile"`
	PatientEmail  string      `json:"patient_email,omitempty" validate:"omitempty,email"`
	ReferenceID   string      `json:"reference_id" validate:"required,mongodb"`
	ScheduledDate string      `json:"scheduled_date" validate:"required,datetime=2006-01-02"`
	ScheduledTime string      `json:"scheduled_time" validate:"required,hhmm_time"`
	CreatedBy     string      `json:"created_by" validate:"required,oneof=patient receptionist admin"`
}

// TransitionRequest moves a booking to a target status. Reason is only
// meaningful when cancelling.
type TransitionRequest struct {
	Status BookingStatus `json:"status" validate:"required,oneof=confirmed sample_collected completed cancelled"`
	Actor  string        `json:"actor" validate:"required,oneof=receptionist admin system"`
	Reason string        `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// CanTransition reports whether a booking of the given kind may move from
// one status to another. Terminal statuses have no outgoing edges; the
// sample_collected stage exists only for test orders, and a test order must
// pass through it before completion.
func CanTransition(kind BookingKind, from, to BookingStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		if to == StatusCancelled {
			return true
		}
		if kind == KindTest {
			return to == StatusSampleCollected
		}
		return to == StatusCompleted
	case StatusSampleCollected:
		return kind == KindTest && to == StatusCompleted
	default:
		return false
	}
}

// IsTerminal reports whether no further transition can leave the status.
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}
