package model

import "time"

// ScheduleWindow is one recurring weekly interval during which a provider
// accepts bookings. Times are clock values in the clinic's local time zone.
type ScheduleWindow struct {
	Day                 string `json:"day" bson:"day" validate:"required,oneof=Sunday Monday Tuesday Wednesday Thursday Friday Saturday"`
	StartTime           string `json:"start_time" bson:"start_time" validate:"required,hhmm_time"`
	EndTime             string `json:"end_time" bson:"end_time" validate:"required,hhmm_time"`
	SlotDurationMinutes int    `json:"slot_duration_min" bson:"slot_duration_min" validate:"required,min=1,max=480"`
}

type Provider struct {
	ID        string           `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string           `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Specialty string           `json:"specialty" bson:"specialty" validate:"required,min=2,max=100"`
	Degree    string           `json:"degree,omitempty" bson:"degree,omitempty" validate:"omitempty,max=100"`
	Fee       int              `json:"fee" bson:"fee" validate:"min=0"`
	Windows   []ScheduleWindow `json:"windows" bson:"windows" validate:"omitempty,dive"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type ProviderUpdate struct {
	Name      string            `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Specialty string            `json:"specialty,omitempty" validate:"omitempty,min=2,max=100"`
	Degree    string            `json:"degree,omitempty" validate:"omitempty,max=100"`
	Fee       *int              `json:"fee,omitempty" validate:"omitempty,min=0"`
	Windows   *[]ScheduleWindow `json:"windows,omitempty" validate:"omitempty,dive"`
}
