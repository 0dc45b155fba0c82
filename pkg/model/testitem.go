package model

import "time"

// TestItem is one entry in the diagnostic-test catalog (blood panel, X-ray
// and so on). Test orders reference items by ID the same way appointments
// reference providers.
type TestItem struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Category    string    `json:"category" bson:"category" validate:"required,min=2,max=50"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=500"`
	Price       int       `json:"price" bson:"price" validate:"min=0"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type TestItemUpdate struct {
	Name        string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Category    string `json:"category,omitempty" validate:"omitempty,min=2,max=50"`
	Description string `json:"description,omitempty" validate:"omitempty,max=500"`
	Price       *int   `json:"price,omitempty" validate:"omitempty,min=0"`
}
