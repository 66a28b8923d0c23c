package models

import "time"

// RoastSession owns an event log. Zero CreatedAt/UpdatedAt mean "not recorded".
type RoastSession struct {
	ID            string    `json:"id"`
	UserID        int       `json:"user_id"`
	BeanProfile   string    `json:"bean_profile,omitempty"`
	RoastLevel    string    `json:"roast_level,omitempty"` // desired level, e.g. "City+"
	Machine       string    `json:"machine,omitempty"`
	WeightBeforeG *float64  `json:"weight_before_g,omitempty"`
	WeightAfterG  *float64  `json:"weight_after_g,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
