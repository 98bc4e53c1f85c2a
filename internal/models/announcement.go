package models

import "time"

// GroupAnnouncement is a message from staff to every family in a group.
// It is either permanent (AlwaysVisible) or scoped to an inclusive
// FromDate/ToDate window of YYYY-MM-DD day ids.
type GroupAnnouncement struct {
	ID            string    `db:"id" json:"id"`
	GroupID       string    `db:"group_id" json:"group_id"`
	Title         string    `db:"title" json:"title"`
	Message       string    `db:"message" json:"message"`
	AlwaysVisible *bool     `db:"always_visible" json:"always_visible,omitempty"`
	FromDate      *string   `db:"from_date" json:"from_date,omitempty"`
	ToDate        *string   `db:"to_date" json:"to_date,omitempty"`
	CreatedBy     string    `db:"created_by" json:"created_by"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// IsAlwaysVisible reports whether the announcement is permanent.
func (a GroupAnnouncement) IsAlwaysVisible() bool {
	return a.AlwaysVisible != nil && *a.AlwaysVisible
}
