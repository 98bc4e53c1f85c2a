package models

import (
	"time"

	"github.com/lib/pq"
)

// ChildStatus represents the live attendance state recorded by staff.
type ChildStatus string

const (
	ChildStatusNone      ChildStatus = ""
	ChildStatusDelivered ChildStatus = "DELIVERED"
	ChildStatusPickedUp  ChildStatus = "PICKED_UP"
)

// Valid returns true when the status is a supported value.
func (s ChildStatus) Valid() bool {
	switch s {
	case ChildStatusNone, ChildStatusDelivered, ChildStatusPickedUp:
		return true
	default:
		return false
	}
}

// Sick reasons offered to parents when reporting a sick day.
const (
	SickReasonFever   = "Feber"
	SickReasonCold    = "Forkjølet"
	SickReasonStomach = "Omgangssyke"
	SickReasonOther   = "Annet"
)

// Child represents a child enrolled in a daycare group.
type Child struct {
	ID                  string         `db:"id" json:"id"`
	Name                string         `db:"name" json:"name"`
	Group               string         `db:"group_id" json:"group"`
	ParentIDs           pq.StringArray `db:"parent_ids" json:"parent_ids"`
	Status              ChildStatus    `db:"status" json:"status"`
	LastUpdated         *time.Time     `db:"last_updated" json:"last_updated,omitempty"`
	SickDate            *string        `db:"sick_date" json:"sick_date,omitempty"`
	SickReason          *string        `db:"sick_reason" json:"sick_reason,omitempty"`
	VacationFrom        *time.Time     `db:"vacation_from" json:"vacation_from,omitempty"`
	VacationTo          *time.Time     `db:"vacation_to" json:"vacation_to,omitempty"`
	SleepPlanned        *bool          `db:"sleep_planned" json:"sleep_planned,omitempty"`
	SleepPlannedMinutes *int           `db:"sleep_planned_minutes" json:"sleep_planned_minutes,omitempty"`
	SleepDateID         *string        `db:"sleep_date_id" json:"sleep_date_id,omitempty"`
	SleepStart          *time.Time     `db:"sleep_start" json:"sleep_start,omitempty"`
	SleepEnd            *time.Time     `db:"sleep_end" json:"sleep_end,omitempty"`
	DayReminder         string         `db:"day_reminder" json:"day_reminder"`
	PhotoDataURL        string         `db:"photo_data_url" json:"photo_data_url,omitempty"`
	CreatedAt           time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at" json:"updated_at"`
}

// HasParent reports whether the user is registered as a parent of the child.
func (c *Child) HasParent(userID string) bool {
	for _, id := range c.ParentIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ChildFilter narrows child listings.
type ChildFilter struct {
	Group    string
	ParentID string
}

// CheckinAction identifies the kind of attendance change recorded in the checkin log.
type CheckinAction string

const (
	CheckinActionCheckin  CheckinAction = "checkin"
	CheckinActionCheckout CheckinAction = "checkout"
)

// Checkin is an append-only record of a staff attendance change.
type Checkin struct {
	ID          string        `db:"id" json:"id"`
	ChildID     string        `db:"child_id" json:"child_id"`
	Action      CheckinAction `db:"action" json:"action"`
	Status      ChildStatus   `db:"status" json:"status"`
	PerformedBy *string       `db:"performed_by" json:"performed_by,omitempty"`
	Timestamp   time.Time     `db:"timestamp" json:"timestamp"`
}

// ChildMeta tracks when a user last looked at a child's updates.
type ChildMeta struct {
	UserID     string     `db:"user_id" json:"user_id"`
	ChildID    string     `db:"child_id" json:"child_id"`
	LastSeenAt *time.Time `db:"last_seen_at" json:"last_seen_at,omitempty"`
}
