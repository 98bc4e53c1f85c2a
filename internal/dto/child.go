package dto

import "github.com/noah-isme/daycare-api/internal/dayview"

// CreateChildRequest registers a child in a group with at least one parent.
type CreateChildRequest struct {
	Name      string   `json:"name" validate:"required,max=120"`
	Group     string   `json:"group" validate:"required,max=60"`
	ParentIDs []string `json:"parentIds" validate:"required,min=1,dive,required"`
}

// SickRequest reports the child sick on one calendar day.
type SickRequest struct {
	Date   string `json:"date" validate:"required,len=10"`
	Reason string `json:"reason" validate:"required,oneof=Feber Forkjølet Omgangssyke Annet"`
}

// VacationRequest sets the inclusive vacation range. Both bounds accept an
// RFC 3339 string, a YYYY-MM-DD day or epoch milliseconds.
type VacationRequest struct {
	From dayview.Timestamp `json:"from"`
	To   dayview.Timestamp `json:"to"`
}

// SleepPlanRequest stores whether the child should sleep and roughly how long.
type SleepPlanRequest struct {
	Planned bool `json:"planned"`
	Minutes *int `json:"minutes,omitempty" validate:"omitempty,min=0,max=600"`
}

// DayReminderRequest replaces the parent's free text reminder.
type DayReminderRequest struct {
	Reminder string `json:"reminder" validate:"max=1000"`
}

// PhotoRequest carries a base64 data URL.
type PhotoRequest struct {
	DataURL string `json:"dataUrl" validate:"required"`
}

// ParentContact is the staff facing view of a parent.
type ParentContact struct {
	ID       string  `json:"id"`
	FullName string  `json:"fullName"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone,omitempty"`
}
