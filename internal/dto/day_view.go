package dto

import (
	"time"

	"github.com/noah-isme/daycare-api/internal/models"
)

// DayViewResponse is the resolved profile of one child for one calendar day.
type DayViewResponse struct {
	ChildID          string                     `json:"childId"`
	ChildName        string                     `json:"childName"`
	Group            string                     `json:"group"`
	PhotoDataURL     string                     `json:"photoDataUrl,omitempty"`
	DateID           string                     `json:"dateId"`
	DisplayStatus    string                     `json:"displayStatus"`
	DisplayTimestamp *time.Time                 `json:"displayTimestamp,omitempty"`
	StatusText       string                     `json:"statusText"`
	SleepText        string                     `json:"sleepText"`
	PlannedSleepText string                     `json:"plannedSleepText"`
	DayReminderText  string                     `json:"dayReminderText"`
	Announcements    []models.GroupAnnouncement `json:"announcements"`
	Note             string                     `json:"note"`
	Photos           []string                   `json:"photos"`
	CanGoForward     bool                       `json:"canGoForward"`
	PreviousDateID   string                     `json:"previousDateId"`
	NextDateID       *string                    `json:"nextDateId,omitempty"`
}
