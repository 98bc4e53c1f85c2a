// Package dayview resolves what a child's profile shows for one calendar day.
//
// Resolve merges the child's live attendance, sick day, vacation range, sleep
// log and preferences, day reminder, the group's announcements and the
// group's day summary into a View. Everything here is a pure function of its
// inputs: no I/O, no clocks, no shared state.
package dayview

import (
	"strings"
	"time"

	"github.com/noah-isme/daycare-api/internal/models"
)

// Placeholders used when the source field is empty or whitespace.
const (
	DefaultNote        = "Kommer i løpet av dagen"
	DefaultDayReminder = "Ingen dagspåminnelse registrert."
)

// Input is a consistent snapshot of everything needed for one day.
type Input struct {
	Child         models.Child
	Target        time.Time
	Today         time.Time
	Announcements []models.GroupAnnouncement
	Summary       *models.DaySummary
	Location      *time.Location
}

// View is the display-ready day summary for one child and date.
type View struct {
	DateID               string
	DisplayStatus        string
	DisplayTimestamp     *time.Time
	StatusText           string
	SleepText            string
	PlannedSleepText     string
	DayReminderText      string
	VisibleAnnouncements []models.GroupAnnouncement
	Note                 string
	Photos               []string
	CanGoForward         bool
}

// Resolve builds the View for in.Target.
func Resolve(in Input) View {
	status, ts := ResolveStatus(in.Child, in.Target, in.Today, in.Location)

	view := View{
		DateID:               DateID(in.Target),
		DisplayStatus:        status,
		DisplayTimestamp:     ts,
		StatusText:           StatusText(status, ts, in.Location),
		SleepText:            SleepText(in.Child, in.Target, in.Location),
		PlannedSleepText:     PlannedSleepText(in.Child),
		DayReminderText:      orPlaceholder(in.Child.DayReminder, DefaultDayReminder),
		VisibleAnnouncements: VisibleAnnouncements(in.Announcements, in.Target),
		Note:                 DefaultNote,
		Photos:               []string{},
		CanGoForward:         !IsFutureBeyondTomorrow(in.Target, in.Today, in.Location),
	}

	if in.Summary != nil {
		view.Note = orPlaceholder(in.Summary.Note, DefaultNote)
		if len(in.Summary.Base64Photos) > 0 {
			view.Photos = []string(in.Summary.Base64Photos)
		}
	}

	return view
}

func orPlaceholder(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}
