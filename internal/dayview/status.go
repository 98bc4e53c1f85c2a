package dayview

import (
	"time"

	"github.com/noah-isme/daycare-api/internal/models"
)

// Display labels shown for a child's status.
const (
	LabelDelivered = "Levert"
	LabelPickedUp  = "Hentet"
	LabelVacation  = "Ferie"
	LabelSick      = "Syk"
)

const clockLayout = "15:04"

// StatusLabel maps a stored attendance status to its display label.
func StatusLabel(status models.ChildStatus) string {
	switch status {
	case models.ChildStatusDelivered:
		return LabelDelivered
	case models.ChildStatusPickedUp:
		return LabelPickedUp
	default:
		return ""
	}
}

// ResolveStatus decides the status label and timestamp to show for target.
// Rules apply in order and later ones override: live attendance (blank for
// days after today), then vacation range, then sick day.
func ResolveStatus(child models.Child, target, today time.Time, loc *time.Location) (string, *time.Time) {
	label := StatusLabel(child.Status)
	ts := child.LastUpdated
	if label == "" {
		ts = nil
	}

	if StartOfDay(target, loc).After(StartOfDay(today, loc)) {
		label, ts = "", nil
	}

	if onVacation(child, target, loc) {
		label, ts = LabelVacation, nil
	}

	if child.SickDate != nil && *child.SickDate != "" && *child.SickDate == DateID(target) {
		label, ts = LabelSick, nil
	}

	return label, ts
}

func onVacation(child models.Child, target time.Time, loc *time.Location) bool {
	if child.VacationFrom == nil || child.VacationTo == nil {
		return false
	}
	from := StartOfDay(*child.VacationFrom, loc)
	to := EndOfDay(*child.VacationTo, loc)
	return !target.Before(from) && !target.After(to)
}

// StatusText renders "Levert • 08:15", or just the label without a timestamp.
func StatusText(label string, ts *time.Time, loc *time.Location) string {
	if label == "" {
		return ""
	}
	if ts == nil || ts.IsZero() {
		return label
	}
	return label + " • " + formatClock(*ts, loc)
}

func formatClock(t time.Time, loc *time.Location) string {
	return t.In(orLocal(loc)).Format(clockLayout)
}
