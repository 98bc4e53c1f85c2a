package dayview

import (
	"fmt"
	"math"
	"time"

	"github.com/noah-isme/daycare-api/internal/models"
)

// Planned sleep texts.
const (
	PlannedSleepUnset   = "Ikke angitt"
	PlannedSleepNone    = "Skal ikke sove"
	PlannedSleepUnsized = "Skal sove"
)

// SleepText describes the nap logged on target's day. It is empty unless the
// child's sleep log belongs to that day.
func SleepText(child models.Child, target time.Time, loc *time.Location) string {
	if child.SleepDateID == nil || *child.SleepDateID != DateID(target) {
		return ""
	}
	if child.SleepStart == nil || child.SleepStart.IsZero() {
		return ""
	}
	start := formatClock(*child.SleepStart, loc)
	if child.SleepEnd != nil {
		if duration := FormatDuration(*child.SleepStart, *child.SleepEnd); duration != "" {
			return fmt.Sprintf("%s–%s (%s)", start, formatClock(*child.SleepEnd, loc), duration)
		}
	}
	return "Startet " + start
}

// FormatDuration renders the span in rounded whole minutes as "H t M min",
// or "M min" under an hour. It is empty unless end is after start.
func FormatDuration(start, end time.Time) string {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return ""
	}
	total := int(math.Round(end.Sub(start).Minutes()))
	hours, minutes := total/60, total%60
	if hours > 0 {
		return fmt.Sprintf("%d t %d min", hours, minutes)
	}
	return fmt.Sprintf("%d min", minutes)
}

// PlannedSleepText describes the parents' sleep preference. It does not
// depend on the viewed date.
func PlannedSleepText(child models.Child) string {
	switch {
	case child.SleepPlanned == nil:
		return PlannedSleepUnset
	case !*child.SleepPlanned:
		return PlannedSleepNone
	case child.SleepPlannedMinutes != nil && *child.SleepPlannedMinutes > 0:
		return fmt.Sprintf("Skal sove ca %d min", *child.SleepPlannedMinutes)
	default:
		return PlannedSleepUnsized
	}
}
