package dayview

import (
	"fmt"
	"strings"
	"time"
)

// DateIDLayout is the canonical calendar-day identifier format.
const DateIDLayout = "2006-01-02"

const dateIDLength = len(DateIDLayout)

// DateID returns the YYYY-MM-DD identifier of the UTC day containing t.
func DateID(t time.Time) string {
	return t.UTC().Format(DateIDLayout)
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(orLocal(loc))
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last millisecond of t's calendar day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(orLocal(loc))
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// IsFutureBeyondTomorrow reports whether t falls on tomorrow or later
// relative to today. Forward navigation stops once this is true.
func IsFutureBeyondTomorrow(t, today time.Time, loc *time.Location) bool {
	tomorrow := StartOfDay(today, loc).AddDate(0, 0, 1)
	return !StartOfDay(t, loc).Before(tomorrow)
}

// InRange compares day ids lexically: from <= id <= to. Bounds that are not
// exactly ten characters never match.
func InRange(id, from, to string) bool {
	if len(from) != dateIDLength || len(to) != dateIDLength {
		return false
	}
	return from <= id && id <= to
}

// NormalizeDateID trims raw and keeps its first ten characters, so both
// "2024-05-01" and "2024-05-01T00:00:00Z" yield "2024-05-01".
func NormalizeDateID(raw string) (string, bool) {
	trimmed := []rune(strings.TrimSpace(raw))
	if len(trimmed) > dateIDLength {
		trimmed = trimmed[:dateIDLength]
	}
	id := string(trimmed)
	if len(trimmed) != dateIDLength || len(id) != dateIDLength {
		return "", false
	}
	return id, true
}

// ParseDateID turns a YYYY-MM-DD value into an instant on that calendar day.
// The instant is anchored at noon in loc so that DateID of the result gives
// back the same day for any location within twelve hours of UTC.
func ParseDateID(raw string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(DateIDLayout, strings.TrimSpace(raw), orLocal(loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date id %q: %w", raw, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, day.Location()), nil
}

// NextDay moves one day forward unless that would pass tomorrow, in which
// case current is returned with ok=false.
func NextDay(current, today time.Time, loc *time.Location) (time.Time, bool) {
	next := current.AddDate(0, 0, 1)
	tomorrow := StartOfDay(today, loc).AddDate(0, 0, 1)
	if StartOfDay(next, loc).After(tomorrow) {
		return current, false
	}
	return next, true
}

// PreviousDay moves one day back. There is no lower bound.
func PreviousDay(current time.Time) time.Time {
	return current.AddDate(0, 0, -1)
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
