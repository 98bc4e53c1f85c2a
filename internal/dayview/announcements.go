package dayview

import (
	"time"

	"github.com/noah-isme/daycare-api/internal/models"
)

// VisibleAnnouncements keeps, in source order, the announcements that apply
// to target's day.
func VisibleAnnouncements(announcements []models.GroupAnnouncement, target time.Time) []models.GroupAnnouncement {
	id := DateID(target)
	visible := make([]models.GroupAnnouncement, 0, len(announcements))
	for _, a := range announcements {
		if AnnouncementVisibleOn(a, id) {
			visible = append(visible, a)
		}
	}
	return visible
}

// AnnouncementVisibleOn reports whether a is shown on the given day id.
func AnnouncementVisibleOn(a models.GroupAnnouncement, dateID string) bool {
	if a.IsAlwaysVisible() {
		return true
	}
	if a.FromDate == nil || a.ToDate == nil {
		return false
	}
	from, ok := NormalizeDateID(*a.FromDate)
	if !ok {
		return false
	}
	to, ok := NormalizeDateID(*a.ToDate)
	if !ok {
		return false
	}
	return InRange(dateID, from, to)
}
