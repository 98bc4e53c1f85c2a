package models

import (
	"fmt"
	"time"

	"github.com/lib/pq"
)

// DaySummary holds the group's note and photos for one calendar day.
type DaySummary struct {
	ID           string         `db:"id" json:"id"`
	GroupID      string         `db:"group_id" json:"group"`
	Date         string         `db:"date" json:"date"`
	Note         string         `db:"note" json:"note"`
	Base64Photos pq.StringArray `db:"base64_photos" json:"base64_photos"`
	UpdatedAt    *time.Time     `db:"updated_at" json:"updated_at,omitempty"`
}

// DaySummaryID builds the document key "{group}_{dateId}".
func DaySummaryID(group, dateID string) string {
	return fmt.Sprintf("%s_%s", group, dateID)
}
