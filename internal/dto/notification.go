package dto

import "time"

// NotificationSummary lists what changed for a child since the user last looked.
type NotificationSummary struct {
	ChildID    string     `json:"childId"`
	Count      int        `json:"count"`
	Messages   []string   `json:"messages"`
	LastSeenAt *time.Time `json:"lastSeenAt,omitempty"`
}
