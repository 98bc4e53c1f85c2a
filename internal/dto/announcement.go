package dto

// AnnouncementRequest creates or replaces a group announcement. Either
// AlwaysVisible is true or both dates are given.
type AnnouncementRequest struct {
	Title         string  `json:"title" validate:"required,max=200"`
	Message       string  `json:"message" validate:"required"`
	AlwaysVisible bool    `json:"alwaysVisible"`
	FromDate      *string `json:"fromDate,omitempty"`
	ToDate        *string `json:"toDate,omitempty"`
}
