package dto

// DaySummaryNoteRequest sets the group's note for one day.
type DaySummaryNoteRequest struct {
	Date string `json:"date" validate:"required,len=10"`
	Note string `json:"note" validate:"max=5000"`
}

// DaySummaryPhotoRequest appends one base64 photo to the group's day album.
type DaySummaryPhotoRequest struct {
	Date  string `json:"date" validate:"required,len=10"`
	Photo string `json:"photo" validate:"required"`
}
