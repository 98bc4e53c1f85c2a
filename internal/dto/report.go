package dto

// ReportFormat enumerates group day report encodings.
type ReportFormat string

const (
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatPDF  ReportFormat = "pdf"
	ReportFormatXLSX ReportFormat = "xlsx"
)

// ReportFile is a rendered report ready to stream to the client.
type ReportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// GroupDayReportRow is one child line in the group day report.
type GroupDayReportRow struct {
	ChildName        string `json:"childName"`
	StatusText       string `json:"statusText"`
	SleepText        string `json:"sleepText"`
	PlannedSleepText string `json:"plannedSleepText"`
	DayReminderText  string `json:"dayReminderText"`
}
