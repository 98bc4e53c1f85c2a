package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/daycare-api/internal/dayview"
	"github.com/noah-isme/daycare-api/internal/dto"
	"github.com/noah-isme/daycare-api/internal/models"
	appErrors "github.com/noah-isme/daycare-api/pkg/errors"
	"github.com/noah-isme/daycare-api/pkg/export"
)

// Group day report columns.
const (
	reportColumnChild       = "Barn"
	reportColumnStatus      = "Status"
	reportColumnSleep       = "Sovet"
	reportColumnPlanned     = "Planlagt søvn"
	reportColumnDayReminder = "Dagspåminnelse"
)

type dayViewResolver interface {
	Target(date string) (time.Time, error)
	ResolveChild(child models.Child, target time.Time, announcements []models.GroupAnnouncement, summary *models.DaySummary) *dto.DayViewResponse
}

// ReportServiceConfig toggles report rendering.
type ReportServiceConfig struct {
	Enabled bool
}

// ReportService renders the staff day sheet of a group.
type ReportService struct {
	children childLister
	days     dayViewResolver
	render   func(format string) (export.Renderer, error)
	cfg      ReportServiceConfig
	logger   *zap.Logger
}

// NewReportService constructs the service.
func NewReportService(children childLister, days dayViewResolver, cfg ReportServiceConfig, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{children: children, days: days, render: export.New, cfg: cfg, logger: logger}
}

// GroupDay resolves every child of group on date and renders the result.
func (s *ReportService) GroupDay(ctx context.Context, group, date string, format dto.ReportFormat, actor *models.JWTClaims) (*dto.ReportFile, error) {
	if !s.cfg.Enabled {
		return nil, appErrors.ErrFeatureDisabled
	}
	if err := ensureStaff(actor); err != nil {
		return nil, err
	}
	group = strings.TrimSpace(group)
	if group == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "group is required")
	}
	if format == "" {
		format = dto.ReportFormatCSV
	}
	renderer, err := s.render(string(format))
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv, pdf or xlsx")
	}
	target, err := s.days.Target(date)
	if err != nil {
		return nil, err
	}

	rows, err := s.Rows(ctx, group, target)
	if err != nil {
		return nil, err
	}
	dateID := dayview.DateID(target)
	dataset := buildGroupDayDataset(fmt.Sprintf("%s %s", group, dateID), rows)

	content, err := renderer.Render(dataset)
	if err != nil {
		s.logger.Error("failed to render group day report", zap.String("group", group), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to render report")
	}
	return &dto.ReportFile{
		Filename:    fmt.Sprintf("%s_%s.%s", sanitizeFilename(group), dateID, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Content:     content,
	}, nil
}

// Rows returns one resolved line per child in group.
func (s *ReportService) Rows(ctx context.Context, group string, target time.Time) ([]dto.GroupDayReportRow, error) {
	children, err := s.children.List(ctx, models.ChildFilter{Group: group})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list children")
	}
	rows := make([]dto.GroupDayReportRow, 0, len(children))
	for _, child := range children {
		view := s.days.ResolveChild(child, target, nil, nil)
		rows = append(rows, dto.GroupDayReportRow{
			ChildName:        child.Name,
			StatusText:       view.StatusText,
			SleepText:        view.SleepText,
			PlannedSleepText: view.PlannedSleepText,
			DayReminderText:  view.DayReminderText,
		})
	}
	return rows, nil
}

func buildGroupDayDataset(title string, rows []dto.GroupDayReportRow) export.Dataset {
	dataset := export.Dataset{
		Title:   title,
		Headers: []string{reportColumnChild, reportColumnStatus, reportColumnSleep, reportColumnPlanned, reportColumnDayReminder},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		dataset.Append(row.ChildName, row.StatusText, row.SleepText, row.PlannedSleepText, row.DayReminderText)
	}
	return dataset
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
