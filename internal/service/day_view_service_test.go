package service

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/daycare-api/internal/dayview"
	"github.com/noah-isme/daycare-api/internal/models"
)

type groupAnnouncementsStub struct {
	list []models.GroupAnnouncement
}

func (s *groupAnnouncementsStub) ForGroup(ctx context.Context, group string) ([]models.GroupAnnouncement, error) {
	return s.list, nil
}

type daySummaryStoreStub struct {
	summaries map[string]*models.DaySummary
}

func (s *daySummaryStoreStub) Get(ctx context.Context, group, dateID string) (*models.DaySummary, error) {
	if summary, ok := s.summaries[models.DaySummaryID(group, dateID)]; ok {
		copy := *summary
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

var dayViewNow = time.Date(2024, 5, 14, 8, 0, 0, 0, time.UTC)

func newDayViewFixture(child models.Child, announcements []models.GroupAnnouncement, summaries map[string]*models.DaySummary) (*DayViewService, *MetricsService) {
	metrics := NewMetricsService()
	childSvc := NewChildService(newChildRepoStub(child), &parentDirectoryStub{}, nil, nil, zap.NewNop())
	svc := NewDayViewService(childSvc, &groupAnnouncementsStub{list: announcements}, &daySummaryStoreStub{summaries: summaries}, metrics, time.UTC, func() time.Time { return dayViewNow }, zap.NewNop())
	return svc, metrics
}

func TestDayViewResolveToday(t *testing.T) {
	delivered := time.Date(2024, 5, 14, 7, 45, 0, 0, time.UTC)
	always := true
	child := models.Child{ID: "c1", Name: "Ada", Group: "Harehiet", ParentIDs: []string{"p1"}, Status: models.ChildStatusDelivered, LastUpdated: &delivered}
	summaries := map[string]*models.DaySummary{
		"Harehiet_2024-05-14": {Note: "Tur i skogen", Base64Photos: []string{"p1"}},
	}
	svc, metrics := newDayViewFixture(child, []models.GroupAnnouncement{{ID: "a1", AlwaysVisible: &always}}, summaries)

	view, err := svc.Resolve(context.Background(), "c1", "", parentClaims("p1"))
	require.NoError(t, err)
	assert.Equal(t, "2024-05-14", view.DateID)
	assert.Equal(t, dayview.LabelDelivered, view.DisplayStatus)
	assert.Equal(t, "Levert • 07:45", view.StatusText)
	assert.Equal(t, "Tur i skogen", view.Note)
	assert.Equal(t, []string{"p1"}, view.Photos)
	require.Len(t, view.Announcements, 1)
	assert.True(t, view.CanGoForward)
	assert.Equal(t, "2024-05-13", view.PreviousDateID)
	require.NotNil(t, view.NextDateID)
	assert.Equal(t, "2024-05-15", *view.NextDateID)
	assert.Equal(t, uint64(1), metrics.Snapshot().DayViewsResolved)
}

func TestDayViewTomorrowStopsNavigation(t *testing.T) {
	child := models.Child{ID: "c1", Group: "Harehiet", ParentIDs: []string{"p1"}, Status: models.ChildStatusDelivered}
	svc, _ := newDayViewFixture(child, nil, nil)

	view, err := svc.Resolve(context.Background(), "c1", "2024-05-15", parentClaims("p1"))
	require.NoError(t, err)
	assert.Empty(t, view.DisplayStatus)
	assert.False(t, view.CanGoForward)
	assert.Nil(t, view.NextDateID)
	assert.Equal(t, dayview.DefaultNote, view.Note)
	assert.NotNil(t, view.Announcements)
	assert.NotNil(t, view.Photos)

	_, err = svc.Resolve(context.Background(), "c1", "2024-05-16", parentClaims("p1"))
	assertStatus(t, err, http.StatusUnprocessableEntity)
}

func TestDayViewRejectsBadDateAndStrangers(t *testing.T) {
	svc, _ := newDayViewFixture(models.Child{ID: "c1", ParentIDs: []string{"p1"}}, nil, nil)

	_, err := svc.Resolve(context.Background(), "c1", "14.05.2024", parentClaims("p1"))
	assertStatus(t, err, http.StatusBadRequest)

	_, err = svc.Resolve(context.Background(), "c1", "", parentClaims("p9"))
	assertStatus(t, err, http.StatusForbidden)
}

func TestDayViewSickPastDay(t *testing.T) {
	sick := "2024-05-10"
	child := models.Child{ID: "c1", ParentIDs: []string{"p1"}, SickDate: &sick}
	svc, _ := newDayViewFixture(child, nil, nil)

	view, err := svc.Resolve(context.Background(), "c1", "2024-05-10", staffClaims())
	require.NoError(t, err)
	assert.Equal(t, dayview.LabelSick, view.DisplayStatus)
	require.NotNil(t, view.NextDateID)
	assert.Equal(t, "2024-05-11", *view.NextDateID)
}
