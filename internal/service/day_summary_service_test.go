package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/daycare-api/internal/dto"
	"github.com/noah-isme/daycare-api/internal/models"
)

type daySummaryWriterStub struct {
	daySummaryStoreStub
}

func (s *daySummaryWriterStub) UpsertNote(ctx context.Context, group, dateID, note string, at time.Time) (*models.DaySummary, error) {
	summary := s.ensure(group, dateID)
	summary.Note = note
	summary.UpdatedAt = &at
	copy := *summary
	return &copy, nil
}

func (s *daySummaryWriterStub) AppendPhoto(ctx context.Context, group, dateID, photo string, at time.Time) (*models.DaySummary, error) {
	summary := s.ensure(group, dateID)
	for _, existing := range summary.Base64Photos {
		if existing == photo {
			copy := *summary
			return &copy, nil
		}
	}
	summary.Base64Photos = append(summary.Base64Photos, photo)
	summary.UpdatedAt = &at
	copy := *summary
	return &copy, nil
}

func (s *daySummaryWriterStub) ensure(group, dateID string) *models.DaySummary {
	if s.summaries == nil {
		s.summaries = map[string]*models.DaySummary{}
	}
	id := models.DaySummaryID(group, dateID)
	if _, ok := s.summaries[id]; !ok {
		s.summaries[id] = &models.DaySummary{ID: id, GroupID: group, Date: dateID}
	}
	return s.summaries[id]
}

func newDaySummaryFixture() (*DaySummaryService, *daySummaryWriterStub, *publisherStub) {
	store := &daySummaryWriterStub{}
	children := newChildRepoStub(models.Child{ID: "c1", Group: "Harehiet", ParentIDs: []string{"p1"}})
	pub := newPublisherStub()
	events := NewEventService(pub, EventServiceConfig{Workers: 1}, nil, zap.NewNop())
	svc := NewDaySummaryService(store, children, events, time.UTC, 32, nil, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC) }
	return svc, store, pub
}

func TestDaySummaryGetMissingReturnsEmpty(t *testing.T) {
	svc, _, _ := newDaySummaryFixture()

	summary, err := svc.Get(context.Background(), "Harehiet", "", parentClaims("p1"))
	require.NoError(t, err)
	assert.Equal(t, "Harehiet_2024-05-14", summary.ID)
	assert.Empty(t, summary.Note)
	assert.Empty(t, summary.Base64Photos)

	_, err = svc.Get(context.Background(), "Revehiet", "2024-05-14", parentClaims("p1"))
	assertStatus(t, err, http.StatusForbidden)
}

func TestDaySummaryNoteAndPhotos(t *testing.T) {
	svc, _, pub := newDaySummaryFixture()
	svc.events.Start(context.Background())
	defer svc.events.Stop()

	_, err := svc.UpsertNote(context.Background(), "Harehiet", dto.DaySummaryNoteRequest{Date: "2024-05-14", Note: "Tur"}, parentClaims("p1"))
	assertStatus(t, err, http.StatusForbidden)

	summary, err := svc.UpsertNote(context.Background(), "Harehiet", dto.DaySummaryNoteRequest{Date: "2024-05-14", Note: " Tur i skogen "}, staffClaims())
	require.NoError(t, err)
	assert.Equal(t, "Tur i skogen", summary.Note)

	select {
	case topic := <-pub.received:
		assert.Equal(t, "daycare/groups/Harehiet/day-summary", topic)
	case <-time.After(2 * time.Second):
		t.Fatal("day summary event was not published")
	}

	_, err = svc.AppendPhoto(context.Background(), "Harehiet", dto.DaySummaryPhotoRequest{Date: "2024-05-14", Photo: "AAAA"}, staffClaims())
	require.NoError(t, err)
	summary, err = svc.AppendPhoto(context.Background(), "Harehiet", dto.DaySummaryPhotoRequest{Date: "2024-05-14", Photo: "AAAA"}, staffClaims())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAAA"}, []string(summary.Base64Photos))
	assert.Equal(t, "Tur i skogen", summary.Note)

	_, err = svc.AppendPhoto(context.Background(), "Harehiet", dto.DaySummaryPhotoRequest{Date: "2024-05-14", Photo: "0123456789012345678901234567890123456789"}, staffClaims())
	assertStatus(t, err, http.StatusRequestEntityTooLarge)
}
