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

	"github.com/noah-isme/daycare-api/internal/dto"
	"github.com/noah-isme/daycare-api/internal/models"
)

type announcementRepoStub struct {
	items     map[string]*models.GroupAnnouncement
	listCalls int
}

func (s *announcementRepoStub) ListByGroup(ctx context.Context, groupID string) ([]models.GroupAnnouncement, error) {
	s.listCalls++
	var out []models.GroupAnnouncement
	for _, a := range s.items {
		if a.GroupID == groupID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *announcementRepoStub) GetByID(ctx context.Context, id string) (*models.GroupAnnouncement, error) {
	if a, ok := s.items[id]; ok {
		copy := *a
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *announcementRepoStub) Create(ctx context.Context, a *models.GroupAnnouncement) error {
	a.ID = "a-new"
	copy := *a
	s.items[a.ID] = &copy
	return nil
}

func (s *announcementRepoStub) Update(ctx context.Context, a *models.GroupAnnouncement) error {
	if _, ok := s.items[a.ID]; !ok {
		return sql.ErrNoRows
	}
	copy := *a
	s.items[a.ID] = &copy
	return nil
}

func (s *announcementRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := s.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.items, id)
	return nil
}

type memoryCacheStub struct {
	values  map[string][]models.GroupAnnouncement
	deleted []string
}

func (c *memoryCacheStub) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	v, ok := c.values[key]
	if !ok {
		return false, nil
	}
	*(dest.(*[]models.GroupAnnouncement)) = v
	return true, nil
}

func (c *memoryCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.values[key] = value.([]models.GroupAnnouncement)
	return nil
}

func (c *memoryCacheStub) Delete(ctx context.Context, key string) error {
	delete(c.values, key)
	c.deleted = append(c.deleted, key)
	return nil
}

func strRef(v string) *string { return &v }

func newAnnouncementFixture() (*AnnouncementService, *announcementRepoStub, *memoryCacheStub) {
	repo := &announcementRepoStub{items: map[string]*models.GroupAnnouncement{}}
	cache := &memoryCacheStub{values: map[string][]models.GroupAnnouncement{}}
	children := newChildRepoStub(models.Child{ID: "c1", Group: "Harehiet", ParentIDs: []string{"p1"}})
	svc := NewAnnouncementService(repo, children, cache, time.Minute, nil, zap.NewNop())
	return svc, repo, cache
}

func TestAnnouncementForGroupUsesCache(t *testing.T) {
	svc, repo, _ := newAnnouncementFixture()
	repo.items["a1"] = &models.GroupAnnouncement{ID: "a1", GroupID: "Harehiet", Title: "Foto"}

	first, err := svc.ForGroup(context.Background(), "Harehiet")
	require.NoError(t, err)
	second, err := svc.ForGroup(context.Background(), "Harehiet")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.listCalls)
}

func TestAnnouncementListAccess(t *testing.T) {
	svc, _, _ := newAnnouncementFixture()

	list, err := svc.List(context.Background(), "Harehiet", parentClaims("p1"))
	require.NoError(t, err)
	assert.NotNil(t, list)

	_, err = svc.List(context.Background(), "Revehiet", parentClaims("p1"))
	assertStatus(t, err, http.StatusForbidden)

	_, err = svc.List(context.Background(), "Revehiet", staffClaims())
	require.NoError(t, err)
}

func TestAnnouncementCreateValidation(t *testing.T) {
	svc, _, cache := newAnnouncementFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, "Harehiet", dto.AnnouncementRequest{Title: "Tur", Message: "Ta med matpakke"}, staffClaims())
	assertStatus(t, err, http.StatusBadRequest)

	_, err = svc.Create(ctx, "Harehiet", dto.AnnouncementRequest{Title: "Tur", Message: "m", FromDate: strRef("2024-05-10"), ToDate: strRef("2024-05-01")}, staffClaims())
	assertStatus(t, err, http.StatusBadRequest)

	_, err = svc.Create(ctx, "Harehiet", dto.AnnouncementRequest{Title: "Tur", Message: "m", FromDate: strRef("10.05.2024"), ToDate: strRef("2024-05-11")}, staffClaims())
	assertStatus(t, err, http.StatusBadRequest)

	_, err = svc.Create(ctx, "Harehiet", dto.AnnouncementRequest{Title: "Tur", Message: "m", AlwaysVisible: true}, parentClaims("p1"))
	assertStatus(t, err, http.StatusForbidden)

	created, err := svc.Create(ctx, "Harehiet", dto.AnnouncementRequest{Title: " Tur ", Message: "m", FromDate: strRef("2024-05-01T00:00:00Z"), ToDate: strRef("2024-05-03")}, staffClaims())
	require.NoError(t, err)
	assert.Equal(t, "Tur", created.Title)
	require.NotNil(t, created.FromDate)
	assert.Equal(t, "2024-05-01", *created.FromDate)
	assert.False(t, created.IsAlwaysVisible())
	assert.Contains(t, cache.deleted, "announcements:Harehiet")
}

func TestAnnouncementUpdateAndDelete(t *testing.T) {
	svc, repo, cache := newAnnouncementFixture()
	repo.items["a1"] = &models.GroupAnnouncement{ID: "a1", GroupID: "Harehiet", Title: "Foto"}
	cache.values["announcements:Harehiet"] = []models.GroupAnnouncement{*repo.items["a1"]}

	updated, err := svc.Update(context.Background(), "a1", dto.AnnouncementRequest{Title: "Fotografering", Message: "m", AlwaysVisible: true}, staffClaims())
	require.NoError(t, err)
	assert.True(t, updated.IsAlwaysVisible())
	_, cached := cache.values["announcements:Harehiet"]
	assert.False(t, cached)

	require.NoError(t, svc.Delete(context.Background(), "a1", staffClaims()))
	assertStatus(t, svc.Delete(context.Background(), "a1", staffClaims()), http.StatusNotFound)
	_, err = svc.Update(context.Background(), "missing", dto.AnnouncementRequest{Title: "x", Message: "m", AlwaysVisible: true}, staffClaims())
	assertStatus(t, err, http.StatusNotFound)
}
