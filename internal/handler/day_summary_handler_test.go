package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/daycare-api/internal/dto"
	"github.com/noah-isme/daycare-api/internal/models"
	appErrors "github.com/noah-isme/daycare-api/pkg/errors"
)

type daySummaryServiceMock struct {
	group string
	date  string
	note  *dto.DaySummaryNoteRequest
	photo *dto.DaySummaryPhotoRequest
	err   error
}

func (m *daySummaryServiceMock) Get(ctx context.Context, group, date string, claims *models.JWTClaims) (*models.DaySummary, error) {
	m.group, m.date = group, date
	if m.err != nil {
		return nil, m.err
	}
	return &models.DaySummary{ID: models.DaySummaryID(group, date), GroupID: group, Date: date}, nil
}

func (m *daySummaryServiceMock) UpsertNote(ctx context.Context, group string, req dto.DaySummaryNoteRequest, actor *models.JWTClaims) (*models.DaySummary, error) {
	m.group, m.note = group, &req
	if m.err != nil {
		return nil, m.err
	}
	return &models.DaySummary{GroupID: group, Date: req.Date, Note: req.Note}, nil
}

func (m *daySummaryServiceMock) AppendPhoto(ctx context.Context, group string, req dto.DaySummaryPhotoRequest, actor *models.JWTClaims) (*models.DaySummary, error) {
	m.group, m.photo = group, &req
	if m.err != nil {
		return nil, m.err
	}
	return &models.DaySummary{GroupID: group, Date: req.Date}, nil
}

func groupParam(c *gin.Context) *gin.Context {
	c.Params = gin.Params{{Key: "group", Value: "Harehiet"}}
	return c
}

func TestDaySummaryHandlerGet(t *testing.T) {
	mock := &daySummaryServiceMock{}
	c, w := newTestContext(http.MethodGet, "/groups/Harehiet/day-summary?date=2024-05-14", "", parent)

	NewDaySummaryHandler(mock).Get(groupParam(c))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Harehiet", mock.group)
	assert.Equal(t, "2024-05-14", mock.date)
}

func TestDaySummaryHandlerUpsertNote(t *testing.T) {
	mock := &daySummaryServiceMock{}
	c, w := newTestContext(http.MethodPut, "/groups/Harehiet/day-summary", `{"date":"2024-05-14","note":"Tur i skogen"}`, staff)

	NewDaySummaryHandler(mock).UpsertNote(groupParam(c))
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mock.note)
	assert.Equal(t, "Tur i skogen", mock.note.Note)
}

func TestDaySummaryHandlerAppendPhotoTooLarge(t *testing.T) {
	mock := &daySummaryServiceMock{err: appErrors.ErrPayloadTooLarge}
	c, w := newTestContext(http.MethodPost, "/groups/Harehiet/day-summary/photos", `{"date":"2024-05-14","photo":"data:image/png;base64,AAAA"}`, staff)

	NewDaySummaryHandler(mock).AppendPhoto(groupParam(c))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	require.NotNil(t, mock.photo)
}

func TestDaySummaryHandlerAppendPhotoCreated(t *testing.T) {
	mock := &daySummaryServiceMock{}
	c, w := newTestContext(http.MethodPost, "/groups/Harehiet/day-summary/photos", `{"date":"2024-05-14","photo":"data:image/png;base64,AAAA"}`, staff)

	NewDaySummaryHandler(mock).AppendPhoto(groupParam(c))
	assert.Equal(t, http.StatusCreated, w.Code)
}
