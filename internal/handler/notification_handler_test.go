package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/daycare-api/internal/dto"
	"github.com/noah-isme/daycare-api/internal/models"
)

type notificationServiceMock struct {
	date   string
	seenID string
	seenAt time.Time
}

func (m *notificationServiceMock) Summary(ctx context.Context, childID, date string, claims *models.JWTClaims) (*dto.NotificationSummary, error) {
	m.date = date
	return &dto.NotificationSummary{ChildID: childID, Count: 1, Messages: []string{"Status (levert/hentet/syk/ferie) er oppdatert."}}, nil
}

func (m *notificationServiceMock) MarkSeen(ctx context.Context, childID string, claims *models.JWTClaims) (time.Time, error) {
	m.seenID = childID
	return m.seenAt, nil
}

func TestNotificationHandlerSummary(t *testing.T) {
	mock := &notificationServiceMock{}
	c, w := newTestContext(http.MethodGet, "/children/c1/notifications?date=2024-05-14", "", parent)
	c.Params = gin.Params{{Key: "id", Value: "c1"}}

	NewNotificationHandler(mock).Summary(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-05-14", mock.date)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, 1, data["count"])
}

func TestNotificationHandlerMarkSeen(t *testing.T) {
	mock := &notificationServiceMock{seenAt: time.Date(2024, 5, 14, 9, 0, 0, 0, time.UTC)}
	c, w := newTestContext(http.MethodPost, "/children/c1/notifications/seen", "", parent)
	c.Params = gin.Params{{Key: "id", Value: "c1"}}

	NewNotificationHandler(mock).MarkSeen(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c1", mock.seenID)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "2024-05-14T09:00:00Z", data["lastSeenAt"])
}
