package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/daycare-api/internal/models"
)

var announcementRowColumns = []string{"id", "group_id", "title", "message", "always_visible", "from_date", "to_date", "created_by", "created_at", "updated_at"}

func TestAnnouncementRepositoryListByGroup(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(announcementRowColumns).
		AddRow("a1", "Harehiet", "Tur", "Vi går i skogen", nil, "2024-05-01", "2024-05-03", "s1", now, now).
		AddRow("a2", "Harehiet", "Regler", "Husk matpakke", true, nil, nil, "s1", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM group_announcements WHERE group_id = $1 ORDER BY created_at ASC, id ASC")).
		WithArgs("Harehiet").
		WillReturnRows(rows)

	list, err := repo.ListByGroup(context.Background(), "Harehiet")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.False(t, list[0].IsAlwaysVisible())
	require.NotNil(t, list[0].FromDate)
	assert.Equal(t, "2024-05-01", *list[0].FromDate)
	assert.True(t, list[1].IsAlwaysVisible())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db)

	mock.ExpectExec("INSERT INTO group_announcements").WillReturnResult(sqlmock.NewResult(1, 1))

	always := true
	a := &models.GroupAnnouncement{GroupID: "Harehiet", Title: "Regler", Message: "Husk matpakke", AlwaysVisible: &always, CreatedBy: "s1"}
	require.NoError(t, repo.Create(context.Background(), a))
	assert.NotEmpty(t, a.ID)
	assert.False(t, a.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM group_announcements WHERE id = $1")).WithArgs("gone").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "gone"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
