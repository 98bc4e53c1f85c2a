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

var childRowColumns = []string{"id", "name", "group_id", "parent_ids", "status", "last_updated", "sick_date", "sick_reason", "vacation_from", "vacation_to",
	"sleep_planned", "sleep_planned_minutes", "sleep_date_id", "sleep_start", "sleep_end", "day_reminder", "photo_data_url", "created_at", "updated_at"}

func TestChildRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewChildRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(childRowColumns).
		AddRow("c1", "Ola", "Harehiet", "{p1,p2}", "DELIVERED", now, "2024-05-02", "Feber", nil, nil,
			true, 60, "2024-05-02", now, nil, "Husk regntøy", "", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM children WHERE id = $1")).WithArgs("c1").WillReturnRows(rows)

	child, err := repo.FindByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Harehiet", child.Group)
	assert.Equal(t, []string{"p1", "p2"}, []string(child.ParentIDs))
	assert.Equal(t, models.ChildStatusDelivered, child.Status)
	require.NotNil(t, child.SleepPlannedMinutes)
	assert.Equal(t, 60, *child.SleepPlannedMinutes)
	assert.Nil(t, child.SleepEnd)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChildRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewChildRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM children WHERE id = $1")).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestChildRepositoryListByParent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewChildRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(childRowColumns).
		AddRow("c1", "Ola", "Harehiet", "{p1}", "", nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, "", "", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM children WHERE group_id = $1 AND $2 = ANY(parent_ids) ORDER BY name ASC")).
		WithArgs("Harehiet", "p1").
		WillReturnRows(rows)

	children, err := repo.List(context.Background(), models.ChildFilter{Group: "Harehiet", ParentID: "p1"})
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, models.ChildStatusNone, children[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChildRepositoryUpdateStatusAppendsCheckin(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewChildRepository(db)

	at := time.Date(2024, 5, 2, 8, 15, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE children SET status = $2, last_updated = $3, updated_at = $3 WHERE id = $1")).
		WithArgs("c1", models.ChildStatusDelivered, at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO checkins")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	staff := "s1"
	entry := &models.Checkin{ChildID: "c1", Action: models.CheckinActionCheckin, Status: models.ChildStatusDelivered, PerformedBy: &staff, Timestamp: at}
	require.NoError(t, repo.UpdateStatus(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChildRepositoryUpdateStatusUnknownChild(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewChildRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE children SET status")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.UpdateStatus(context.Background(), &models.Checkin{ChildID: "missing", Action: models.CheckinActionCheckout, Status: models.ChildStatusPickedUp})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChildRepositoryStartSleepClearsEnd(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewChildRepository(db)

	at := time.Date(2024, 5, 2, 11, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE children SET sleep_date_id = $2, sleep_start = $3, sleep_end = NULL")).
		WithArgs("c1", "2024-05-02", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.StartSleep(context.Background(), "c1", "2024-05-02", at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChildRepositorySetSleepPlanNullsMinutes(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewChildRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE children SET sleep_planned = $2, sleep_planned_minutes = $3")).
		WithArgs("c1", false, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetSleepPlan(context.Background(), "c1", false, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChildRepositoryListCheckins(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewChildRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "child_id", "action", "status", "performed_by", "timestamp"}).
		AddRow("k2", "c1", "checkout", "PICKED_UP", "s1", now).
		AddRow("k1", "c1", "checkin", "DELIVERED", nil, now.Add(-8*time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("FROM checkins WHERE child_id = $1 ORDER BY timestamp DESC LIMIT 100")).
		WithArgs("c1").
		WillReturnRows(rows)

	entries, err := repo.ListCheckins(context.Background(), "c1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.CheckinActionCheckout, entries[0].Action)
	assert.Nil(t, entries[1].PerformedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}
