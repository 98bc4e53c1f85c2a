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
)

func TestChildMetaRepositoryGetMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewChildMetaRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM user_child_meta WHERE user_id = $1 AND child_id = $2")).
		WithArgs("p1", "c1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "p1", "c1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChildMetaRepositoryTouchLastSeen(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewChildMetaRepository(db)

	at := time.Date(2024, 5, 2, 15, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (user_id, child_id) DO UPDATE SET last_seen_at = EXCLUDED.last_seen_at")).
		WithArgs("p1", "c1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.TouchLastSeen(context.Background(), "p1", "c1", at))
	assert.NoError(t, mock.ExpectationsWereMet())
}
