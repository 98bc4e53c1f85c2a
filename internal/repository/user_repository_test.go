package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/daycare-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

var userRowColumns = []string{"id", "email", "password_hash", "full_name", "phone", "role", "active", "last_login", "created_at", "updated_at"}

func TestUserRepositoryFindByEmailNormalizes(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(userRowColumns).
		AddRow("1", "kari@example.com", "hash", "Kari Nordmann", "+4799999999", string(models.RoleParent), true, now, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1 LIMIT 1")).
		WithArgs("kari@example.com").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), " Kari@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "kari@example.com", user.Email)
	require.NotNil(t, user.Phone)
	assert.Equal(t, "+4799999999", *user.Phone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).WithArgs("nobody").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "nobody")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserRepositoryFindByIDs(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	users, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, users)

	now := time.Now()
	rows := sqlmock.NewRows(userRowColumns).
		AddRow("p1", "a@example.com", "hash", "Anne", nil, string(models.RoleParent), true, nil, now, now).
		AddRow("p2", "b@example.com", "hash", "Bjørn", nil, string(models.RoleParent), true, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ANY($1) AND active = TRUE ORDER BY full_name ASC")).
		WillReturnRows(rows)

	users, err = repo.FindByIDs(context.Background(), []string{"p1", "p2"})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryUpdateRoleMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET role = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("missing", models.RoleStaff, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateRole(context.Background(), "missing", models.RoleStaff)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryDeactivate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET active = FALSE")).WithArgs("p1", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_sessions SET revoked_at = $2")).WithArgs("p1", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE children SET parent_ids = array_remove(parent_ids, $1)")).WithArgs("p1", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Deactivate(context.Background(), "p1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryDeactivateMissingRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET active = FALSE")).WithArgs("ghost", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.Deactivate(context.Background(), "ghost"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE active = TRUE AND role = $1 AND (LOWER(email) LIKE $2 OR LOWER(full_name) LIKE $2)")).
		WithArgs(models.RoleStaff, "%kari%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY full_name ASC, id ASC LIMIT 10 OFFSET 10")).
		WithArgs(models.RoleStaff, "%kari%").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("1", "kari@example.com", "hash", "Kari", nil, string(models.RoleStaff), true, now, now, now))

	role := models.RoleStaff
	users, total, err := repo.List(context.Background(), models.UserFilter{Role: &role, Search: " Kari ", Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryListIncludeInactive(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users ORDER BY full_name ASC, id ASC LIMIT 50 OFFSET 0")).
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	users, total, err := repo.List(context.Background(), models.UserFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
