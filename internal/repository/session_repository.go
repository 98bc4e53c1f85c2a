package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/daycare-api/internal/models"
)

const sessionColumns = "id, user_id, token_hash, expires_at, created_at, revoked_at, ip_address, user_agent"

// SessionRepository stores refresh sessions keyed by the hash of their token.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create persists a new session.
func (r *SessionRepository) Create(ctx context.Context, session *models.RefreshSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO refresh_sessions (id, user_id, token_hash, expires_at, created_at, revoked_at, ip_address, user_agent)
VALUES (:id, :user_id, :token_hash, :expires_at, :created_at, :revoked_at, :ip_address, :user_agent)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create refresh session: %w", err)
	}
	return nil
}

// FindByHash returns the session whose token hashes to tokenHash.
func (r *SessionRepository) FindByHash(ctx context.Context, tokenHash string) (*models.RefreshSession, error) {
	query := "SELECT " + sessionColumns + " FROM refresh_sessions WHERE token_hash = $1"
	var session models.RefreshSession
	if err := r.db.GetContext(ctx, &session, query, tokenHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find refresh session: %w", err)
	}
	return &session, nil
}

// Revoke closes one session. Revoking twice keeps the first timestamp.
func (r *SessionRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE refresh_sessions SET revoked_at = COALESCE(revoked_at, $2) WHERE id = $1`, id, at); err != nil {
		return fmt.Errorf("revoke refresh session: %w", err)
	}
	return nil
}

// RevokeAll closes every open session of a user and reports how many were closed.
func (r *SessionRepository) RevokeAll(ctx context.Context, userID string, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE refresh_sessions SET revoked_at = $2 WHERE user_id = $1 AND revoked_at IS NULL`, userID, at)
	if err != nil {
		return 0, fmt.Errorf("revoke user sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
