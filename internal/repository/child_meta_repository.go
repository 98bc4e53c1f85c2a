package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/daycare-api/internal/models"
)

// ChildMetaRepository tracks per user, per child read markers.
type ChildMetaRepository struct {
	db *sqlx.DB
}

// NewChildMetaRepository constructs the repository.
func NewChildMetaRepository(db *sqlx.DB) *ChildMetaRepository {
	return &ChildMetaRepository{db: db}
}

// Get returns the marker for the pair, or sql.ErrNoRows when never seen.
func (r *ChildMetaRepository) Get(ctx context.Context, userID, childID string) (*models.ChildMeta, error) {
	const query = `SELECT user_id, child_id, last_seen_at FROM user_child_meta WHERE user_id = $1 AND child_id = $2`
	var meta models.ChildMeta
	if err := r.db.GetContext(ctx, &meta, query, userID, childID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get child meta: %w", err)
	}
	return &meta, nil
}

// TouchLastSeen records that the user has seen the child's updates at ts.
func (r *ChildMetaRepository) TouchLastSeen(ctx context.Context, userID, childID string, ts time.Time) error {
	const query = `INSERT INTO user_child_meta (user_id, child_id, last_seen_at) VALUES ($1, $2, $3)
ON CONFLICT (user_id, child_id) DO UPDATE SET last_seen_at = EXCLUDED.last_seen_at`
	if _, err := r.db.ExecContext(ctx, query, userID, childID, ts); err != nil {
		return fmt.Errorf("touch child meta: %w", err)
	}
	return nil
}
