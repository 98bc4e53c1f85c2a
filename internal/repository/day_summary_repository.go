package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/daycare-api/internal/models"
)

// DaySummaryRepository stores the per group, per day note and photo album.
type DaySummaryRepository struct {
	db *sqlx.DB
}

// NewDaySummaryRepository constructs the repository.
func NewDaySummaryRepository(db *sqlx.DB) *DaySummaryRepository {
	return &DaySummaryRepository{db: db}
}

// Get returns the summary for group and dateID.
func (r *DaySummaryRepository) Get(ctx context.Context, group, dateID string) (*models.DaySummary, error) {
	const query = `SELECT id, group_id, date, note, base64_photos, updated_at FROM day_summaries WHERE id = $1`
	var summary models.DaySummary
	if err := r.db.GetContext(ctx, &summary, query, models.DaySummaryID(group, dateID)); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get day summary: %w", err)
	}
	return &summary, nil
}

// UpsertNote merges the note into the summary, creating it when missing.
func (r *DaySummaryRepository) UpsertNote(ctx context.Context, group, dateID, note string, at time.Time) (*models.DaySummary, error) {
	const query = `INSERT INTO day_summaries (id, group_id, date, note, base64_photos, updated_at)
VALUES ($1, $2, $3, $4, '{}', $5)
ON CONFLICT (id) DO UPDATE SET note = EXCLUDED.note, updated_at = EXCLUDED.updated_at
RETURNING id, group_id, date, note, base64_photos, updated_at`
	var summary models.DaySummary
	if err := r.db.GetContext(ctx, &summary, query, models.DaySummaryID(group, dateID), group, dateID, note, at); err != nil {
		return nil, fmt.Errorf("upsert day summary note: %w", err)
	}
	return &summary, nil
}

// AppendPhoto adds a base64 photo unless the exact blob is already present.
// Insertion order is preserved.
func (r *DaySummaryRepository) AppendPhoto(ctx context.Context, group, dateID, photo string, at time.Time) (*models.DaySummary, error) {
	const query = `INSERT INTO day_summaries (id, group_id, date, note, base64_photos, updated_at)
VALUES ($1, $2, $3, '', ARRAY[$4::text], $5)
ON CONFLICT (id) DO UPDATE SET
  base64_photos = CASE WHEN $4::text = ANY(day_summaries.base64_photos) THEN day_summaries.base64_photos
                       ELSE array_append(day_summaries.base64_photos, $4::text) END,
  updated_at = EXCLUDED.updated_at
RETURNING id, group_id, date, note, base64_photos, updated_at`
	var summary models.DaySummary
	if err := r.db.GetContext(ctx, &summary, query, models.DaySummaryID(group, dateID), group, dateID, photo, at); err != nil {
		return nil, fmt.Errorf("append day summary photo: %w", err)
	}
	return &summary, nil
}
