package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/daycare-api/internal/models"
)

const announcementColumns = "id, group_id, title, message, always_visible, from_date, to_date, created_by, created_at, updated_at"

// AnnouncementRepository provides persistence for group announcements.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository creates the repository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// ListByGroup returns every announcement of a group in creation order.
// Date filtering happens when the day view is resolved.
func (r *AnnouncementRepository) ListByGroup(ctx context.Context, groupID string) ([]models.GroupAnnouncement, error) {
	query := "SELECT " + announcementColumns + " FROM group_announcements WHERE group_id = $1 ORDER BY created_at ASC, id ASC"
	var announcements []models.GroupAnnouncement
	if err := r.db.SelectContext(ctx, &announcements, query, groupID); err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return announcements, nil
}

// GetByID returns an announcement by identifier.
func (r *AnnouncementRepository) GetByID(ctx context.Context, id string) (*models.GroupAnnouncement, error) {
	query := "SELECT " + announcementColumns + " FROM group_announcements WHERE id = $1"
	var announcement models.GroupAnnouncement
	if err := r.db.GetContext(ctx, &announcement, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get announcement: %w", err)
	}
	return &announcement, nil
}

// Create inserts a new announcement.
func (r *AnnouncementRepository) Create(ctx context.Context, announcement *models.GroupAnnouncement) error {
	if announcement.ID == "" {
		announcement.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if announcement.CreatedAt.IsZero() {
		announcement.CreatedAt = now
	}
	announcement.UpdatedAt = now
	const query = `INSERT INTO group_announcements (id, group_id, title, message, always_visible, from_date, to_date, created_by, created_at, updated_at)
VALUES (:id, :group_id, :title, :message, :always_visible, :from_date, :to_date, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, announcement); err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

// Update modifies an existing announcement.
func (r *AnnouncementRepository) Update(ctx context.Context, announcement *models.GroupAnnouncement) error {
	announcement.UpdatedAt = time.Now().UTC()
	const query = `UPDATE group_announcements SET title = :title, message = :message, always_visible = :always_visible,
from_date = :from_date, to_date = :to_date, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, announcement)
	if err != nil {
		return fmt.Errorf("update announcement: %w", err)
	}
	return expectAffected(res)
}

// Delete removes an announcement.
func (r *AnnouncementRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM group_announcements WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	return expectAffected(res)
}
