package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/daycare-api/internal/models"
)

const childColumns = `id, name, group_id, parent_ids, status, last_updated, sick_date, sick_reason, vacation_from, vacation_to,
sleep_planned, sleep_planned_minutes, sleep_date_id, sleep_start, sleep_end, day_reminder, photo_data_url, created_at, updated_at`

// ChildRepository persists child records and their day-to-day state.
type ChildRepository struct {
	db *sqlx.DB
}

// NewChildRepository constructs the repository.
func NewChildRepository(db *sqlx.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

// FindByID returns a child by identifier.
func (r *ChildRepository) FindByID(ctx context.Context, id string) (*models.Child, error) {
	query := "SELECT " + childColumns + " FROM children WHERE id = $1"
	var child models.Child
	if err := r.db.GetContext(ctx, &child, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find child: %w", err)
	}
	return &child, nil
}

// List returns children matching the filter ordered by name.
func (r *ChildRepository) List(ctx context.Context, filter models.ChildFilter) ([]models.Child, error) {
	var conditions []string
	var args []interface{}
	if filter.Group != "" {
		args = append(args, filter.Group)
		conditions = append(conditions, fmt.Sprintf("group_id = $%d", len(args)))
	}
	if filter.ParentID != "" {
		args = append(args, filter.ParentID)
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(parent_ids)", len(args)))
	}

	query := "SELECT " + childColumns + " FROM children"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name ASC"

	var children []models.Child
	if err := r.db.SelectContext(ctx, &children, query, args...); err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	return children, nil
}

// Create inserts a new child.
func (r *ChildRepository) Create(ctx context.Context, child *models.Child) error {
	if child.ID == "" {
		child.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if child.CreatedAt.IsZero() {
		child.CreatedAt = now
	}
	child.UpdatedAt = now

	const query = `INSERT INTO children (id, name, group_id, parent_ids, status, day_reminder, photo_data_url, created_at, updated_at)
VALUES (:id, :name, :group_id, :parent_ids, :status, :day_reminder, :photo_data_url, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, child); err != nil {
		return fmt.Errorf("create child: %w", err)
	}
	return nil
}

// Delete removes a child and its dependent rows.
func (r *ChildRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM children WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete child: %w", err)
	}
	return expectAffected(res)
}

// UpdateStatus records an attendance change and appends it to the checkin log
// in one transaction.
func (r *ChildRepository) UpdateStatus(ctx context.Context, entry *models.Checkin) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update status: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx, `UPDATE children SET status = $2, last_updated = $3, updated_at = $3 WHERE id = $1`,
		entry.ChildID, entry.Status, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("update child status: %w", err)
	}
	if err := expectAffected(res); err != nil {
		return err
	}

	const insert = `INSERT INTO checkins (id, child_id, action, status, performed_by, timestamp)
VALUES (:id, :child_id, :action, :status, :performed_by, :timestamp)`
	if _, err := tx.NamedExecContext(ctx, insert, entry); err != nil {
		return fmt.Errorf("append checkin: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update status: %w", err)
	}
	return nil
}

// SetSick stores the single sick day of the child. Last write wins.
func (r *ChildRepository) SetSick(ctx context.Context, id, dateID, reason string, at time.Time) error {
	return r.exec(ctx, "set sick day",
		`UPDATE children SET sick_date = $2, sick_reason = $3, last_updated = $4, updated_at = $4 WHERE id = $1`,
		id, dateID, reason, at)
}

// ClearSick removes the sick day.
func (r *ChildRepository) ClearSick(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, "clear sick day",
		`UPDATE children SET sick_date = NULL, sick_reason = NULL, last_updated = $2, updated_at = $2 WHERE id = $1`,
		id, at)
}

// SetVacation stores the single vacation range of the child. Last write wins.
func (r *ChildRepository) SetVacation(ctx context.Context, id string, from, to time.Time, at time.Time) error {
	return r.exec(ctx, "set vacation",
		`UPDATE children SET vacation_from = $2, vacation_to = $3, last_updated = $4, updated_at = $4 WHERE id = $1`,
		id, from, to, at)
}

// ClearVacation removes the vacation range.
func (r *ChildRepository) ClearVacation(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, "clear vacation",
		`UPDATE children SET vacation_from = NULL, vacation_to = NULL, last_updated = $2, updated_at = $2 WHERE id = $1`,
		id, at)
}

// StartSleep opens the sleep log for dateID, discarding any previous end.
func (r *ChildRepository) StartSleep(ctx context.Context, id, dateID string, at time.Time) error {
	return r.exec(ctx, "start sleep",
		`UPDATE children SET sleep_date_id = $2, sleep_start = $3, sleep_end = NULL, updated_at = $3 WHERE id = $1`,
		id, dateID, at)
}

// EndSleep closes the open sleep log. The log keeps the day it was started on.
func (r *ChildRepository) EndSleep(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, "end sleep",
		`UPDATE children SET sleep_end = $2, updated_at = $2 WHERE id = $1`,
		id, at)
}

// SetSleepPlan stores the planned sleep preference. minutes is nil unless planned.
func (r *ChildRepository) SetSleepPlan(ctx context.Context, id string, planned bool, minutes *int) error {
	return r.exec(ctx, "set sleep plan",
		`UPDATE children SET sleep_planned = $2, sleep_planned_minutes = $3, updated_at = $4 WHERE id = $1`,
		id, planned, minutes, time.Now().UTC())
}

// SetDayReminder replaces the free text day reminder.
func (r *ChildRepository) SetDayReminder(ctx context.Context, id, reminder string) error {
	return r.exec(ctx, "set day reminder",
		`UPDATE children SET day_reminder = $2, updated_at = $3 WHERE id = $1`,
		id, reminder, time.Now().UTC())
}

// SetPhoto replaces the profile photo data URL.
func (r *ChildRepository) SetPhoto(ctx context.Context, id, dataURL string) error {
	return r.exec(ctx, "set photo",
		`UPDATE children SET photo_data_url = $2, updated_at = $3 WHERE id = $1`,
		id, dataURL, time.Now().UTC())
}

// ListCheckins returns the checkin log of a child, newest first.
func (r *ChildRepository) ListCheckins(ctx context.Context, childID string, limit int) ([]models.Checkin, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := fmt.Sprintf(`SELECT id, child_id, action, status, performed_by, timestamp FROM checkins WHERE child_id = $1 ORDER BY timestamp DESC LIMIT %d`, limit)
	var entries []models.Checkin
	if err := r.db.SelectContext(ctx, &entries, query, childID); err != nil {
		return nil, fmt.Errorf("list checkins: %w", err)
	}
	return entries, nil
}

func (r *ChildRepository) exec(ctx context.Context, op, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectAffected(res)
}

// expectAffected maps an update that touched no rows to sql.ErrNoRows.
func expectAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return nil
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
