package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/planhub/planhub/internal/model"
)

type NotificationRepo struct{ DB *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{DB: db} }

// Create stores a notification with a server-assigned creation time.
// When deadline is nil or not after the creation time, it is derived as
// creation time plus the default TTL.
func (r *NotificationRepo) Create(ctx context.Context, message string, applyLink *string, deadline *time.Time) (model.Notification, error) {
	now := time.Now().UTC()
	n := model.Notification{
		Message:   message,
		ApplyLink: applyLink,
		CreatedAt: now,
		Deadline:  model.EffectiveDeadline(now, deadline),
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO notifications (message, apply_link, created_at, deadline) VALUES (?,?,?,?)",
		n.Message, n.ApplyLink, n.CreatedAt, n.Deadline)
	if err != nil {
		return model.Notification{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Notification{}, err
	}
	n.ID = uint64(id)
	return n, nil
}

// ListActive returns notifications whose deadline is at or after now,
// soonest deadline first.
func (r *NotificationRepo) ListActive(ctx context.Context, now time.Time) ([]model.Notification, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,message,apply_link,created_at,deadline FROM notifications WHERE deadline >= ? ORDER BY deadline ASC",
		now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.Notification{}
	for rows.Next() {
		var (
			n    model.Notification
			link sql.NullString
		)
		if err := rows.Scan(&n.ID, &n.Message, &link, &n.CreatedAt, &n.Deadline); err != nil {
			return nil, err
		}
		if link.Valid {
			s := link.String
			n.ApplyLink = &s
		}
		items = append(items, n)
	}
	return items, rows.Err()
}
