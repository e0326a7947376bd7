package repository

import (
	"context"
	"database/sql"

	"github.com/planhub/planhub/internal/model"
)

type PostRepo struct{ DB *sql.DB }

func NewPostRepo(db *sql.DB) *PostRepo { return &PostRepo{DB: db} }

// Create inserts a post and returns its id.
func (r *PostRepo) Create(ctx context.Context, userID uint64, content string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO posts (user_id, content) VALUES (?,?)", userID, content)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListByUser returns the user's posts, newest first. A limit of 0 means
// no limit.
func (r *PostRepo) ListByUser(ctx context.Context, userID uint64, limit int) ([]model.Post, error) {
	query := "SELECT id,user_id,content,created_at FROM posts WHERE user_id=? ORDER BY created_at DESC"
	args := []interface{}{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Content, &p.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
