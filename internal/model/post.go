package model

import "time"

// Post mirrors the `posts` table. Posts are plain text notes shown on a
// user's public profile (three most recent) and on their own posts page.
type Post struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
