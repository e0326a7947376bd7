package repository

import (
	"context"
	"database/sql"
)

// FollowRepo manages the social graph. An edge is a single row in
// `follows`, so "A follows B" and "B is followed by A" can never diverge;
// the symmetry of the original dual-array design is structural here.
type FollowRepo struct{ DB *sql.DB }

func NewFollowRepo(db *sql.DB) *FollowRepo { return &FollowRepo{DB: db} }

// Toggle flips the follow edge from follower to followee and reports the
// resulting state: true when the edge now exists ("followed"), false when
// it was removed. The check-then-write runs inside a transaction with the
// row locked so two concurrent toggles serialize.
func (r *FollowRepo) Toggle(ctx context.Context, followerID, followeeID uint64) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var one int
	err = tx.QueryRowContext(ctx,
		"SELECT 1 FROM follows WHERE follower_id=? AND followee_id=? FOR UPDATE",
		followerID, followeeID).Scan(&one)
	switch {
	case err == sql.ErrNoRows:
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO follows (follower_id, followee_id) VALUES (?,?)",
			followerID, followeeID); err != nil {
			return false, err
		}
		if err := tx.Commit(); err != nil {
			return false, err
		}
		committed = true
		return true, nil
	case err != nil:
		return false, err
	default:
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM follows WHERE follower_id=? AND followee_id=?",
			followerID, followeeID); err != nil {
			return false, err
		}
		if err := tx.Commit(); err != nil {
			return false, err
		}
		committed = true
		return false, nil
	}
}

// IsFollowing reports whether follower currently follows followee.
func (r *FollowRepo) IsFollowing(ctx context.Context, followerID, followeeID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM follows WHERE follower_id=? AND followee_id=? LIMIT 1",
		followerID, followeeID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FollowerIDs returns ids of users following userID.
func (r *FollowRepo) FollowerIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	return r.idList(ctx,
		"SELECT follower_id FROM follows WHERE followee_id=? ORDER BY created_at", userID)
}

// FollowingIDs returns ids of users that userID follows.
func (r *FollowRepo) FollowingIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	return r.idList(ctx,
		"SELECT followee_id FROM follows WHERE follower_id=? ORDER BY created_at", userID)
}

func (r *FollowRepo) idList(ctx context.Context, query string, userID uint64) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []uint64{}
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
