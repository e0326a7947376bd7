package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/planhub/planhub/internal/model"
	"github.com/planhub/planhub/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id,name,email,password_hash,last_plan_id,current_plan_id,next_plan_id,
total_tasks_done,sde_tasks_done,core_tasks_done,non_core_tasks_done,total_rewards,
created_at,updated_at`

// Create inserts a user and returns its ID. Duplicate emails surface as
// ErrEmailExists via the unique key (MySQL error 1062).
func (r *UserRepo) Create(ctx context.Context, name, email, password string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash) VALUES (?,?,?)",
		strings.TrimSpace(name), email, hash)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var (
		u               model.User
		last, cur, next sql.NullInt64
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &last, &cur, &next,
		&u.Stats.TotalTasksDone, &u.Stats.SDETasksDone, &u.Stats.CoreTasksDone,
		&u.Stats.NonCoreTasksDone, &u.Stats.TotalRewards, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.LastPlanID = nullableID(last)
	u.CurrentPlanID = nullableID(cur)
	u.NextPlanID = nullableID(next)
	return u, nil
}

func nullableID(n sql.NullInt64) *uint64 {
	if !n.Valid {
		return nil
	}
	v := uint64(n.Int64)
	return &v
}

// UpdatePointers persists the three plan pointer fields in one statement.
func (r *UserRepo) UpdatePointers(ctx context.Context, userID uint64, last, current, next *uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET last_plan_id=?, current_plan_id=?, next_plan_id=? WHERE id=?",
		idValue(last), idValue(current), idValue(next), userID)
	return err
}

func idValue(p *uint64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

// IncrementStats atomically adds the completion deltas to a user's
// cumulative counters.
func (r *UserRepo) IncrementStats(ctx context.Context, userID uint64, total, sde, core, nonCore, rewards int) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET
			total_tasks_done    = total_tasks_done + ?,
			sde_tasks_done      = sde_tasks_done + ?,
			core_tasks_done     = core_tasks_done + ?,
			non_core_tasks_done = non_core_tasks_done + ?,
			total_rewards       = total_rewards + ?
		WHERE id=?`,
		total, sde, core, nonCore, rewards, userID)
	return err
}

// Search performs a case-insensitive substring match on name or email,
// capped at 10 rows. The query string is embedded via placeholders so LIKE
// wildcards in user input stay literal except for the surrounding %.
func (r *UserRepo) Search(ctx context.Context, q string) ([]model.User, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE LOWER(name) LIKE ? OR LOWER(email) LIKE ? ORDER BY id LIMIT 10",
		pattern, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var (
			u               model.User
			last, cur, next sql.NullInt64
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &last, &cur, &next,
			&u.Stats.TotalTasksDone, &u.Stats.SDETasksDone, &u.Stats.CoreTasksDone,
			&u.Stats.NonCoreTasksDone, &u.Stats.TotalRewards, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		u.LastPlanID = nullableID(last)
		u.CurrentPlanID = nullableID(cur)
		u.NextPlanID = nullableID(next)
		users = append(users, u)
	}
	return users, rows.Err()
}
