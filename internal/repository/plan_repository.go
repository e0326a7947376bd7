package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/planhub/planhub/internal/model"
	"github.com/planhub/planhub/internal/planner"
)

// PlanRepo persists plans and their embedded tasks. Writes that touch both
// tables run inside a transaction so a plan is never visible without its
// tasks.
type PlanRepo struct{ DB *sql.DB }

func NewPlanRepo(db *sql.DB) *PlanRepo { return &PlanRepo{DB: db} }

// dayOf reduces a timestamp to its calendar day in server local time; the
// value backs the UNIQUE(user_id, plan_day) key.
func dayOf(t time.Time) string { return t.Local().Format("2006-01-02") }

// Create inserts a plan with its tasks and returns the stored plan. A
// same-day collision for the user surfaces as ErrPlanExists through the
// unique key (MySQL 1062); there is no separate existence check, the index
// is the only arbiter so concurrent creates cannot both win.
func (r *PlanRepo) Create(ctx context.Context, userID uint64, title string, planDate time.Time, tasks []model.Task) (model.Plan, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Plan{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO plans (user_id, title, plan_date, plan_day) VALUES (?,?,?,?)",
		userID, title, planDate.UTC(), dayOf(planDate))
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.Plan{}, ErrPlanExists
		}
		return model.Plan{}, err
	}
	planID64, err := res.LastInsertId()
	if err != nil {
		return model.Plan{}, err
	}
	planID := uint64(planID64)

	if err := insertTasksTx(ctx, tx, planID, tasks); err != nil {
		return model.Plan{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Plan{}, err
	}
	committed = true
	return r.GetByID(ctx, planID, userID)
}

func insertTasksTx(ctx context.Context, tx *sql.Tx, planID uint64, tasks []model.Task) error {
	for i, t := range tasks {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tasks (plan_id, description, field, completed, is_rewarded, completed_at, expected_duration_hours, position)
			 VALUES (?,?,?,?,?,?,?,?)`,
			planID, t.Description, string(t.Field), t.Completed, t.IsRewarded, t.CompletedAt, t.ExpectedDuration, i)
		if err != nil {
			return err
		}
	}
	return nil
}

const planColumns = "id,user_id,title,plan_date,created_at,updated_at"

// GetByID fetches a plan owned by userID. A plan that exists but belongs
// to someone else is reported as ErrNotFound, indistinguishable from an
// absent one.
func (r *PlanRepo) GetByID(ctx context.Context, planID, userID uint64) (model.Plan, error) {
	var p model.Plan
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+planColumns+" FROM plans WHERE id=? AND user_id=? LIMIT 1",
		planID, userID).Scan(&p.ID, &p.UserID, &p.Title, &p.PlanDate, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Plan{}, ErrNotFound
	}
	if err != nil {
		return model.Plan{}, err
	}
	if err := r.attachTasks(ctx, []*model.Plan{&p}); err != nil {
		return model.Plan{}, err
	}
	return p, nil
}

// GetForDay fetches the user's plan for the calendar day containing day.
func (r *PlanRepo) GetForDay(ctx context.Context, userID uint64, day time.Time) (model.Plan, error) {
	var p model.Plan
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+planColumns+" FROM plans WHERE user_id=? AND plan_day=? LIMIT 1",
		userID, dayOf(day)).Scan(&p.ID, &p.UserID, &p.Title, &p.PlanDate, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Plan{}, ErrNotFound
	}
	if err != nil {
		return model.Plan{}, err
	}
	if err := r.attachTasks(ctx, []*model.Plan{&p}); err != nil {
		return model.Plan{}, err
	}
	return p, nil
}

// ListByUser returns all plans for the user ordered by ascending plan date.
func (r *PlanRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Plan, error) {
	return r.listPlans(ctx,
		"SELECT "+planColumns+" FROM plans WHERE user_id=? ORDER BY plan_date ASC", userID)
}

// Recent returns the user's most recent plans by plan date, newest first.
func (r *PlanRepo) Recent(ctx context.Context, userID uint64, limit int) ([]model.Plan, error) {
	return r.listPlans(ctx,
		"SELECT "+planColumns+" FROM plans WHERE user_id=? ORDER BY plan_date DESC LIMIT ?", userID, limit)
}

func (r *PlanRepo) listPlans(ctx context.Context, query string, args ...interface{}) ([]model.Plan, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []model.Plan
	for rows.Next() {
		var p model.Plan
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.PlanDate, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*model.Plan, len(plans))
	for i := range plans {
		refs[i] = &plans[i]
	}
	if err := r.attachTasks(ctx, refs); err != nil {
		return nil, err
	}
	return plans, nil
}

// attachTasks loads tasks for the given plans with a single IN query and
// distributes them in position order.
func (r *PlanRepo) attachTasks(ctx context.Context, plans []*model.Plan) error {
	if len(plans) == 0 {
		return nil
	}
	byID := make(map[uint64]*model.Plan, len(plans))
	placeholders := make([]string, 0, len(plans))
	args := make([]interface{}, 0, len(plans))
	for _, p := range plans {
		p.Tasks = []model.Task{}
		byID[p.ID] = p
		placeholders = append(placeholders, "?")
		args = append(args, p.ID)
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT id,plan_id,description,field,completed,is_rewarded,completed_at,expected_duration_hours,position
		 FROM tasks WHERE plan_id IN (`+strings.Join(placeholders, ",")+`) ORDER BY plan_id, position`,
		args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t     model.Task
			field string
			done  sql.NullTime
		)
		if err := rows.Scan(&t.ID, &t.PlanID, &t.Description, &field, &t.Completed,
			&t.IsRewarded, &done, &t.ExpectedDuration, &t.Position); err != nil {
			return err
		}
		t.Field = model.Field(field)
		if done.Valid {
			ts := done.Time
			t.CompletedAt = &ts
		}
		if p, ok := byID[t.PlanID]; ok {
			p.Tasks = append(p.Tasks, t)
		}
	}
	return rows.Err()
}

// Update overwrites a plan's title, date and task list in place. The task
// rows are replaced wholesale, so completion state submitted by the client
// is preserved as-is. Moving the plan onto a day that already has one
// surfaces as ErrPlanExists.
func (r *PlanRepo) Update(ctx context.Context, planID, userID uint64, title string, planDate time.Time, tasks []model.Task) (model.Plan, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Plan{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var owner uint64
	err = tx.QueryRowContext(ctx,
		"SELECT user_id FROM plans WHERE id=? AND user_id=? FOR UPDATE",
		planID, userID).Scan(&owner)
	if err == sql.ErrNoRows {
		return model.Plan{}, ErrNotFound
	}
	if err != nil {
		return model.Plan{}, err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE plans SET title=?, plan_date=?, plan_day=? WHERE id=?",
		title, planDate.UTC(), dayOf(planDate), planID); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.Plan{}, ErrPlanExists
		}
		return model.Plan{}, err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE plan_id=?", planID); err != nil {
		return model.Plan{}, err
	}
	if err := insertTasksTx(ctx, tx, planID, tasks); err != nil {
		return model.Plan{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Plan{}, err
	}
	committed = true
	return r.GetByID(ctx, planID, userID)
}

// CompleteTasks stamps the given task ids completed at now and returns
// the plan's tasks after the update plus the delta of what actually
// flipped. The whole operation runs with the plan row locked FOR UPDATE,
// so two concurrent completions of the same plan serialize: the second
// computes its delta from the committed state of the first and reports
// zero, which keeps the user's cumulative counters from double-counting.
// The completed=0 guard additionally keeps original completion
// timestamps immutable.
func (r *PlanRepo) CompleteTasks(ctx context.Context, planID, userID uint64, taskIDs []uint64, now time.Time) ([]model.Task, planner.CompletionDelta, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, planner.CompletionDelta{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var owner uint64
	err = tx.QueryRowContext(ctx,
		"SELECT user_id FROM plans WHERE id=? AND user_id=? FOR UPDATE",
		planID, userID).Scan(&owner)
	if err == sql.ErrNoRows {
		return nil, planner.CompletionDelta{}, ErrNotFound
	}
	if err != nil {
		return nil, planner.CompletionDelta{}, err
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id,plan_id,description,field,completed,is_rewarded,completed_at,expected_duration_hours,position
		 FROM tasks WHERE plan_id=? ORDER BY position`, planID)
	if err != nil {
		return nil, planner.CompletionDelta{}, err
	}
	tasks := []model.Task{}
	for rows.Next() {
		var (
			t     model.Task
			field string
			done  sql.NullTime
		)
		if err := rows.Scan(&t.ID, &t.PlanID, &t.Description, &field, &t.Completed,
			&t.IsRewarded, &done, &t.ExpectedDuration, &t.Position); err != nil {
			rows.Close()
			return nil, planner.CompletionDelta{}, err
		}
		t.Field = model.Field(field)
		if done.Valid {
			ts := done.Time
			t.CompletedAt = &ts
		}
		tasks = append(tasks, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, planner.CompletionDelta{}, err
	}

	updated, delta := planner.ApplyCompletions(tasks, taskIDs, now)
	if len(delta.CompletedIDs) > 0 {
		placeholders := make([]string, 0, len(delta.CompletedIDs))
		args := []interface{}{now.UTC(), planID}
		for _, id := range delta.CompletedIDs {
			placeholders = append(placeholders, "?")
			args = append(args, id)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE tasks SET completed=1, completed_at=? WHERE plan_id=? AND id IN (`+
				strings.Join(placeholders, ",")+`) AND completed=0`,
			args...); err != nil {
			return nil, planner.CompletionDelta{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, planner.CompletionDelta{}, err
	}
	committed = true
	return updated, delta, nil
}
