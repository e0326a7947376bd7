package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/planhub/planhub/internal/model"
	"github.com/planhub/planhub/internal/planner"
	"github.com/planhub/planhub/internal/repository"
	"github.com/planhub/planhub/internal/stats"
)

// PlanHandler groups the repositories behind the plan lifecycle endpoints.
// Methods assume token authentication already ran; they may still return
// 401 when the user id cannot be extracted from the context.
type PlanHandler struct {
	Plans *repository.PlanRepo
	Users *repository.UserRepo
}

func NewPlanHandler(plans *repository.PlanRepo, users *repository.UserRepo) *PlanHandler {
	if plans == nil || users == nil {
		panic("nil repository passed to NewPlanHandler")
	}
	return &PlanHandler{Plans: plans, Users: users}
}

type taskInput struct {
	Description      string     `json:"description"`
	Field            string     `json:"field"`
	IsRewarded       bool       `json:"isRewarded"`
	ExpectedDuration float64    `json:"expectedDuration"`
	Completed        bool       `json:"completed"`   // honored on edit only
	CompletedAt      *time.Time `json:"completedAt"` // honored on edit only
}

type planReq struct {
	Title    string      `json:"title"`
	PlanDate string      `json:"planDate"`
	Tasks    []taskInput `json:"tasks"`
}

// buildTasks validates the incoming task list against the closed category
// set. keepCompleted controls whether client-submitted completion state
// survives; creation always starts tasks as not completed. On edit a
// completed task keeps its submitted completedAt so the original stamp
// survives the round-trip; only a completion with no timestamp at all is
// stamped now.
func buildTasks(in []taskInput, keepCompleted bool, now time.Time) ([]model.Task, string) {
	tasks := make([]model.Task, 0, len(in))
	for _, t := range in {
		field := model.Field(t.Field)
		if !model.ValidField(field) {
			return nil, "task field must be one of SDE, Core, Non-core"
		}
		if t.Description == "" {
			return nil, "task description is required"
		}
		task := model.Task{
			Description:      t.Description,
			Field:            field,
			IsRewarded:       t.IsRewarded,
			ExpectedDuration: t.ExpectedDuration,
		}
		if keepCompleted && t.Completed {
			task.Completed = true
			if t.CompletedAt != nil {
				ts := *t.CompletedAt
				task.CompletedAt = &ts
			} else {
				ts := now
				task.CompletedAt = &ts
			}
		}
		tasks = append(tasks, task)
	}
	return tasks, ""
}

// Create handles POST /api/plan. On success the user's plan pointers are
// re-derived: a plan dated today displaces the current plan (demoting it
// to last), a future plan becomes next, a past plan becomes last.
func (h *PlanHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req planReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "title is required"})
	}
	planDate, err := parsePlanDate(req.PlanDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "planDate must be RFC3339 or YYYY-MM-DD"})
	}
	now := time.Now()
	tasks, msg := buildTasks(req.Tasks, false, now)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	plan, err := h.Plans.Create(ctx, userID, req.Title, planDate, tasks)
	if err != nil {
		if err == repository.ErrPlanExists {
			return c.JSON(http.StatusConflict, echo.Map{"message": "A plan already exists for that day"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create plan failed"})
	}

	// Pointer rotation is best effort: a failure here leaves a valid plan
	// behind and reconcile-on-read repairs the pointers later.
	if u, err := h.Users.GetByID(ctx, userID); err == nil {
		ptrs := planner.RotateOnCreate(pointerRefs(u), planner.PlanRef{ID: plan.ID, Date: plan.PlanDate.Local()}, now)
		_ = h.Users.UpdatePointers(ctx, userID, refID(ptrs.Last), refID(ptrs.Current), refID(ptrs.Next))
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "Plan created successfully", "plan": plan})
}

// Edit handles PUT /api/plan/:id. Fields are overwritten in place; edit
// does not re-run pointer rotation.
func (h *PlanHandler) Edit(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	planID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || planID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid plan id"})
	}
	var req planReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "title is required"})
	}
	planDate, err := parsePlanDate(req.PlanDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "planDate must be RFC3339 or YYYY-MM-DD"})
	}
	tasks, msg := buildTasks(req.Tasks, true, time.Now())
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	plan, err := h.Plans.Update(ctx, planID, userID, req.Title, planDate, tasks)
	if err != nil {
		switch err {
		case repository.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Plan not found"})
		case repository.ErrPlanExists:
			return c.JSON(http.StatusConflict, echo.Map{"message": "A plan already exists for that day"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update plan failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Plan updated successfully", "plan": plan})
}

// GetOne handles GET /api/plan/:id for a plan owned by the caller.
func (h *PlanHandler) GetOne(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	planID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || planID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid plan id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	plan, err := h.Plans.GetByID(ctx, planID, userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Plan not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load plan failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"plan": plan, "stats": stats.ForPlan(plan.Tasks)})
}

// Today handles GET /api/plan/today.
func (h *PlanHandler) Today(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	plan, err := h.Plans.GetForDay(ctx, userID, time.Now())
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "No plan found for today"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load plan failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"plan": plan, "stats": stats.ForPlan(plan.Tasks)})
}

// Mine handles GET /api/myplans, returning the caller's plans ordered by
// ascending plan date.
func (h *PlanHandler) Mine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	plans, err := h.Plans.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load plans failed"})
	}
	if plans == nil {
		plans = []model.Plan{}
	}
	return c.JSON(http.StatusOK, echo.Map{"plans": plans})
}

func pointerRefs(u model.User) planner.Pointers {
	var p planner.Pointers
	if u.LastPlanID != nil {
		p.Last = &planner.PlanRef{ID: *u.LastPlanID}
	}
	if u.CurrentPlanID != nil {
		p.Current = &planner.PlanRef{ID: *u.CurrentPlanID}
	}
	if u.NextPlanID != nil {
		p.Next = &planner.PlanRef{ID: *u.NextPlanID}
	}
	return p
}

func refID(r *planner.PlanRef) *uint64 {
	if r == nil {
		return nil
	}
	return &r.ID
}
