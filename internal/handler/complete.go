package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/planhub/planhub/internal/model"
	"github.com/planhub/planhub/internal/planner"
	"github.com/planhub/planhub/internal/queue"
	"github.com/planhub/planhub/internal/repository"
	"github.com/planhub/planhub/internal/stats"
	queue_publisher "github.com/planhub/planhub/internal/service"
)

type completeReq struct {
	TaskIDs []uint64 `json:"taskIds"`
}

// Complete handles PATCH /api/plan/:id/complete. Tasks named in taskIds
// that are not yet completed are stamped done; already-completed ids are
// skipped silently so re-submission never double-counts. The user's
// cumulative counters are incremented by the deltas actually applied, and
// an activity event is published on a best-effort basis.
func (h *PlanHandler) Complete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	planID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || planID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid plan id"})
	}
	var req completeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if len(req.TaskIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "taskIds is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// The repository computes the delta with the plan row locked, so a
	// concurrent completion of the same tasks yields an empty delta here
	// instead of a second stats increment.
	now := time.Now()
	tasks, delta, err := h.Plans.CompleteTasks(ctx, planID, userID, req.TaskIDs, now)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Plan not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update tasks failed"})
	}

	if delta.Total() > 0 {
		if err := h.Users.IncrementStats(ctx, userID,
			delta.Total(),
			delta.PerField[model.FieldSDE],
			delta.PerField[model.FieldCore],
			delta.PerField[model.FieldNonCore],
			delta.Rewards); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update stats failed"})
		}

		ev := queue.ActivityEvent{
			Kind:           queue.KindTasksCompleted,
			UserID:         userID,
			PlanID:         planID,
			TasksCompleted: delta.Total(),
			RewardsEarned:  delta.Rewards,
			Fields:         fieldCounts(delta),
			OccurredAt:     now.UTC().Format(time.RFC3339),
		}
		go func() {
			pctx, pcancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer pcancel()
			_ = queue_publisher.PublishActivity(pctx, ev)
		}()
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":       "Tasks updated",
		"rewardsEarned": delta.Rewards,
		"updatedFields": fieldCounts(delta),
		"stats":         stats.ForPlan(tasks),
	})
}

// fieldCounts always reports all three categories so clients can index
// without presence checks.
func fieldCounts(d planner.CompletionDelta) map[string]int {
	return map[string]int{
		string(model.FieldSDE):     d.PerField[model.FieldSDE],
		string(model.FieldCore):    d.PerField[model.FieldCore],
		string(model.FieldNonCore): d.PerField[model.FieldNonCore],
	}
}
