package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/planhub/planhub/internal/model"
	"github.com/planhub/planhub/internal/planner"
	"github.com/planhub/planhub/internal/repository"
)

// ProfileHandler serves the caller's own profile (with pointer
// reconciliation) and other users' public profiles.
type ProfileHandler struct {
	Users   *repository.UserRepo
	Plans   *repository.PlanRepo
	Follows *repository.FollowRepo
	Posts   *repository.PostRepo
}

func NewProfileHandler(users *repository.UserRepo, plans *repository.PlanRepo, follows *repository.FollowRepo, posts *repository.PostRepo) *ProfileHandler {
	if users == nil || plans == nil || follows == nil || posts == nil {
		panic("nil repository passed to NewProfileHandler")
	}
	return &ProfileHandler{Users: users, Plans: plans, Follows: follows, Posts: posts}
}

// planSummary is the projection of a pointer plan embedded in profile
// payloads; clients fetch full plans by id when they need tasks.
type planSummary struct {
	ID       uint64    `json:"id"`
	Title    string    `json:"title"`
	PlanDate time.Time `json:"planDate"`
}

func summarize(p *planner.PlanRef, titles map[uint64]model.Plan) *planSummary {
	if p == nil {
		return nil
	}
	plan, ok := titles[p.ID]
	if !ok {
		return &planSummary{ID: p.ID, PlanDate: p.Date}
	}
	return &planSummary{ID: plan.ID, Title: plan.Title, PlanDate: plan.PlanDate}
}

// Me handles GET /api/profile. Stale pointers are moved forward relative
// to today before the payload is built; every adjustment that fired is
// persisted and reported through the autoFixed flag.
func (h *ProfileHandler) Me(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load profile failed"})
	}

	ptrs, loaded, dangling, err := h.resolvePointers(ctx, u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load profile failed"})
	}
	now := time.Now()
	ptrs, changed := planner.Reconcile(ptrs, now)
	autoFixed := changed || dangling

	// An empty current slot adopts today's plan if one exists unlinked.
	if ptrs.Current == nil {
		if today, err := h.Plans.GetForDay(ctx, userID, now); err == nil {
			ptrs.Current = &planner.PlanRef{ID: today.ID, Date: today.PlanDate.Local()}
			loaded[today.ID] = today
			autoFixed = true
		}
	}

	if autoFixed {
		if err := h.Users.UpdatePointers(ctx, userID, refID(ptrs.Last), refID(ptrs.Current), refID(ptrs.Next)); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "save profile failed"})
		}
	}

	followers, err := h.Follows.FollowerIDs(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load followers failed"})
	}
	following, err := h.Follows.FollowingIDs(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load following failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user": echo.Map{
			"id":          u.ID,
			"name":        u.Name,
			"email":       u.Email,
			"stats":       u.Stats,
			"followers":   followers,
			"following":   following,
			"lastPlan":    summarize(ptrs.Last, loaded),
			"currentPlan": summarize(ptrs.Current, loaded),
			"nextPlan":    summarize(ptrs.Next, loaded),
		},
		"autoFixed": autoFixed,
	})
}

// resolvePointers loads the plans behind the user's pointer ids. Only a
// pointer whose plan is genuinely gone (ErrNotFound) counts as dangling;
// any other error aborts the whole resolution so a transient failure is
// never mistaken for a deleted plan and written back as a cleared pointer.
func (h *ProfileHandler) resolvePointers(ctx context.Context, u model.User) (planner.Pointers, map[uint64]model.Plan, bool, error) {
	loaded := map[uint64]model.Plan{}
	dangling := false

	resolve := func(id *uint64) (*planner.PlanRef, error) {
		if id == nil {
			return nil, nil
		}
		plan, err := h.Plans.GetByID(ctx, *id, u.ID)
		if err == repository.ErrNotFound {
			dangling = true
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		loaded[plan.ID] = plan
		return &planner.PlanRef{ID: plan.ID, Date: plan.PlanDate.Local()}, nil
	}

	var ptrs planner.Pointers
	var err error
	if ptrs.Last, err = resolve(u.LastPlanID); err != nil {
		return planner.Pointers{}, nil, false, err
	}
	if ptrs.Current, err = resolve(u.CurrentPlanID); err != nil {
		return planner.Pointers{}, nil, false, err
	}
	if ptrs.Next, err = resolve(u.NextPlanID); err != nil {
		return planner.Pointers{}, nil, false, err
	}
	return ptrs, loaded, dangling, nil
}

// Public handles GET /api/user/:id, the public view of another user.
func (h *ProfileHandler) Public(c echo.Context) error {
	viewerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || targetID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	target, err := h.Users.GetByID(ctx, targetID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load user failed"})
	}

	followers, err := h.Follows.FollowerIDs(ctx, targetID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load followers failed"})
	}
	following, err := h.Follows.FollowingIDs(ctx, targetID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load following failed"})
	}
	isFollowing, err := h.Follows.IsFollowing(ctx, viewerID, targetID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load follow state failed"})
	}

	recentPlans, err := h.Plans.Recent(ctx, targetID, 3)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load plans failed"})
	}
	if recentPlans == nil {
		recentPlans = []model.Plan{}
	}
	recentPosts, err := h.Posts.ListByUser(ctx, targetID, 3)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load posts failed"})
	}

	ptrs, loaded, _, err := h.resolvePointers(ctx, target)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load user failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user": echo.Map{
			"id":             target.ID,
			"name":           target.Name,
			"email":          target.Email,
			"stats":          target.Stats,
			"followers":      followers,
			"followersCount": len(followers),
			"followingCount": len(following),
			"isFollowing":    isFollowing,
			"lastPlan":       summarize(ptrs.Last, loaded),
			"currentPlan":    summarize(ptrs.Current, loaded),
			"nextPlan":       summarize(ptrs.Next, loaded),
		},
		"recentPlans": recentPlans,
		"recentPosts": recentPosts,
	})
}
