package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/planhub/planhub/internal/queue"
	"github.com/planhub/planhub/internal/repository"
	queue_publisher "github.com/planhub/planhub/internal/service"
)

// SocialHandler covers the follow toggle and user search endpoints.
type SocialHandler struct {
	Users   *repository.UserRepo
	Follows *repository.FollowRepo
}

func NewSocialHandler(users *repository.UserRepo, follows *repository.FollowRepo) *SocialHandler {
	if users == nil || follows == nil {
		panic("nil repository passed to NewSocialHandler")
	}
	return &SocialHandler{Users: users, Follows: follows}
}

// ToggleFollow handles POST /api/follow/:userId. One endpoint flips the
// relationship both ways; the client learns the resulting state from the
// message text.
func (h *SocialHandler) ToggleFollow(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil || targetID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user id"})
	}
	if targetID == userID {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "You cannot follow yourself"})
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

	followed, err := h.Follows.Toggle(ctx, userID, targetID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "toggle follow failed"})
	}

	ev := queue.ActivityEvent{
		Kind:         queue.KindFollowToggled,
		UserID:       userID,
		TargetUserID: targetID,
		Followed:     followed,
		OccurredAt:   time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		pctx, pcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer pcancel()
		_ = queue_publisher.PublishActivity(pctx, ev)
	}()

	if followed {
		return c.JSON(http.StatusOK, echo.Map{"message": "Followed " + target.Name})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Unfollowed " + target.Name})
}

// Search handles GET /api/users/search?q=. Matching is case-insensitive
// over name and email, capped at 10 results, and projects only public
// fields.
func (h *SocialHandler) Search(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusOK, echo.Map{"results": []echo.Map{}})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.Search(ctx, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "search failed"})
	}

	results := make([]echo.Map, 0, len(users))
	for _, u := range users {
		followers, err := h.Follows.FollowerIDs(ctx, u.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load followers failed"})
		}
		following, err := h.Follows.FollowingIDs(ctx, u.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load following failed"})
		}
		results = append(results, echo.Map{
			"id":        u.ID,
			"name":      u.Name,
			"email":     u.Email,
			"stats":     u.Stats,
			"followers": followers,
			"following": following,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"results": results})
}
