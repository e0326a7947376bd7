package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/planhub/planhub/internal/repository"
)

// NotificationHandler serves the broadcast feed. Publishing is gated by
// the admin-key middleware at the router; listing is public.
type NotificationHandler struct {
	Notifications *repository.NotificationRepo
}

func NewNotificationHandler(n *repository.NotificationRepo) *NotificationHandler {
	if n == nil {
		panic("nil repository passed to NewNotificationHandler")
	}
	return &NotificationHandler{Notifications: n}
}

type notificationReq struct {
	Message   string `json:"message"`
	Deadline  string `json:"deadLine"`
	ApplyLink string `json:"applyLink"`
}

// Publish handles POST /api/notification. An omitted or unparseable
// deadline is derived as creation time plus ten days.
func (h *NotificationHandler) Publish(c echo.Context) error {
	var req notificationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "message is required"})
	}

	var deadline *time.Time
	if req.Deadline != "" {
		if t, err := time.Parse(time.RFC3339, req.Deadline); err == nil {
			deadline = &t
		}
	}
	var applyLink *string
	if link := strings.TrimSpace(req.ApplyLink); link != "" {
		applyLink = &link
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	n, err := h.Notifications.Create(ctx, req.Message, applyLink, deadline)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create notification failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Notification published", "notification": n})
}

// List handles GET /api/notifications: active entries only, soonest
// deadline first.
func (h *NotificationHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Notifications.ListActive(ctx, time.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load notifications failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": items})
}
