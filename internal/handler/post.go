package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/planhub/planhub/internal/repository"
)

// PostHandler covers the post creation and listing endpoints.
type PostHandler struct {
	Posts *repository.PostRepo
}

func NewPostHandler(posts *repository.PostRepo) *PostHandler {
	if posts == nil {
		panic("nil repository passed to NewPostHandler")
	}
	return &PostHandler{Posts: posts}
}

type postReq struct {
	Content string `json:"content"`
}

// Create handles POST /api/post.
func (h *PostHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req postReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "content is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Posts.Create(ctx, userID, req.Content)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create post failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Post created successfully", "postId": id})
}

// Mine handles GET /api/myposts, newest first.
func (h *PostHandler) Mine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	posts, err := h.Posts.ListByUser(ctx, userID, 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load posts failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": posts})
}
