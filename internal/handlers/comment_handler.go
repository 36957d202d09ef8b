package handlers

import (
	"net/http"

	"github.com/campusnet/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles comment-related HTTP requests
type CommentHandler struct {
	content ContentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(content ContentService) *CommentHandler {
	return &CommentHandler{content: content}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:id/comments", h.CreateComment)
	g.DELETE("/posts/:id/comments/:comment_id", h.DeleteComment)
}

// CreateComment adds a comment to a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	comment, err := h.content.AddComment(c.Request().Context(), c.Param("id"), getUserIDFromContext(c), req.Text)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusCreated, echo.Map{"comment": comment})
}

// DeleteComment removes a comment. The comment author, the post author and
// admins may delete.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	err := h.content.DeleteComment(c.Request().Context(), actorFromContext(c), c.Param("id"), c.Param("comment_id"))
	if err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
