package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// LikeHandler handles like toggling on posts
type LikeHandler struct {
	content ContentService
}

func NewLikeHandler(content ContentService) *LikeHandler {
	return &LikeHandler{content: content}
}

func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.ToggleLike)
}

// ToggleLike likes the post, or removes the caller's like if present
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	liked, err := h.content.ToggleLike(c.Request().Context(), c.Param("id"), getUserIDFromContext(c))
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"liked": liked})
}
