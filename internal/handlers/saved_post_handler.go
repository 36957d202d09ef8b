package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// SavedPostHandler handles bookmarks
type SavedPostHandler struct {
	content ContentService
}

func NewSavedPostHandler(content ContentService) *SavedPostHandler {
	return &SavedPostHandler{content: content}
}

func (h *SavedPostHandler) RegisterSavedPostRoutes(g *echo.Group) {
	g.POST("/posts/:id/save", h.ToggleSave)
	g.GET("/saved-posts", h.GetSavedPosts)
}

func (h *SavedPostHandler) ToggleSave(c echo.Context) error {
	saved, err := h.content.ToggleBookmark(c.Request().Context(), getUserIDFromContext(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"saved": saved})
}

func (h *SavedPostHandler) GetSavedPosts(c echo.Context) error {
	page := pageFromQuery(c)
	posts, total, err := h.content.Bookmarks(c.Request().Context(), getUserIDFromContext(c), page)
	if err != nil {
		return httpError(err)
	}
	return paged(c, "posts", posts, page, total)
}
