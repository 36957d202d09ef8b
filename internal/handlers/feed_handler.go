package handlers

import (
	"github.com/labstack/echo/v4"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	content ContentService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(content ContentService) *FeedHandler {
	return &FeedHandler{content: content}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed returns posts by the user and everyone they follow, newest first
func (h *FeedHandler) GetFeed(c echo.Context) error {
	page := pageFromQuery(c)
	posts, total, err := h.content.Feed(c.Request().Context(), getUserIDFromContext(c), page)
	if err != nil {
		return httpError(err)
	}
	return paged(c, "posts", posts, page, total)
}
