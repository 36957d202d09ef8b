package handlers

import (
	"net/http"

	"github.com/campusnet/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// StoryHandler handles story-related HTTP requests
type StoryHandler struct {
	content ContentService
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(content ContentService) *StoryHandler {
	return &StoryHandler{content: content}
}

// RegisterStoryRoutes registers story-related routes
func (h *StoryHandler) RegisterStoryRoutes(g *echo.Group) {
	g.GET("/stories", h.GetStories)
	g.POST("/stories", h.CreateStory)
	g.POST("/stories/:id/seen", h.MarkAsSeen)
	g.DELETE("/stories/:id", h.DeleteStory)
}

// GetStories returns active stories of the caller and everyone they follow,
// grouped by author with the caller's own group split out.
func (h *StoryHandler) GetStories(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	groups, err := h.content.ActiveStories(c.Request().Context(), currentUserID)
	if err != nil {
		return httpError(err)
	}

	var currentUserStory *models.StoryGroup
	otherStories := make([]models.StoryGroup, 0, len(groups))
	for i := range groups {
		if groups[i].Author.ID == currentUserID {
			currentUserStory = &groups[i]
			continue
		}
		otherStories = append(otherStories, groups[i])
	}

	return success(c, http.StatusOK, echo.Map{
		"stories":          otherStories,
		"currentUserStory": currentUserStory,
	})
}

func (h *StoryHandler) CreateStory(c echo.Context) error {
	var req models.CreateStoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	story, err := h.content.CreateStory(c.Request().Context(), getUserIDFromContext(c), req)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusCreated, echo.Map{"story": story})
}

func (h *StoryHandler) MarkAsSeen(c echo.Context) error {
	if err := h.content.MarkStoryViewed(c.Request().Context(), c.Param("id"), getUserIDFromContext(c)); err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"seen": true})
}

func (h *StoryHandler) DeleteStory(c echo.Context) error {
	if err := h.content.DeleteStory(c.Request().Context(), c.Param("id"), getUserIDFromContext(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
