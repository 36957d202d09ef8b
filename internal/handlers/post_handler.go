package handlers

import (
	"context"
	"net/http"

	"github.com/campusnet/backend/internal/models"
	"github.com/campusnet/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// ContentService covers posts, likes, comments, bookmarks and stories
type ContentService interface {
	CreatePost(ctx context.Context, authorID uint, req models.CreatePostRequest) (*models.Post, error)
	GetPost(ctx context.Context, viewerID uint, postID string) (*models.EnrichedPost, error)
	ListByAuthor(ctx context.Context, viewerID, authorID uint, page models.Page) ([]models.EnrichedPost, int64, error)
	Feed(ctx context.Context, userID uint, page models.Page) ([]models.EnrichedPost, int64, error)
	DeletePost(ctx context.Context, actor services.Actor, postID string) error
	ToggleLike(ctx context.Context, postID string, userID uint) (bool, error)
	AddComment(ctx context.Context, postID string, userID uint, text string) (*models.Comment, error)
	DeleteComment(ctx context.Context, actor services.Actor, postID, commentID string) error
	ToggleBookmark(ctx context.Context, userID uint, postID string) (bool, error)
	Bookmarks(ctx context.Context, userID uint, page models.Page) ([]models.EnrichedPost, int64, error)
	CreateStory(ctx context.Context, authorID uint, req models.CreateStoryRequest) (*models.Story, error)
	ActiveStories(ctx context.Context, viewerID uint) ([]models.StoryGroup, error)
	MarkStoryViewed(ctx context.Context, storyID string, viewerID uint) error
	DeleteStory(ctx context.Context, storyID string, authorID uint) error
}

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	content ContentService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(content ContentService) *PostHandler {
	return &PostHandler{content: content}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.GET("/users/:id/posts", h.GetUserPosts)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	post, err := h.content.CreatePost(c.Request().Context(), getUserIDFromContext(c), req)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusCreated, echo.Map{"post": post})
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.content.GetPost(c.Request().Context(), getUserIDFromContext(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"post": post})
}

// GetUserPosts lists one author's posts, newest first
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	authorID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	page := pageFromQuery(c)
	posts, total, err := h.content.ListByAuthor(c.Request().Context(), getUserIDFromContext(c), authorID, page)
	if err != nil {
		return httpError(err)
	}
	return paged(c, "posts", posts, page, total)
}

// DeletePost deletes a post; only its author or an admin may
func (h *PostHandler) DeletePost(c echo.Context) error {
	if err := h.content.DeletePost(c.Request().Context(), actorFromContext(c), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
