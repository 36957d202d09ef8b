package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/campusnet/backend/internal/models"
	"github.com/campusnet/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// RelationshipService is the follow graph as the HTTP layer sees it
type RelationshipService interface {
	Toggle(ctx context.Context, actorID, targetID uint) (services.ToggleStatus, error)
	Respond(ctx context.Context, targetID, requesterID uint, action string) (services.RespondStatus, error)
	CancelRequest(ctx context.Context, requesterID, targetID uint) error
	ListFollowers(ctx context.Context, userID uint, page models.Page) ([]models.UserSummary, int64, error)
	ListFollowing(ctx context.Context, userID uint, page models.Page) ([]models.UserSummary, int64, error)
	PendingRequests(ctx context.Context, targetID uint) ([]models.PendingRequest, error)
	Status(ctx context.Context, viewerID, otherID uint) (models.RelationshipState, error)
	Counts(ctx context.Context, userID uint) (followers, following int64, err error)
	Suggest(ctx context.Context, userID uint, limit int) ([]models.UserSummary, error)
}

// FollowHandler handles follow graph HTTP requests
type FollowHandler struct {
	relationships RelationshipService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(relationships RelationshipService) *FollowHandler {
	return &FollowHandler{relationships: relationships}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.ToggleFollow)
	g.DELETE("/users/:id/follow-request", h.CancelRequest)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
	g.GET("/users/:id/relationship", h.GetRelationship)
	g.GET("/follow-requests", h.GetPendingRequests)
	g.POST("/follow-requests/:id", h.RespondToRequest)
	g.GET("/suggestions", h.GetSuggestions)
}

// ToggleFollow follows (by filing a request) or unfollows the user
func (h *FollowHandler) ToggleFollow(c echo.Context) error {
	targetID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	status, err := h.relationships.Toggle(c.Request().Context(), getUserIDFromContext(c), targetID)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"status": status})
}

// CancelRequest withdraws the caller's pending request to the user
func (h *FollowHandler) CancelRequest(c echo.Context) error {
	targetID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.relationships.CancelRequest(c.Request().Context(), getUserIDFromContext(c), targetID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RespondToRequest accepts or rejects the request filed by :id
func (h *FollowHandler) RespondToRequest(c echo.Context) error {
	requesterID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	var req models.RespondFollowRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	status, err := h.relationships.Respond(c.Request().Context(), getUserIDFromContext(c), requesterID, req.Action)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"status": status})
}

func (h *FollowHandler) GetFollowers(c echo.Context) error {
	userID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	page := pageFromQuery(c)
	users, total, err := h.relationships.ListFollowers(c.Request().Context(), userID, page)
	if err != nil {
		return httpError(err)
	}
	return paged(c, "users", users, page, total)
}

func (h *FollowHandler) GetFollowing(c echo.Context) error {
	userID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	page := pageFromQuery(c)
	users, total, err := h.relationships.ListFollowing(c.Request().Context(), userID, page)
	if err != nil {
		return httpError(err)
	}
	return paged(c, "users", users, page, total)
}

func (h *FollowHandler) GetRelationship(c echo.Context) error {
	otherID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	state, err := h.relationships.Status(c.Request().Context(), getUserIDFromContext(c), otherID)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"status": state})
}

// GetPendingRequests lists requests waiting for the caller's answer
func (h *FollowHandler) GetPendingRequests(c echo.Context) error {
	requests, err := h.relationships.PendingRequests(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"requests": requests})
}

func (h *FollowHandler) GetSuggestions(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	users, err := h.relationships.Suggest(c.Request().Context(), getUserIDFromContext(c), limit)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"users": users})
}
