package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/campusnet/backend/internal/models"
	"github.com/campusnet/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

const maxSearchResults = 50

type profileRelations interface {
	Counts(ctx context.Context, userID uint) (followers, following int64, err error)
	Status(ctx context.Context, viewerID, otherID uint) (models.RelationshipState, error)
}

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository repositories.UserRepository
	relations      profileRelations
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, relations profileRelations) *UserHandler {
	return &UserHandler{userRepository: userRepo, relations: relations}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)    // Get own profile
	g.PUT("/profile", h.UpdateProfile) // Update own profile
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:id", h.GetUser) // Get other user's profile by ID
}

func (h *UserHandler) profile(ctx context.Context, user *models.User) (*models.Profile, error) {
	followers, following, err := h.relations.Counts(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &models.Profile{
		UserSummary:    user.ToSummary(),
		Role:           user.Role,
		Bio:            user.Bio,
		Location:       user.Location,
		Website:        user.Website,
		FollowersCount: followers,
		FollowingCount: following,
	}, nil
}

func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Unable to load user").SetInternal(err)
	}
	profile, err := h.profile(ctx, user)
	if err != nil {
		return httpError(err)
	}

	resp := echo.Map{"profile": profile}
	if viewer := getUserIDFromContext(c); viewer != 0 && viewer != id {
		state, err := h.relations.Status(ctx, viewer, id)
		if err != nil {
			return httpError(err)
		}
		resp["relationship"] = state
	}
	return success(c, http.StatusOK, resp)
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByID(ctx, getUserIDFromContext(c))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Unable to load user").SetInternal(err)
	}
	profile, err := h.profile(ctx, user)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"user": user, "profile": profile})
}

// UpdateProfile updates the authenticated user's profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByID(ctx, getUserIDFromContext(c))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Unable to load user").SetInternal(err)
	}

	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}
	if req.Location != nil {
		user.Location = *req.Location
	}
	if req.Website != nil {
		user.Website = *req.Website
	}

	if err := h.userRepository.UpdateUser(ctx, user); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Failed to update profile").SetInternal(err)
	}
	return success(c, http.StatusOK, echo.Map{"user": user})
}

// SearchUsers searches for users by username or location
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query 'q' is required")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > maxSearchResults {
		limit = models.DefaultPageLimit
	}

	users, err := h.userRepository.SearchUsers(c.Request().Context(), query, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Search failed").SetInternal(err)
	}
	out := make([]models.UserSummary, len(users))
	for i := range users {
		out[i] = users[i].ToSummary()
	}
	return success(c, http.StatusOK, echo.Map{"users": out})
}
