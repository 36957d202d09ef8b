package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/campusnet/backend/internal/middleware"
	"github.com/campusnet/backend/internal/models"
	"github.com/campusnet/backend/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// getUserIDFromContext returns the authenticated user id, or 0 outside the
// protected group.
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get(middleware.ClaimsKey).(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return 0
	}
	return claims.UserID
}

func actorFromContext(c echo.Context) services.Actor {
	claims, ok := c.Get(middleware.ClaimsKey).(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return services.Actor{}
	}
	return services.Actor{ID: claims.UserID, Role: claims.Role}
}

func parseUintParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

func pageFromQuery(c echo.Context) models.Page {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return models.NewPage(page, limit)
}

func pageMeta(page models.Page, total int64) echo.Map {
	totalPages := int(math.Ceil(float64(total) / float64(page.Limit)))
	return echo.Map{
		"currentPage":     page.Number,
		"totalPages":      totalPages,
		"totalItems":      total,
		"itemsPerPage":    page.Limit,
		"hasNextPage":     page.Number < totalPages,
		"hasPreviousPage": page.Number > 1,
	}
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return httpError(err)
	}
	return nil
}

func success(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func paged(c echo.Context, key string, items interface{}, page models.Page, total int64) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{key: items},
		"meta":    pageMeta(page, total),
	})
}

// httpError maps service error kinds onto HTTP statuses
func httpError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return echo.NewHTTPError(http.StatusBadRequest, validationMessage(verrs))
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidState):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrUpstream):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Service temporarily unavailable").SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
	}
}

func validationMessage(verrs validator.ValidationErrors) string {
	if len(verrs) == 0 {
		return "Validation failed"
	}
	fe := verrs[0]
	if fe.Param() != "" {
		return "Field '" + fe.Field() + "' failed on '" + fe.Tag() + "=" + fe.Param() + "'"
	}
	return "Field '" + fe.Field() + "' failed on '" + fe.Tag() + "'"
}
