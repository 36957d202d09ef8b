package handlers

import (
	"context"
	"net/http"

	"github.com/campusnet/backend/internal/models"
	"github.com/campusnet/backend/internal/services"
	"github.com/labstack/echo/v4"
)

type ModerationService interface {
	Report(ctx context.Context, reporterID uint, req models.CreateReportRequest) (*models.Report, error)
	ListReports(ctx context.Context, status models.ReportStatus, page models.Page) ([]models.Report, int64, error)
	UpdateReportStatus(ctx context.Context, reportID string, adminID uint, next models.ReportStatus) (*models.Report, error)
	ToggleBan(ctx context.Context, admin services.Actor, userID uint) (bool, error)
	RemovePost(ctx context.Context, adminID uint, postID string) (int64, error)
	Stats(ctx context.Context) (*models.ModerationStats, error)
}

// ModerationHandler serves user reports and the admin moderation console
type ModerationHandler struct {
	moderation ModerationService
}

func NewModerationHandler(moderation ModerationService) *ModerationHandler {
	return &ModerationHandler{moderation: moderation}
}

func (h *ModerationHandler) RegisterReportRoutes(g *echo.Group) {
	g.POST("/reports", h.CreateReport)
}

// RegisterAdminRoutes expects g to be guarded by RequireRoles(admin)
func (h *ModerationHandler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/reports", h.ListReports)
	g.PUT("/reports/:id", h.UpdateReport)
	g.POST("/users/:id/ban", h.ToggleBan)
	g.DELETE("/posts/:id", h.RemovePost)
	g.GET("/stats", h.GetStats)
}

func (h *ModerationHandler) CreateReport(c echo.Context) error {
	var req models.CreateReportRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	report, err := h.moderation.Report(c.Request().Context(), getUserIDFromContext(c), req)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusCreated, echo.Map{"report": report})
}

// ListReports filters by ?status=, all statuses when absent
func (h *ModerationHandler) ListReports(c echo.Context) error {
	status := models.ReportStatus(c.QueryParam("status"))
	switch status {
	case "", models.ReportPending, models.ReportReviewed, models.ReportResolved, models.ReportDismissed:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown report status")
	}
	page := pageFromQuery(c)
	reports, total, err := h.moderation.ListReports(c.Request().Context(), status, page)
	if err != nil {
		return httpError(err)
	}
	return paged(c, "reports", reports, page, total)
}

func (h *ModerationHandler) UpdateReport(c echo.Context) error {
	var req models.UpdateReportRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	report, err := h.moderation.UpdateReportStatus(c.Request().Context(), c.Param("id"), getUserIDFromContext(c), req.Status)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"report": report})
}

func (h *ModerationHandler) ToggleBan(c echo.Context) error {
	userID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	banned, err := h.moderation.ToggleBan(c.Request().Context(), actorFromContext(c), userID)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"user_id": userID, "is_banned": banned})
}

func (h *ModerationHandler) RemovePost(c echo.Context) error {
	resolved, err := h.moderation.RemovePost(c.Request().Context(), getUserIDFromContext(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"removed": true, "resolved_reports": resolved})
}

func (h *ModerationHandler) GetStats(c echo.Context) error {
	stats, err := h.moderation.Stats(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, stats)
}
