package handlers

import (
	"context"
	"net/http"

	"github.com/campusnet/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type AnnouncementService interface {
	Publish(ctx context.Context, authorID uint, req models.CreateAnnouncementRequest) (*models.Announcement, error)
	Resend(ctx context.Context, id string) (*models.Announcement, error)
	List(ctx context.Context, page models.Page) ([]models.Announcement, int64, error)
}

// AnnouncementHandler serves the campus announcement board
type AnnouncementHandler struct {
	announcements AnnouncementService
	log           zerolog.Logger
}

func NewAnnouncementHandler(announcements AnnouncementService, log zerolog.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{announcements: announcements, log: log}
}

func (h *AnnouncementHandler) RegisterAnnouncementRoutes(g *echo.Group) {
	g.GET("/announcements", h.ListAnnouncements)
}

// RegisterAdminRoutes expects g to be guarded by RequireRoles(admin)
func (h *AnnouncementHandler) RegisterAdminRoutes(g *echo.Group) {
	g.POST("/announcements", h.Publish)
	g.POST("/announcements/:id/resend", h.Resend)
}

func (h *AnnouncementHandler) ListAnnouncements(c echo.Context) error {
	page := pageFromQuery(c)
	list, total, err := h.announcements.List(c.Request().Context(), page)
	if err != nil {
		return httpError(err)
	}
	return paged(c, "announcements", list, page, total)
}

func (h *AnnouncementHandler) Publish(c echo.Context) error {
	var req models.CreateAnnouncementRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	a, err := h.announcements.Publish(c.Request().Context(), getUserIDFromContext(c), req)
	return h.deliveryResponse(c, http.StatusCreated, a, err)
}

// Resend redelivers an announcement after a partial fan-out
func (h *AnnouncementHandler) Resend(c echo.Context) error {
	a, err := h.announcements.Resend(c.Request().Context(), c.Param("id"))
	return h.deliveryResponse(c, http.StatusOK, a, err)
}

// deliveryResponse reports a stored announcement as success even when the
// fan-out was partial, with the shortfall in warning.
func (h *AnnouncementHandler) deliveryResponse(c echo.Context, status int, a *models.Announcement, err error) error {
	if a == nil {
		return httpError(err)
	}
	body := echo.Map{"success": true, "data": echo.Map{"announcement": a}}
	if err != nil {
		h.log.Warn().Err(err).Str("announcement", a.ID.Hex()).Msg("announcement delivery incomplete")
		body["warning"] = "Announcement saved but not delivered to every recipient; resend to retry"
	}
	return c.JSON(status, body)
}
