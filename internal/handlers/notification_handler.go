package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/campusnet/backend/internal/models"
	"github.com/campusnet/backend/internal/services"
	"github.com/labstack/echo/v4"
)

type NotificationService interface {
	ListForUser(ctx context.Context, recipientID uint, page models.Page) ([]models.Notification, int64, error)
	Grouped(ctx context.Context, recipientID uint, now time.Time) (*services.GroupedNotifications, error)
	UnreadCount(ctx context.Context, recipientID uint) (int64, error)
	MarkRead(ctx context.Context, id string, recipientID uint) error
	MarkAllRead(ctx context.Context, recipientID uint) (int64, error)
	Delete(ctx context.Context, id string, recipientID uint) error
}

type UserBatchLookup interface {
	GetUsersByIDs(ctx context.Context, ids []uint) ([]models.User, error)
}

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications NotificationService
	users         UserBatchLookup
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications NotificationService, users UserBatchLookup) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, users: users}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/grouped", h.GetGroupedNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.DELETE("/notifications/:id", h.DeleteNotification)
}

// EnrichedNotification includes actor info
type EnrichedNotification struct {
	models.Notification
	Actor *models.UserSummary `json:"actor,omitempty"`
}

// enrich attaches sender summaries. Announcements are enriched too since
// they carry the publishing admin as sender.
func (h *NotificationHandler) enrich(ctx context.Context, ns []models.Notification) []EnrichedNotification {
	ids := make([]uint, 0, len(ns))
	seen := make(map[uint]bool)
	for _, n := range ns {
		if n.SenderID != 0 && !seen[n.SenderID] {
			seen[n.SenderID] = true
			ids = append(ids, n.SenderID)
		}
	}

	actors := make(map[uint]models.UserSummary, len(ids))
	if len(ids) > 0 {
		// Missing actors only cost the avatar, not the list.
		if users, err := h.users.GetUsersByIDs(ctx, ids); err == nil {
			for i := range users {
				actors[users[i].ID] = users[i].ToSummary()
			}
		}
	}

	enriched := make([]EnrichedNotification, len(ns))
	for i, n := range ns {
		enriched[i] = EnrichedNotification{Notification: n}
		if a, ok := actors[n.SenderID]; ok {
			enriched[i].Actor = &a
		}
	}
	return enriched
}

func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	page := pageFromQuery(c)
	ns, total, err := h.notifications.ListForUser(c.Request().Context(), getUserIDFromContext(c), page)
	if err != nil {
		return httpError(err)
	}
	return paged(c, "notifications", h.enrich(c.Request().Context(), ns), page, total)
}

// GetGroupedNotifications returns notifications bucketed by day
func (h *NotificationHandler) GetGroupedNotifications(c echo.Context) error {
	ctx := c.Request().Context()
	g, err := h.notifications.Grouped(ctx, getUserIDFromContext(c), time.Now())
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{
		"today":     h.enrich(ctx, g.Today),
		"yesterday": h.enrich(ctx, g.Yesterday),
		"thisWeek":  h.enrich(ctx, g.ThisWeek),
		"older":     h.enrich(ctx, g.Older),
	})
}

func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	n, err := h.notifications.UnreadCount(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"count": n})
}

func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	if err := h.notifications.MarkRead(c.Request().Context(), c.Param("id"), getUserIDFromContext(c)); err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"id": c.Param("id"), "read": true})
}

func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	n, err := h.notifications.MarkAllRead(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"updated": n})
}

func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	if err := h.notifications.Delete(c.Request().Context(), c.Param("id"), getUserIDFromContext(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
