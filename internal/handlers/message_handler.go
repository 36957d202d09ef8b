package handlers

import (
	"context"
	"net/http"

	"github.com/campusnet/backend/internal/models"
	"github.com/labstack/echo/v4"
)

type MessagingService interface {
	Send(ctx context.Context, senderID, recipientID uint, text string) (*models.Message, error)
	Conversation(ctx context.Context, userID, otherID uint, page models.Page) ([]models.Message, int64, error)
	Conversations(ctx context.Context, userID uint) ([]models.ConversationSummary, error)
	MarkConversationRead(ctx context.Context, userID, otherID uint) (int64, error)
}

// MessageHandler handles direct messages between friends
type MessageHandler struct {
	messaging MessagingService
}

func NewMessageHandler(messaging MessagingService) *MessageHandler {
	return &MessageHandler{messaging: messaging}
}

func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group) {
	g.GET("/conversations", h.GetConversations)
	g.GET("/messages/:id", h.GetConversation)
	g.POST("/messages/:id", h.SendMessage)
	g.PUT("/messages/:id/read", h.MarkConversationRead)
}

// SendMessage sends a message to user :id
func (h *MessageHandler) SendMessage(c echo.Context) error {
	recipientID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	var req models.SendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	msg, err := h.messaging.Send(c.Request().Context(), getUserIDFromContext(c), recipientID, req.Text)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusCreated, echo.Map{"message": msg})
}

func (h *MessageHandler) GetConversation(c echo.Context) error {
	otherID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	page := pageFromQuery(c)
	msgs, total, err := h.messaging.Conversation(c.Request().Context(), getUserIDFromContext(c), otherID, page)
	if err != nil {
		return httpError(err)
	}
	return paged(c, "messages", msgs, page, total)
}

func (h *MessageHandler) GetConversations(c echo.Context) error {
	convs, err := h.messaging.Conversations(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"conversations": convs})
}

func (h *MessageHandler) MarkConversationRead(c echo.Context) error {
	otherID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	n, err := h.messaging.MarkConversationRead(c.Request().Context(), getUserIDFromContext(c), otherID)
	if err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"updated": n})
}
