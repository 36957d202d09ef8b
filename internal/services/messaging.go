package services

import (
	"context"
	"fmt"

	"github.com/campusnet/backend/internal/models"
	"github.com/campusnet/backend/internal/repositories"
	"github.com/rs/zerolog"
)

// MessagingService carries direct messages between friends. Two users are
// friends when an accepted follow exists in either direction.
type MessagingService struct {
	users    repositories.UserRepository
	follows  repositories.FollowRepository
	messages repositories.MessageRepository
	notifier Notifier
	log      zerolog.Logger
}

func NewMessagingService(
	users repositories.UserRepository,
	follows repositories.FollowRepository,
	messages repositories.MessageRepository,
	notifier Notifier,
	log zerolog.Logger,
) *MessagingService {
	return &MessagingService{
		users:    users,
		follows:  follows,
		messages: messages,
		notifier: notifier,
		log:      log.With().Str("component", "messaging").Logger(),
	}
}

func (s *MessagingService) Send(ctx context.Context, senderID, recipientID uint, text string) (*models.Message, error) {
	if senderID == recipientID {
		return nil, fmt.Errorf("%w: cannot message yourself", ErrInvalidState)
	}
	if _, err := s.users.GetUserByID(ctx, recipientID); err != nil {
		return nil, storeErr("get recipient", err)
	}
	friends, err := s.follows.AreConnected(ctx, senderID, recipientID)
	if err != nil {
		return nil, storeErr("check friendship", err)
	}
	if !friends {
		return nil, fmt.Errorf("%w: you can only message friends", ErrUnauthorized)
	}

	msg := &models.Message{SenderID: senderID, RecipientID: recipientID, Text: text}
	if err := s.messages.CreateMessage(ctx, msg); err != nil {
		return nil, storeErr("store message", err)
	}
	if err := s.notifier.NotifyMessage(ctx, senderID, recipientID, text); err != nil {
		s.log.Warn().Err(err).Uint("sender", senderID).Uint("recipient", recipientID).Msg("message notification")
	}
	return msg, nil
}

// Conversation pages the thread between userID and otherID, newest first
func (s *MessagingService) Conversation(ctx context.Context, userID, otherID uint, page models.Page) ([]models.Message, int64, error) {
	if _, err := s.users.GetUserByID(ctx, otherID); err != nil {
		return nil, 0, storeErr("get peer", err)
	}
	msgs, total, err := s.messages.GetConversation(ctx, userID, otherID, int64(page.Offset()), int64(page.Limit))
	if err != nil {
		return nil, 0, storeErr("load conversation", err)
	}
	return msgs, total, nil
}

// Conversations lists userID's threads by most recent message
func (s *MessagingService) Conversations(ctx context.Context, userID uint) ([]models.ConversationSummary, error) {
	heads, err := s.messages.GetConversationHeads(ctx, userID)
	if err != nil {
		return nil, storeErr("load conversations", err)
	}
	ids := make([]uint, len(heads))
	for i, h := range heads {
		ids[i] = h.PeerID
	}
	peers := map[uint]models.UserSummary{}
	if len(ids) > 0 {
		users, err := s.users.GetUsersByIDs(ctx, ids)
		if err != nil {
			return nil, storeErr("load peers", err)
		}
		for i := range users {
			peers[users[i].ID] = users[i].ToSummary()
		}
	}

	out := make([]models.ConversationSummary, 0, len(heads))
	for _, h := range heads {
		peer, ok := peers[h.PeerID]
		if !ok {
			continue
		}
		out = append(out, models.ConversationSummary{Peer: peer, LastMessage: h.LastMessage, Unread: h.Unread})
	}
	return out, nil
}

func (s *MessagingService) MarkConversationRead(ctx context.Context, userID, otherID uint) (int64, error) {
	n, err := s.messages.MarkConversationRead(ctx, userID, otherID)
	return n, storeErr("mark conversation read", err)
}
