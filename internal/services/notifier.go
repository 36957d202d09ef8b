package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campusnet/backend/internal/metrics"
	"github.com/campusnet/backend/internal/models"
	"github.com/campusnet/backend/internal/repositories"
	"github.com/rs/zerolog"
)

const (
	DefaultBatchSize = 500
	previewRunes     = 50
)

const (
	msgLike           = "liked your post"
	msgComment        = "commented on your post"
	msgFollowRequest  = "sent you a follow request"
	msgFollowAccept   = "accepted your follow request. We are friends now!"
	msgNowFollowing   = "is now following you"
	msgMessage        = "sent you a message"
	msgAnnouncementFm = "New Announcement: %s"
)

// Notifier is what content and messaging producers need from the fan-out
type Notifier interface {
	NotifyLike(ctx context.Context, likerID, authorID uint, postID string) error
	NotifyComment(ctx context.Context, commenterID, authorID uint, postID, text string) error
	NotifyMessage(ctx context.Context, senderID, recipientID uint, text string) error
}

// AnnouncementNotifier delivers and retracts announcement records
type AnnouncementNotifier interface {
	NotifyAnnouncementBatch(ctx context.Context, announcementID string, authorID uint, subject string, recipients []uint) (int, error)
	ClearAnnouncement(ctx context.Context, announcementID string) (int64, error)
}

// NotificationService stores per-recipient notification records and serves
// them back to their recipients.
type NotificationService struct {
	repo      repositories.NotificationRepository
	metrics   *metrics.Metrics
	log       zerolog.Logger
	batchSize int
}

func NewNotificationService(repo repositories.NotificationRepository, m *metrics.Metrics, log zerolog.Logger, batchSize int) *NotificationService {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &NotificationService{
		repo:      repo,
		metrics:   m,
		log:       log.With().Str("component", "notifications").Logger(),
		batchSize: batchSize,
	}
}

func preview(text string) string {
	r := []rune(text)
	if len(r) <= previewRunes {
		return text
	}
	return string(r[:previewRunes])
}

// create stores one record unless sender and recipient coincide
func (s *NotificationService) create(ctx context.Context, n *models.Notification) error {
	if n.SenderID != 0 && n.SenderID == n.RecipientID {
		s.metrics.NotificationsSuppressed.WithLabelValues(string(n.Type)).Inc()
		return nil
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		s.metrics.NotificationsFailed.WithLabelValues(string(n.Type)).Inc()
		return storeErr("create notification", err)
	}
	s.metrics.NotificationsCreated.WithLabelValues(string(n.Type)).Inc()
	return nil
}

func (s *NotificationService) NotifyLike(ctx context.Context, likerID, authorID uint, postID string) error {
	return s.create(ctx, &models.Notification{
		RecipientID: authorID,
		SenderID:    likerID,
		Type:        models.NotificationLike,
		Message:     msgLike,
		ReferenceID: postID,
	})
}

func (s *NotificationService) NotifyComment(ctx context.Context, commenterID, authorID uint, postID, text string) error {
	return s.create(ctx, &models.Notification{
		RecipientID: authorID,
		SenderID:    commenterID,
		Type:        models.NotificationComment,
		Message:     msgComment,
		Preview:     preview(text),
		ReferenceID: postID,
	})
}

func (s *NotificationService) NotifyFollowRequest(ctx context.Context, requesterID, targetID uint) error {
	return s.create(ctx, &models.Notification{
		RecipientID: targetID,
		SenderID:    requesterID,
		Type:        models.NotificationFollowRequest,
		Message:     msgFollowRequest,
	})
}

// NotifyFollowAccept tells the requester that targetID accepted
func (s *NotificationService) NotifyFollowAccept(ctx context.Context, requesterID, targetID uint) error {
	return s.create(ctx, &models.Notification{
		RecipientID: requesterID,
		SenderID:    targetID,
		Type:        models.NotificationFollowAccept,
		Message:     msgFollowAccept,
	})
}

func (s *NotificationService) NotifyMessage(ctx context.Context, senderID, recipientID uint, text string) error {
	return s.create(ctx, &models.Notification{
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        models.NotificationMessage,
		Message:     msgMessage,
		Preview:     preview(text),
	})
}

// NotifyAnnouncementBatch writes one record per recipient in chunks of
// batchSize. A failed chunk does not stop the others; the returned error
// joins every chunk failure and the count covers what was stored.
func (s *NotificationService) NotifyAnnouncementBatch(ctx context.Context, announcementID string, authorID uint, subject string, recipients []uint) (int, error) {
	message := fmt.Sprintf(msgAnnouncementFm, subject)
	records := make([]models.Notification, 0, len(recipients))
	for _, id := range recipients {
		if id == authorID {
			continue
		}
		records = append(records, models.Notification{
			RecipientID: id,
			SenderID:    authorID,
			Type:        models.NotificationAnnouncement,
			Message:     message,
			ReferenceID: announcementID,
		})
	}

	var (
		created int
		errs    []error
	)
	for start := 0; start < len(records); start += s.batchSize {
		end := start + s.batchSize
		if end > len(records) {
			end = len(records)
		}
		chunk := records[start:end]
		n, err := s.repo.CreateMany(ctx, chunk)
		created += n
		if err != nil {
			failed := len(chunk) - n
			s.metrics.NotificationsFailed.WithLabelValues(string(models.NotificationAnnouncement)).Add(float64(failed))
			s.log.Error().Err(err).
				Str("announcement", announcementID).
				Int("offset", start).
				Int("failed", failed).
				Msg("announcement chunk failed")
			errs = append(errs, fmt.Errorf("chunk at %d: %w", start, err))
		}
	}
	s.metrics.NotificationsCreated.WithLabelValues(string(models.NotificationAnnouncement)).Add(float64(created))

	if len(errs) > 0 {
		return created, fmt.Errorf("%w: %v", ErrUpstream, errors.Join(errs...))
	}
	return created, nil
}

// ClearAnnouncement removes the records of an earlier announcement delivery
func (s *NotificationService) ClearAnnouncement(ctx context.Context, announcementID string) (int64, error) {
	n, err := s.repo.DeleteByReference(ctx, models.NotificationAnnouncement, announcementID)
	return n, storeErr("delete announcement notifications", err)
}

// FollowRequested implements RelationshipEvents
func (s *NotificationService) FollowRequested(ctx context.Context, requesterID, targetID uint) {
	if err := s.NotifyFollowRequest(ctx, requesterID, targetID); err != nil {
		s.log.Warn().Err(err).Uint("requester", requesterID).Uint("target", targetID).Msg("follow request notification")
	}
}

// FollowAccepted moves the target's follow_request record to follow_accept
// and sends the requester a separate follow_accept record.
func (s *NotificationService) FollowAccepted(ctx context.Context, requesterID, targetID uint) {
	s.transitionRequest(ctx, requesterID, targetID, models.RequestAccepted)
	if err := s.NotifyFollowAccept(ctx, requesterID, targetID); err != nil {
		s.log.Warn().Err(err).Uint("requester", requesterID).Uint("target", targetID).Msg("follow accept notification")
	}
}

// FollowRequestRemoved drops the target's follow_request record
func (s *NotificationService) FollowRequestRemoved(ctx context.Context, requesterID, targetID uint) {
	s.transitionRequest(ctx, requesterID, targetID, models.RequestRemoved)
}

func (s *NotificationService) transitionRequest(ctx context.Context, requesterID, targetID uint, ev models.RequestEvent) {
	log := s.log.With().Uint("requester", requesterID).Uint("target", targetID).Str("event", string(ev)).Logger()

	n, err := s.repo.FindFollowRequest(ctx, requesterID, targetID)
	if errors.Is(err, repositories.ErrNotFound) {
		log.Debug().Msg("no follow request record to transition")
		return
	}
	if err != nil {
		s.metrics.NotificationsFailed.WithLabelValues(string(models.NotificationFollowRequest)).Inc()
		log.Error().Err(err).Msg("load follow request record")
		return
	}

	next, deleted, ok := n.Type.Transition(ev)
	if !ok {
		log.Warn().Str("type", string(n.Type)).Msg("rejected notification transition")
		return
	}
	if deleted {
		err = s.repo.DeleteByID(ctx, n.ID)
	} else {
		err = s.repo.UpdateType(ctx, n.ID, n.Type, next, msgNowFollowing)
	}
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		s.metrics.NotificationsFailed.WithLabelValues(string(models.NotificationFollowRequest)).Inc()
		log.Error().Err(err).Msg("transition follow request record")
	}
}

func (s *NotificationService) ListForUser(ctx context.Context, recipientID uint, page models.Page) ([]models.Notification, int64, error) {
	ns, total, err := s.repo.GetByRecipientID(ctx, recipientID, int64(page.Offset()), int64(page.Limit))
	if err != nil {
		return nil, 0, storeErr("list notifications", err)
	}
	return ns, total, nil
}

// GroupedNotifications buckets a recipient's recent notifications by age
type GroupedNotifications struct {
	Today     []models.Notification `json:"today"`
	Yesterday []models.Notification `json:"yesterday"`
	ThisWeek  []models.Notification `json:"thisWeek"`
	Older     []models.Notification `json:"older"`
}

const groupedWindow = 100

// Grouped returns the newest notifications split into day buckets relative to now
func (s *NotificationService) Grouped(ctx context.Context, recipientID uint, now time.Time) (*GroupedNotifications, error) {
	ns, _, err := s.repo.GetByRecipientID(ctx, recipientID, 0, groupedWindow)
	if err != nil {
		return nil, storeErr("list notifications", err)
	}

	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	weekStart := todayStart.AddDate(0, 0, -7)

	g := &GroupedNotifications{
		Today:     []models.Notification{},
		Yesterday: []models.Notification{},
		ThisWeek:  []models.Notification{},
		Older:     []models.Notification{},
	}
	for _, n := range ns {
		switch {
		case !n.UpdatedAt.Before(todayStart):
			g.Today = append(g.Today, n)
		case !n.UpdatedAt.Before(yesterdayStart):
			g.Yesterday = append(g.Yesterday, n)
		case !n.UpdatedAt.Before(weekStart):
			g.ThisWeek = append(g.ThisWeek, n)
		default:
			g.Older = append(g.Older, n)
		}
	}
	return g, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	n, err := s.repo.GetUnreadCount(ctx, recipientID)
	return n, storeErr("count unread", err)
}

// MarkRead is idempotent. Ids that do not belong to recipientID are ErrNotFound.
func (s *NotificationService) MarkRead(ctx context.Context, id string, recipientID uint) error {
	return storeErr("mark notification read", s.repo.MarkAsRead(ctx, id, recipientID))
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	n, err := s.repo.MarkAllAsRead(ctx, recipientID)
	return n, storeErr("mark all read", err)
}

func (s *NotificationService) Delete(ctx context.Context, id string, recipientID uint) error {
	return storeErr("delete notification", s.repo.Delete(ctx, id, recipientID))
}

// Purge deletes notifications created before now-olderThan
func (s *NotificationService) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	n, err := s.repo.DeleteOlderThan(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return 0, storeErr("purge notifications", err)
	}
	s.log.Info().Int64("deleted", n).Dur("retention", olderThan).Msg("purged notifications")
	return n, nil
}
