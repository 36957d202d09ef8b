package services

import (
	"context"
	"fmt"

	"github.com/campusnet/backend/internal/models"
	"github.com/campusnet/backend/internal/repositories"
	"github.com/rs/zerolog"
)

// AnnouncementService publishes admin broadcasts. Delivery is best effort:
// the announcement stays published when some recipients were not reached,
// and Resend delivers it again from scratch.
type AnnouncementService struct {
	users    repositories.UserRepository
	repo     repositories.AnnouncementRepository
	notifier AnnouncementNotifier
	log      zerolog.Logger
}

func NewAnnouncementService(
	users repositories.UserRepository,
	repo repositories.AnnouncementRepository,
	notifier AnnouncementNotifier,
	log zerolog.Logger,
) *AnnouncementService {
	return &AnnouncementService{
		users:    users,
		repo:     repo,
		notifier: notifier,
		log:      log.With().Str("component", "announcements").Logger(),
	}
}

// Publish stores the announcement and fans it out to every active user of
// the audience role, students when none is given. A non-nil announcement
// with a non-nil error means it was published but delivery was partial.
func (s *AnnouncementService) Publish(ctx context.Context, authorID uint, req models.CreateAnnouncementRequest) (*models.Announcement, error) {
	audience := req.Audience
	if audience == "" {
		audience = models.DefaultAudience
	}
	a := &models.Announcement{
		AuthorID: authorID,
		Subject:  req.Subject,
		Body:     req.Body,
		Audience: audience,
	}
	if err := s.repo.CreateAnnouncement(ctx, a); err != nil {
		return nil, storeErr("create announcement", err)
	}
	return a, s.deliver(ctx, a)
}

// Resend clears earlier records of the announcement and delivers it again
func (s *AnnouncementService) Resend(ctx context.Context, id string) (*models.Announcement, error) {
	a, err := s.repo.GetAnnouncementByID(ctx, id)
	if err != nil {
		return nil, storeErr("get announcement", err)
	}
	cleared, err := s.notifier.ClearAnnouncement(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("announcement", id).Int64("cleared", cleared).Msg("resending announcement")
	return a, s.deliver(ctx, a)
}

func (s *AnnouncementService) deliver(ctx context.Context, a *models.Announcement) error {
	recipients, err := s.users.ListActiveIDsByRole(ctx, a.Audience)
	if err != nil {
		return storeErr("list recipients", err)
	}

	id := a.ID.Hex()
	created, deliveryErr := s.notifier.NotifyAnnouncementBatch(ctx, id, a.AuthorID, a.Subject, recipients)
	a.RecipientCount = created
	if err := s.repo.SetRecipientCount(ctx, a.ID, created); err != nil {
		s.log.Warn().Err(err).Str("announcement", id).Msg("store recipient count")
	}
	if deliveryErr != nil {
		s.log.Error().Err(deliveryErr).Str("announcement", id).Int("delivered", created).Msg("partial announcement delivery")
		return fmt.Errorf("announcement %s delivered to %d recipients: %w", id, created, deliveryErr)
	}
	s.log.Info().Str("announcement", id).Int("delivered", created).Msg("announcement delivered")
	return nil
}

func (s *AnnouncementService) List(ctx context.Context, page models.Page) ([]models.Announcement, int64, error) {
	list, total, err := s.repo.ListAnnouncements(ctx, int64(page.Offset()), int64(page.Limit))
	if err != nil {
		return nil, 0, storeErr("list announcements", err)
	}
	return list, total, nil
}
