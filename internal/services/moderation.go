package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/campusnet/backend/internal/models"
	"github.com/campusnet/backend/internal/repositories"
	"github.com/rs/zerolog"
)

// ModerationService handles user reports, bans and post takedowns
type ModerationService struct {
	users   repositories.UserRepository
	posts   repositories.PostRepository
	saved   repositories.SavedPostRepository
	reports repositories.ReportRepository
	log     zerolog.Logger
}

func NewModerationService(
	users repositories.UserRepository,
	posts repositories.PostRepository,
	saved repositories.SavedPostRepository,
	reports repositories.ReportRepository,
	log zerolog.Logger,
) *ModerationService {
	return &ModerationService{
		users:   users,
		posts:   posts,
		saved:   saved,
		reports: reports,
		log:     log.With().Str("component", "moderation").Logger(),
	}
}

// Report files a pending report. One reporter has at most one pending report per target.
func (s *ModerationService) Report(ctx context.Context, reporterID uint, req models.CreateReportRequest) (*models.Report, error) {
	switch req.TargetType {
	case models.ReportTargetPost:
		if _, err := s.posts.GetPostByID(ctx, req.TargetID); err != nil {
			return nil, storeErr("get reported post", err)
		}
	case models.ReportTargetUser:
		id, err := strconv.ParseUint(req.TargetID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		if uint(id) == reporterID {
			return nil, fmt.Errorf("%w: cannot report yourself", ErrInvalidState)
		}
		if _, err := s.users.GetUserByID(ctx, uint(id)); err != nil {
			return nil, storeErr("get reported user", err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown target type %q", ErrInvalidState, req.TargetType)
	}

	pending, err := s.reports.HasPending(ctx, reporterID, req.TargetType, req.TargetID)
	if err != nil {
		return nil, storeErr("check pending reports", err)
	}
	if pending {
		return nil, fmt.Errorf("%w: you already reported this", ErrConflict)
	}

	rep := &models.Report{
		ReporterID: reporterID,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Reason:     req.Reason,
		Status:     models.ReportPending,
	}
	if err := s.reports.CreateReport(ctx, rep); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("%w: you already reported this", ErrConflict)
		}
		return nil, storeErr("create report", err)
	}
	return rep, nil
}

func (s *ModerationService) ListReports(ctx context.Context, status models.ReportStatus, page models.Page) ([]models.Report, int64, error) {
	list, total, err := s.reports.ListReports(ctx, status, int64(page.Offset()), int64(page.Limit))
	if err != nil {
		return nil, 0, storeErr("list reports", err)
	}
	return list, total, nil
}

// UpdateReportStatus moves a report along pending -> reviewed -> resolved|dismissed
func (s *ModerationService) UpdateReportStatus(ctx context.Context, reportID string, adminID uint, next models.ReportStatus) (*models.Report, error) {
	rep, err := s.reports.GetReportByID(ctx, reportID)
	if err != nil {
		return nil, storeErr("get report", err)
	}
	if !rep.Status.CanMoveTo(next) {
		return nil, fmt.Errorf("%w: cannot move report from %s to %s", ErrInvalidState, rep.Status, next)
	}
	if err := s.reports.UpdateStatus(ctx, reportID, rep.Status, next, adminID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: report changed concurrently", ErrConflict)
		}
		return nil, storeErr("update report", err)
	}
	rep.Status = next
	rep.ResolvedBy = adminID
	return rep, nil
}

// ToggleBan flips a user's ban flag. Admins cannot ban themselves or other admins.
func (s *ModerationService) ToggleBan(ctx context.Context, admin Actor, userID uint) (bool, error) {
	if userID == admin.ID {
		return false, fmt.Errorf("%w: cannot ban yourself", ErrUnauthorized)
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return false, storeErr("get user", err)
	}
	if user.Role == models.RoleAdmin {
		return false, fmt.Errorf("%w: cannot ban an admin", ErrUnauthorized)
	}
	banned := !user.IsBanned
	if err := s.users.SetBanned(ctx, userID, banned); err != nil {
		return false, storeErr("set banned", err)
	}
	s.log.Info().Uint("admin", admin.ID).Uint("user", userID).Bool("banned", banned).Msg("ban toggled")
	return banned, nil
}

// RemovePost takes a post down and resolves the open reports about it
func (s *ModerationService) RemovePost(ctx context.Context, adminID uint, postID string) (int64, error) {
	if err := s.posts.DeletePost(ctx, postID); err != nil {
		return 0, storeErr("delete post", err)
	}
	if err := s.saved.DeleteForPost(ctx, postID); err != nil {
		s.log.Warn().Err(err).Str("post", postID).Msg("clear bookmarks of removed post")
	}
	resolved, err := s.reports.ResolveForTarget(ctx, models.ReportTargetPost, postID, adminID)
	if err != nil {
		return 0, storeErr("resolve reports", err)
	}
	s.log.Info().Uint("admin", adminID).Str("post", postID).Int64("resolved", resolved).Msg("post removed")
	return resolved, nil
}

func (s *ModerationService) Stats(ctx context.Context) (*models.ModerationStats, error) {
	users, banned, err := s.users.CountUsers(ctx)
	if err != nil {
		return nil, storeErr("count users", err)
	}
	posts, err := s.posts.CountPosts(ctx)
	if err != nil {
		return nil, storeErr("count posts", err)
	}
	pending, err := s.reports.CountPending(ctx)
	if err != nil {
		return nil, storeErr("count reports", err)
	}
	return &models.ModerationStats{Users: users, BannedUsers: banned, Posts: posts, PendingReports: pending}, nil
}
