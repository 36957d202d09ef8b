package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/campusnet/backend/internal/metrics"
	"github.com/campusnet/backend/internal/models"
	"github.com/campusnet/backend/internal/repositories"
	"github.com/rs/zerolog"
)

type ToggleStatus string

const (
	StatusRequested        ToggleStatus = "requested"
	StatusUnfollowed       ToggleStatus = "unfollowed"
	StatusAlreadyRequested ToggleStatus = "already_requested_or_following"
)

type RespondStatus string

const (
	StatusAccepted RespondStatus = "accepted"
	StatusRejected RespondStatus = "rejected"
)

const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

const (
	DefaultSuggestLimit = 5
	MaxSuggestLimit     = 50
)

// RelationshipEvents receives the side effects of follow graph transitions.
// Implementations must not fail the transition that triggered them.
type RelationshipEvents interface {
	FollowRequested(ctx context.Context, requesterID, targetID uint)
	FollowAccepted(ctx context.Context, requesterID, targetID uint)
	FollowRequestRemoved(ctx context.Context, requesterID, targetID uint)
}

// RelationshipService owns the follow graph: requests, accepted edges and
// the reads over them.
type RelationshipService struct {
	users   repositories.UserRepository
	follows repositories.FollowRepository
	events  RelationshipEvents
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewRelationshipService(
	users repositories.UserRepository,
	follows repositories.FollowRepository,
	events RelationshipEvents,
	m *metrics.Metrics,
	log zerolog.Logger,
) *RelationshipService {
	return &RelationshipService{
		users:   users,
		follows: follows,
		events:  events,
		metrics: m,
		log:     log.With().Str("component", "relationships").Logger(),
	}
}

// usersExist fails with ErrNotFound unless every id resolves to a user
func (s *RelationshipService) usersExist(ctx context.Context, ids ...uint) error {
	distinct := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		distinct[id] = struct{}{}
	}
	list := make([]uint, 0, len(distinct))
	for id := range distinct {
		list = append(list, id)
	}
	n, err := s.users.CountExisting(ctx, list)
	if err != nil {
		return storeErr("count users", err)
	}
	if n != int64(len(list)) {
		return fmt.Errorf("%w: user", ErrNotFound)
	}
	return nil
}

// Toggle unfollows when actor already follows target, otherwise files a
// follow request. Each branch is one conditional write.
func (s *RelationshipService) Toggle(ctx context.Context, actorID, targetID uint) (ToggleStatus, error) {
	if actorID == targetID {
		return "", fmt.Errorf("%w: cannot follow yourself", ErrInvalidState)
	}
	if err := s.usersExist(ctx, actorID, targetID); err != nil {
		return "", err
	}

	removed, err := s.follows.DeleteFollow(ctx, actorID, targetID)
	if err != nil {
		return "", storeErr("delete follow", err)
	}
	if removed {
		s.metrics.RelationshipTransitions.WithLabelValues(string(StatusUnfollowed)).Inc()
		s.log.Debug().Uint("actor", actorID).Uint("target", targetID).Msg("unfollowed")
		return StatusUnfollowed, nil
	}

	created, err := s.follows.CreateRequest(ctx, actorID, targetID)
	if err != nil {
		return "", storeErr("create follow request", err)
	}
	if !created {
		return StatusAlreadyRequested, nil
	}

	s.metrics.RelationshipTransitions.WithLabelValues(string(StatusRequested)).Inc()
	s.events.FollowRequested(ctx, actorID, targetID)
	return StatusRequested, nil
}

// Respond lets targetID accept or reject the pending request from requesterID
func (s *RelationshipService) Respond(ctx context.Context, targetID, requesterID uint, action string) (RespondStatus, error) {
	switch action {
	case ActionAccept:
		err := s.follows.AcceptRequest(ctx, requesterID, targetID)
		if errors.Is(err, repositories.ErrNotFound) {
			return "", fmt.Errorf("%w: no pending request", ErrInvalidState)
		}
		if err != nil {
			return "", storeErr("accept follow request", err)
		}
		s.metrics.RelationshipTransitions.WithLabelValues(string(StatusAccepted)).Inc()
		s.events.FollowAccepted(ctx, requesterID, targetID)
		return StatusAccepted, nil

	case ActionReject:
		removed, err := s.follows.DeleteRequest(ctx, requesterID, targetID)
		if err != nil {
			return "", storeErr("delete follow request", err)
		}
		if !removed {
			return "", fmt.Errorf("%w: no pending request", ErrInvalidState)
		}
		s.metrics.RelationshipTransitions.WithLabelValues(string(StatusRejected)).Inc()
		s.events.FollowRequestRemoved(ctx, requesterID, targetID)
		return StatusRejected, nil
	}
	return "", fmt.Errorf("%w: unknown action %q", ErrInvalidState, action)
}

// CancelRequest withdraws a pending request filed by requesterID
func (s *RelationshipService) CancelRequest(ctx context.Context, requesterID, targetID uint) error {
	removed, err := s.follows.DeleteRequest(ctx, requesterID, targetID)
	if err != nil {
		return storeErr("delete follow request", err)
	}
	if !removed {
		return fmt.Errorf("%w: no pending request", ErrInvalidState)
	}
	s.metrics.RelationshipTransitions.WithLabelValues("cancelled").Inc()
	s.events.FollowRequestRemoved(ctx, requesterID, targetID)
	return nil
}

func (s *RelationshipService) ListFollowers(ctx context.Context, userID uint, page models.Page) ([]models.UserSummary, int64, error) {
	if err := s.usersExist(ctx, userID); err != nil {
		return nil, 0, err
	}
	ids, total, err := s.follows.ListFollowerIDs(ctx, userID, page.Offset(), page.Limit)
	if err != nil {
		return nil, 0, storeErr("list followers", err)
	}
	summaries, err := s.summaries(ctx, ids)
	return summaries, total, err
}

func (s *RelationshipService) ListFollowing(ctx context.Context, userID uint, page models.Page) ([]models.UserSummary, int64, error) {
	if err := s.usersExist(ctx, userID); err != nil {
		return nil, 0, err
	}
	ids, total, err := s.follows.ListFollowingIDs(ctx, userID, page.Offset(), page.Limit)
	if err != nil {
		return nil, 0, storeErr("list following", err)
	}
	summaries, err := s.summaries(ctx, ids)
	return summaries, total, err
}

// summaries resolves ids in order; ids whose user vanished are dropped
func (s *RelationshipService) summaries(ctx context.Context, ids []uint) ([]models.UserSummary, error) {
	out := make([]models.UserSummary, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, storeErr("load users", err)
	}
	byID := make(map[uint]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u.ToSummary())
		}
	}
	return out, nil
}

// PendingRequests lists requests waiting for targetID's answer, newest first
func (s *RelationshipService) PendingRequests(ctx context.Context, targetID uint) ([]models.PendingRequest, error) {
	requests, err := s.follows.IncomingRequests(ctx, targetID)
	if err != nil {
		return nil, storeErr("list follow requests", err)
	}
	ids := make([]uint, len(requests))
	for i, r := range requests {
		ids[i] = r.RequesterID
	}
	summaries, err := s.summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.UserSummary, len(summaries))
	for _, u := range summaries {
		byID[u.ID] = u
	}

	out := make([]models.PendingRequest, 0, len(requests))
	for _, r := range requests {
		if u, ok := byID[r.RequesterID]; ok {
			out = append(out, models.PendingRequest{Requester: u, CreatedAt: r.CreatedAt})
		}
	}
	return out, nil
}

// Status is the relationship from viewerID towards otherID
func (s *RelationshipService) Status(ctx context.Context, viewerID, otherID uint) (models.RelationshipState, error) {
	following, err := s.follows.IsFollowing(ctx, viewerID, otherID)
	if err != nil {
		return "", storeErr("read follow", err)
	}
	if following {
		return models.RelationshipFollowing, nil
	}
	requested, err := s.follows.HasRequest(ctx, viewerID, otherID)
	if err != nil {
		return "", storeErr("read follow request", err)
	}
	if requested {
		return models.RelationshipRequested, nil
	}
	return models.RelationshipNone, nil
}

func (s *RelationshipService) Counts(ctx context.Context, userID uint) (followers, following int64, err error) {
	if followers, err = s.follows.CountFollowers(ctx, userID); err != nil {
		return 0, 0, storeErr("count followers", err)
	}
	if following, err = s.follows.CountFollowing(ctx, userID); err != nil {
		return 0, 0, storeErr("count following", err)
	}
	return followers, following, nil
}

// Suggest ranks users the caller does not follow yet by popularity.
// Ties are broken by ascending id. The result is never padded.
func (s *RelationshipService) Suggest(ctx context.Context, userID uint, limit int) ([]models.UserSummary, error) {
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	if limit > MaxSuggestLimit {
		limit = MaxSuggestLimit
	}

	following, err := s.follows.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, storeErr("list following", err)
	}
	exclude := append([]uint{userID}, following...)

	ranked, err := s.follows.FollowerCounts(ctx, exclude, limit)
	if err != nil {
		return nil, storeErr("rank users", err)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Followers != ranked[j].Followers {
			return ranked[i].Followers > ranked[j].Followers
		}
		return ranked[i].UserID < ranked[j].UserID
	})

	ids := make([]uint, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.UserID)
	}
	return s.summaries(ctx, ids)
}
