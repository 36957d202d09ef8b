package repositories

import (
	"context"

	"github.com/campusnet/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository stores the follow graph as two adjacency tables: accepted
// edges and pending requests. Every mutation is a single conditional statement
// (or one transaction) so callers never read-then-write.
type FollowRepository interface {
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
	AreConnected(ctx context.Context, a, b uint) (bool, error)
	DeleteFollow(ctx context.Context, followerID, followingID uint) (bool, error)
	CreateRequest(ctx context.Context, requesterID, targetID uint) (bool, error)
	HasRequest(ctx context.Context, requesterID, targetID uint) (bool, error)
	DeleteRequest(ctx context.Context, requesterID, targetID uint) (bool, error)
	AcceptRequest(ctx context.Context, requesterID, targetID uint) error
	IncomingRequests(ctx context.Context, targetID uint) ([]models.FollowRequest, error)
	ListFollowerIDs(ctx context.Context, userID uint, offset, limit int) ([]uint, int64, error)
	ListFollowingIDs(ctx context.Context, userID uint, offset, limit int) ([]uint, int64, error)
	FollowingIDs(ctx context.Context, userID uint) ([]uint, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
	FollowerCounts(ctx context.Context, exclude []uint, limit int) ([]models.FollowerCount, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

func (r *PostgresFollowRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}

// AreConnected reports an accepted edge in either direction
func (r *PostgresFollowRepository) AreConnected(ctx context.Context, a, b uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("(follower_id = ? AND following_id = ?) OR (follower_id = ? AND following_id = ?)", a, b, b, a).
		Count(&count).Error
	return count > 0, err
}

// DeleteFollow removes the edge and reports whether it existed
func (r *PostgresFollowRepository) DeleteFollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CreateRequest inserts a pending request unless one exists; true means inserted
func (r *PostgresFollowRepository) CreateRequest(ctx context.Context, requesterID, targetID uint) (bool, error) {
	req := &models.FollowRequest{RequesterID: requesterID, TargetID: targetID}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(req)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *PostgresFollowRepository) HasRequest(ctx context.Context, requesterID, targetID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.FollowRequest{}).
		Where("requester_id = ? AND target_id = ?", requesterID, targetID).
		Count(&count).Error
	return count > 0, err
}

func (r *PostgresFollowRepository) DeleteRequest(ctx context.Context, requesterID, targetID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("requester_id = ? AND target_id = ?", requesterID, targetID).
		Delete(&models.FollowRequest{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AcceptRequest consumes the pending row and materializes the edge in one
// transaction. ErrNotFound when no request was pending.
func (r *PostgresFollowRepository) AcceptRequest(ctx context.Context, requesterID, targetID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("requester_id = ? AND target_id = ?", requesterID, targetID).Delete(&models.FollowRequest{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		follow := &models.Follow{FollowerID: requesterID, FollowingID: targetID}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(follow).Error
	})
}

func (r *PostgresFollowRepository) IncomingRequests(ctx context.Context, targetID uint) ([]models.FollowRequest, error) {
	var requests []models.FollowRequest
	err := r.db.WithContext(ctx).Where("target_id = ?", targetID).Order("created_at DESC").Find(&requests).Error
	return requests, err
}

func (r *PostgresFollowRepository) ListFollowerIDs(ctx context.Context, userID uint, offset, limit int) ([]uint, int64, error) {
	return r.page(ctx, "following_id", "follower_id", userID, offset, limit)
}

func (r *PostgresFollowRepository) ListFollowingIDs(ctx context.Context, userID uint, offset, limit int) ([]uint, int64, error) {
	return r.page(ctx, "follower_id", "following_id", userID, offset, limit)
}

func (r *PostgresFollowRepository) page(ctx context.Context, keyCol, valueCol string, userID uint, offset, limit int) ([]uint, int64, error) {
	var total int64
	q := r.db.WithContext(ctx).Model(&models.Follow{}).Where(keyCol+" = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where(keyCol+" = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Pluck(valueCol, &ids).Error
	return ids, total, err
}

func (r *PostgresFollowRepository) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Pluck("following_id", &ids).Error
	return ids, err
}

func (r *PostgresFollowRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("following_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *PostgresFollowRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}

// FollowerCounts ranks active users not in exclude by follower count, then id
func (r *PostgresFollowRepository) FollowerCounts(ctx context.Context, exclude []uint, limit int) ([]models.FollowerCount, error) {
	var out []models.FollowerCount
	q := r.db.WithContext(ctx).Table("users").
		Select("users.id AS user_id, COUNT(follows.id) AS followers").
		Joins("LEFT JOIN follows ON follows.following_id = users.id").
		Where("users.is_banned = ?", false)
	if len(exclude) > 0 {
		q = q.Where("users.id NOT IN ?", exclude)
	}
	err := q.Group("users.id").
		Order("followers DESC, users.id ASC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}
