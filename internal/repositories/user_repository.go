package repositories

import (
	"context"
	"strings"

	"github.com/campusnet/backend/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for the account directory
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []uint) ([]models.User, error)
	CountExisting(ctx context.Context, ids []uint) (int64, error)
	UpdateUser(ctx context.Context, user *models.User) error
	SetBanned(ctx context.Context, id uint, banned bool) error
	SearchUsers(ctx context.Context, query string, limit int) ([]models.User, error)
	ListActiveIDsByRole(ctx context.Context, role models.Role) ([]uint, error)
	CountUsers(ctx context.Context) (total int64, banned int64, err error)
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("firebase_uid = ?", firebaseUID).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// GetUsersByIDs returns the users that exist, in id order
func (r *PostgresUserRepository) GetUsersByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&users).Error
	return users, err
}

func (r *PostgresUserRepository) CountExisting(ctx context.Context, ids []uint) (int64, error) {
	var count int64
	if len(ids) == 0 {
		return 0, nil
	}
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id IN ?", ids).Count(&count).Error
	return count, err
}

func (r *PostgresUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Save(user).Error)
}

func (r *PostgresUserRepository) SetBanned(ctx context.Context, id uint, banned bool) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_banned", banned)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchUsers matches username or location, case-insensitive
func (r *PostgresUserRepository) SearchUsers(ctx context.Context, query string, limit int) ([]models.User, error) {
	var users []models.User
	like := "%" + strings.ToLower(query) + "%"
	err := r.db.WithContext(ctx).
		Where("is_banned = ?", false).
		Where("LOWER(username) LIKE ? OR LOWER(location) LIKE ?", like, like).
		Order("username ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// ListActiveIDsByRole returns non-banned user ids; an empty role matches everyone.
// Announcement publishing always passes a role.
func (r *PostgresUserRepository) ListActiveIDsByRole(ctx context.Context, role models.Role) ([]uint, error) {
	var ids []uint
	q := r.db.WithContext(ctx).Model(&models.User{}).Where("is_banned = ?", false)
	if role != "" {
		q = q.Where("role = ?", role)
	}
	err := q.Order("id ASC").Pluck("id", &ids).Error
	return ids, err
}

func (r *PostgresUserRepository) CountUsers(ctx context.Context) (int64, int64, error) {
	var total, banned int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("is_banned = ?", true).Count(&banned).Error; err != nil {
		return 0, 0, err
	}
	return total, banned, nil
}
