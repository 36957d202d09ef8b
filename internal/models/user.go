package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the account kind of a campus user
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
)

// User is an account in the directory (PostgreSQL)
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Username    string    `json:"username" gorm:"size:50;uniqueIndex"`
	Email       string    `json:"email,omitempty" gorm:"uniqueIndex"`
	Password    string    `json:"-"`
	FirebaseUID *string   `json:"-" gorm:"uniqueIndex"`
	Role        Role      `json:"role" gorm:"size:20;index;default:'student'"`
	IsBanned    bool      `json:"is_banned" gorm:"default:false"`
	Bio         string    `json:"bio" gorm:"size:300"`
	AvatarURL   string    `json:"avatar_url"`
	Location    string    `json:"location" gorm:"size:100"`
	Website     string    `json:"website"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserSummary is the public shape of a user in lists
type UserSummary struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// ToSummary strips everything but the public identity fields
func (u *User) ToSummary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL}
}

// Profile is what other users see on a profile page
type Profile struct {
	UserSummary
	Role           Role   `json:"role"`
	Bio            string `json:"bio"`
	Location       string `json:"location"`
	Website        string `json:"website"`
	FollowersCount int64  `json:"followers_count"`
	FollowingCount int64  `json:"following_count"`
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     Role   `json:"role" validate:"omitempty,oneof=student faculty"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	Bio       *string `json:"bio,omitempty" validate:"omitempty,max=300"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Location  *string `json:"location,omitempty" validate:"omitempty,max=100"`
	Website   *string `json:"website,omitempty" validate:"omitempty,url"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint `json:"user_id"`
	Role   Role `json:"role"`
	jwt.RegisteredClaims
}
