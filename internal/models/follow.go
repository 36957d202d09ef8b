package models

import "time"

// Follow is an accepted edge: FollowerID observes FollowingID
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  uint      `json:"follower_id" gorm:"index;uniqueIndex:idx_follower_following;check:chk_follow_not_self,follower_id <> following_id"`
	FollowingID uint      `json:"following_id" gorm:"index;uniqueIndex:idx_follower_following"`
	CreatedAt   time.Time `json:"created_at"`
}

// FollowRequest is a pending edge awaiting the target's answer
type FollowRequest struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RequesterID uint      `json:"requester_id" gorm:"index;uniqueIndex:idx_requester_target;check:chk_request_not_self,requester_id <> target_id"`
	TargetID    uint      `json:"target_id" gorm:"index;uniqueIndex:idx_requester_target"`
	CreatedAt   time.Time `json:"created_at"`
}

// FollowerCount pairs a user with how many accounts follow them
type FollowerCount struct {
	UserID    uint
	Followers int64
}

// RelationshipState is the viewer's side of a pair
type RelationshipState string

const (
	RelationshipNone      RelationshipState = "none"
	RelationshipRequested RelationshipState = "requested"
	RelationshipFollowing RelationshipState = "following"
)

// PendingRequest is an incoming request with the requester resolved
type PendingRequest struct {
	Requester UserSummary `json:"requester"`
	CreatedAt time.Time   `json:"created_at"`
}

type RespondFollowRequest struct {
	Action string `json:"action" validate:"required,oneof=accept reject"`
}
