package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StoryLifetime is how long a story stays visible
const StoryLifetime = 24 * time.Hour

// Story is an ephemeral media item stored in MongoDB
type Story struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID  uint               `json:"author_id" bson:"author_id"`
	MediaURL  string             `json:"media_url" bson:"media_url"`
	MediaType string             `json:"media_type" bson:"media_type"` // "image" or "video"
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	ExpiresAt time.Time          `json:"expires_at" bson:"expires_at"`
}

// StoryView tracks which stories a user has seen (PostgreSQL)
type StoryView struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	StoryID  string    `json:"story_id" gorm:"index;uniqueIndex:idx_story_user_view"`
	ViewerID uint      `json:"viewer_id" gorm:"index;uniqueIndex:idx_story_user_view"`
	ViewedAt time.Time `json:"viewed_at"`
}

type CreateStoryRequest struct {
	MediaURL  string `json:"media_url" validate:"required,url"`
	MediaType string `json:"media_type" validate:"required,oneof=image video"`
}

// StoryGroup is one author's active stories as seen by a viewer
type StoryGroup struct {
	Author         UserSummary `json:"author"`
	Items          []Story     `json:"items"`
	HasUnseenItems bool        `json:"has_unseen_items"`
}
