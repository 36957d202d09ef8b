package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultAudience receives announcements published without a role
const DefaultAudience = RoleStudent

// Announcement is an admin broadcast to one audience role
type Announcement struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID       uint               `json:"author_id" bson:"author_id"`
	Subject        string             `json:"subject" bson:"subject"`
	Body           string             `json:"body" bson:"body"`
	Audience       Role               `json:"audience" bson:"audience"`
	RecipientCount int                `json:"recipient_count" bson:"recipient_count"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
}

type CreateAnnouncementRequest struct {
	Subject  string `json:"subject" validate:"required,min=3,max=150"`
	Body     string `json:"body" validate:"required,max=5000"`
	Audience Role   `json:"audience" validate:"omitempty,oneof=student faculty"`
}
