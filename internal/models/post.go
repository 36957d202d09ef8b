package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is an image post stored in MongoDB
type Post struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID  uint               `json:"author_id" bson:"author_id"`
	Caption   string             `json:"caption" bson:"caption"`
	ImageURL  string             `json:"image_url" bson:"image_url"`
	Likes     []uint             `json:"likes" bson:"likes"`
	Comments  []Comment          `json:"comments" bson:"comments"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// Comment is embedded in its post
type Comment struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	AuthorID  uint               `json:"author_id" bson:"author_id"`
	Text      string             `json:"text" bson:"text"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// LikedBy reports whether userID is in the likes set
func (p *Post) LikedBy(userID uint) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// FindComment returns the embedded comment with the given id
func (p *Post) FindComment(id primitive.ObjectID) (*Comment, bool) {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return &p.Comments[i], true
		}
	}
	return nil, false
}

type CreatePostRequest struct {
	Caption  string `json:"caption" validate:"max=2200"`
	ImageURL string `json:"image_url" validate:"required,url"`
}

type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}

// EnrichedPost is a post with its author resolved and the viewer's flags
type EnrichedPost struct {
	Post
	Author        UserSummary `json:"author"`
	LikesCount    int         `json:"likes_count"`
	CommentsCount int         `json:"comments_count"`
	IsLiked       bool        `json:"is_liked"`
	IsSaved       bool        `json:"is_saved"`
}
