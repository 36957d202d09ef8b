package models

import "time"

// SavedPost is a bookmark keyed by (user, post). Listing walks a user's
// bookmarks newest first, and removing a post clears its rows by post id.
type SavedPost struct {
	UserID    uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false;index:idx_saved_posts_recent,priority:1"`
	PostID    string    `json:"post_id" gorm:"primaryKey;size:24;index"`
	CreatedAt time.Time `json:"saved_at" gorm:"index:idx_saved_posts_recent,priority:2,sort:desc"`
}
