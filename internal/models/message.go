package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a direct message between two friends
type Message struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	SenderID    uint               `json:"sender_id" bson:"sender_id"`
	RecipientID uint               `json:"recipient_id" bson:"recipient_id"`
	Text        string             `json:"text" bson:"text"`
	Read        bool               `json:"read" bson:"read"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}

// ConversationSummary is the latest message exchanged with one peer
type ConversationSummary struct {
	Peer        UserSummary `json:"peer"`
	LastMessage Message     `json:"last_message"`
	Unread      int64       `json:"unread"`
}

type SendMessageRequest struct {
	Text string `json:"text" validate:"required,min=1,max=2000"`
}
