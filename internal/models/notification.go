package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationLike          NotificationType = "like"
	NotificationComment       NotificationType = "comment"
	NotificationFollowRequest NotificationType = "follow_request"
	NotificationFollowAccept  NotificationType = "follow_accept"
	NotificationMessage       NotificationType = "message"
	NotificationAnnouncement  NotificationType = "announcement"
)

// RequestEvent is something that happens to a pending follow request
type RequestEvent string

const (
	RequestAccepted RequestEvent = "accepted"
	RequestRemoved  RequestEvent = "removed"
)

// Transition is the follow-request notification state machine.
// follow_request --accepted--> follow_accept, follow_request --removed--> deleted.
// ok is false for every other pair.
func (t NotificationType) Transition(ev RequestEvent) (next NotificationType, deleted bool, ok bool) {
	if t != NotificationFollowRequest {
		return t, false, false
	}
	switch ev {
	case RequestAccepted:
		return NotificationFollowAccept, false, true
	case RequestRemoved:
		return "", true, true
	}
	return t, false, false
}

// Notification is a per-recipient record (MongoDB)
type Notification struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	RecipientID uint               `json:"recipient_id" bson:"recipient_id"`
	SenderID    uint               `json:"sender_id,omitempty" bson:"sender_id,omitempty"`
	Type        NotificationType   `json:"type" bson:"type"`
	Message     string             `json:"message" bson:"message"`
	Preview     string             `json:"preview,omitempty" bson:"preview,omitempty"`
	ReferenceID string             `json:"reference_id,omitempty" bson:"reference_id,omitempty"`
	Read        bool               `json:"read" bson:"read"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}
