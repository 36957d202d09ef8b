package repositories

import (
	"context"
	"time"

	"github.com/campusnet/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConversationHead is the newest message exchanged with one peer
type ConversationHead struct {
	PeerID      uint           `bson:"_id"`
	LastMessage models.Message `bson:"last_message"`
	Unread      int64          `bson:"unread"`
}

// MessageRepository defines the interface for direct messages
type MessageRepository interface {
	CreateMessage(ctx context.Context, m *models.Message) error
	GetConversation(ctx context.Context, a, b uint, skip, limit int64) ([]models.Message, int64, error)
	GetConversationHeads(ctx context.Context, userID uint) ([]ConversationHead, error)
	MarkConversationRead(ctx context.Context, readerID, peerID uint) (int64, error)
}

// MongoMessageRepository implements MessageRepository for MongoDB
type MongoMessageRepository struct {
	collection *mongo.Collection
}

func NewMongoMessageRepository(db *mongo.Database) *MongoMessageRepository {
	return &MongoMessageRepository{collection: db.Collection("messages")}
}

func (r *MongoMessageRepository) CreateMessage(ctx context.Context, m *models.Message) error {
	m.ID = primitive.NewObjectID()
	m.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, m)
	return err
}

func pairFilter(a, b uint) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"sender_id": a, "recipient_id": b},
		bson.M{"sender_id": b, "recipient_id": a},
	}}
}

// GetConversation pages the thread between a and b, newest first
func (r *MongoMessageRepository) GetConversation(ctx context.Context, a, b uint, skip, limit int64) ([]models.Message, int64, error) {
	filter := pairFilter(a, b)
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSkip(skip).SetLimit(limit).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

// GetConversationHeads groups userID's messages by peer and keeps the newest one
func (r *MongoMessageRepository) GetConversationHeads(ctx context.Context, userID uint) ([]ConversationHead, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"sender_id": userID},
			bson.M{"recipient_id": userID},
		}}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$sender_id", userID}},
				"$recipient_id",
				"$sender_id",
			}},
			"last_message": bson.M{"$first": "$$ROOT"},
			"unread": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$recipient_id", userID}},
					bson.M{"$eq": bson.A{"$read", false}},
				}},
				1,
				0,
			}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "last_message.created_at", Value: -1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	heads := []ConversationHead{}
	if err = cursor.All(ctx, &heads); err != nil {
		return nil, err
	}
	return heads, nil
}

func (r *MongoMessageRepository) MarkConversationRead(ctx context.Context, readerID, peerID uint) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"sender_id": peerID, "recipient_id": readerID, "read": false},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
