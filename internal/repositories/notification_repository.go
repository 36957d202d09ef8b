package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/campusnet/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	CreateMany(ctx context.Context, ns []models.Notification) (int, error)
	GetByRecipientID(ctx context.Context, recipientID uint, skip, limit int64) ([]models.Notification, int64, error)
	GetUnreadCount(ctx context.Context, recipientID uint) (int64, error)
	MarkAsRead(ctx context.Context, id string, recipientID uint) error
	MarkAllAsRead(ctx context.Context, recipientID uint) (int64, error)
	FindFollowRequest(ctx context.Context, senderID, recipientID uint) (*models.Notification, error)
	UpdateType(ctx context.Context, id primitive.ObjectID, from, to models.NotificationType, message string) error
	Delete(ctx context.Context, id string, recipientID uint) error
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
	DeleteByReference(ctx context.Context, t models.NotificationType, referenceID string) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection("notifications")}
}

func (r *MongoNotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	now := time.Now()
	n.ID = primitive.NewObjectID()
	n.CreatedAt = now
	n.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, n)
	return err
}

// CreateMany inserts all records in one round trip and returns how many landed
func (r *MongoNotificationRepository) CreateMany(ctx context.Context, ns []models.Notification) (int, error) {
	if len(ns) == 0 {
		return 0, nil
	}
	now := time.Now()
	docs := make([]interface{}, len(ns))
	for i := range ns {
		ns[i].ID = primitive.NewObjectID()
		ns[i].CreatedAt = now
		ns[i].UpdatedAt = now
		docs[i] = ns[i]
	}
	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err == nil {
		return len(docs), nil
	}
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) && bwe.WriteConcernError == nil {
		return len(docs) - len(bwe.WriteErrors), err
	}
	return 0, err
}

func (r *MongoNotificationRepository) GetByRecipientID(ctx context.Context, recipientID uint, skip, limit int64) ([]models.Notification, int64, error) {
	filter := bson.M{"recipient_id": recipientID}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSkip(skip).SetLimit(limit).
		SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (r *MongoNotificationRepository) GetUnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"recipient_id": recipientID, "read": false})
}

// MarkAsRead is scoped to the recipient; marking twice is not an error
func (r *MongoNotificationRepository) MarkAsRead(ctx context.Context, id string, recipientID uint) error {
	objID, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "recipient_id": recipientID},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID uint) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"recipient_id": recipientID, "read": false},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// FindFollowRequest returns the newest follow_request record for the pair
func (r *MongoNotificationRepository) FindFollowRequest(ctx context.Context, senderID, recipientID uint) (*models.Notification, error) {
	filter := bson.M{
		"sender_id":    senderID,
		"recipient_id": recipientID,
		"type":         models.NotificationFollowRequest,
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var n models.Notification
	if err := r.collection.FindOne(ctx, filter, opts).Decode(&n); err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

// UpdateType moves a record from one type to another in place. The filter
// pins the current type, so a concurrent transition makes this ErrNotFound.
func (r *MongoNotificationRepository) UpdateType(ctx context.Context, id primitive.ObjectID, from, to models.NotificationType, message string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "type": from},
		bson.M{"$set": bson.M{
			"type":       to,
			"message":    message,
			"read":       false,
			"updated_at": time.Now(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoNotificationRepository) Delete(ctx context.Context, id string, recipientID uint) error {
	objID, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID, "recipient_id": recipientID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoNotificationRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoNotificationRepository) DeleteByReference(ctx context.Context, t models.NotificationType, referenceID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"type": t, "reference_id": referenceID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoNotificationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
