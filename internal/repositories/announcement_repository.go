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

// AnnouncementRepository defines the interface for admin broadcasts
type AnnouncementRepository interface {
	CreateAnnouncement(ctx context.Context, a *models.Announcement) error
	GetAnnouncementByID(ctx context.Context, id string) (*models.Announcement, error)
	ListAnnouncements(ctx context.Context, skip, limit int64) ([]models.Announcement, int64, error)
	SetRecipientCount(ctx context.Context, id primitive.ObjectID, count int) error
}

// MongoAnnouncementRepository implements AnnouncementRepository for MongoDB
type MongoAnnouncementRepository struct {
	collection *mongo.Collection
}

func NewMongoAnnouncementRepository(db *mongo.Database) *MongoAnnouncementRepository {
	return &MongoAnnouncementRepository{collection: db.Collection("announcements")}
}

func (r *MongoAnnouncementRepository) CreateAnnouncement(ctx context.Context, a *models.Announcement) error {
	a.ID = primitive.NewObjectID()
	a.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, a)
	return err
}

func (r *MongoAnnouncementRepository) GetAnnouncementByID(ctx context.Context, id string) (*models.Announcement, error) {
	objID, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var a models.Announcement
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&a); err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *MongoAnnouncementRepository) ListAnnouncements(ctx context.Context, skip, limit int64) ([]models.Announcement, int64, error) {
	total, err := r.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	announcements := []models.Announcement{}
	if err = cursor.All(ctx, &announcements); err != nil {
		return nil, 0, err
	}
	return announcements, total, nil
}

func (r *MongoAnnouncementRepository) SetRecipientCount(ctx context.Context, id primitive.ObjectID, count int) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"recipient_count": count}})
	return err
}
