package repositories

import (
	"context"
	"time"

	"github.com/campusnet/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StoryRepository defines the interface for story operations.
// Stories live in MongoDB, view receipts in PostgreSQL.
type StoryRepository interface {
	CreateStory(ctx context.Context, story *models.Story) error
	GetStoryByID(ctx context.Context, id string) (*models.Story, error)
	GetActiveByAuthors(ctx context.Context, authorIDs []uint) ([]models.Story, error)
	DeleteStory(ctx context.Context, id string, authorID uint) error
	DeleteExpiredStories(ctx context.Context) (int64, error)
	MarkSeen(ctx context.Context, storyID string, viewerID uint) error
	GetSeenStoryIDs(ctx context.Context, viewerID uint, storyIDs []string) (map[string]bool, error)
}

type storyRepository struct {
	mongoCollection *mongo.Collection
	pgDB            *gorm.DB
}

func NewStoryRepository(mongoDB *mongo.Database, pgDB *gorm.DB) StoryRepository {
	return &storyRepository{
		mongoCollection: mongoDB.Collection("stories"),
		pgDB:            pgDB,
	}
}

func (r *storyRepository) CreateStory(ctx context.Context, story *models.Story) error {
	story.ID = primitive.NewObjectID()
	story.CreatedAt = time.Now()
	story.ExpiresAt = story.CreatedAt.Add(models.StoryLifetime)
	_, err := r.mongoCollection.InsertOne(ctx, story)
	return err
}

func (r *storyRepository) GetStoryByID(ctx context.Context, id string) (*models.Story, error) {
	objID, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var story models.Story
	if err := r.mongoCollection.FindOne(ctx, bson.M{"_id": objID}).Decode(&story); err != nil {
		return nil, translate(err)
	}
	return &story, nil
}

func (r *storyRepository) GetActiveByAuthors(ctx context.Context, authorIDs []uint) ([]models.Story, error) {
	stories := []models.Story{}
	if len(authorIDs) == 0 {
		return stories, nil
	}
	filter := bson.M{
		"author_id":  bson.M{"$in": authorIDs},
		"expires_at": bson.M{"$gt": time.Now()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.mongoCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

// DeleteStory only removes the story if authorID owns it
func (r *storyRepository) DeleteStory(ctx context.Context, id string, authorID uint) error {
	objID, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.mongoCollection.DeleteOne(ctx, bson.M{"_id": objID, "author_id": authorID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return r.pgDB.WithContext(ctx).Where("story_id = ?", id).Delete(&models.StoryView{}).Error
}

func (r *storyRepository) DeleteExpiredStories(ctx context.Context) (int64, error) {
	res, err := r.mongoCollection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": time.Now()}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *storyRepository) MarkSeen(ctx context.Context, storyID string, viewerID uint) error {
	view := &models.StoryView{StoryID: storyID, ViewerID: viewerID, ViewedAt: time.Now()}
	return r.pgDB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(view).Error
}

func (r *storyRepository) GetSeenStoryIDs(ctx context.Context, viewerID uint, storyIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(storyIDs) == 0 {
		return result, nil
	}
	var seen []models.StoryView
	err := r.pgDB.WithContext(ctx).Where("viewer_id = ? AND story_id IN ?", viewerID, storyIDs).Find(&seen).Error
	if err != nil {
		return nil, err
	}
	for _, s := range seen {
		result[s.StoryID] = true
	}
	return result, nil
}
