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

// ReportRepository defines the interface for moderation reports
type ReportRepository interface {
	CreateReport(ctx context.Context, rep *models.Report) error
	GetReportByID(ctx context.Context, id string) (*models.Report, error)
	HasPending(ctx context.Context, reporterID uint, target models.ReportTarget, targetID string) (bool, error)
	ListReports(ctx context.Context, status models.ReportStatus, skip, limit int64) ([]models.Report, int64, error)
	UpdateStatus(ctx context.Context, id string, from, to models.ReportStatus, adminID uint) error
	ResolveForTarget(ctx context.Context, target models.ReportTarget, targetID string, adminID uint) (int64, error)
	CountPending(ctx context.Context) (int64, error)
}

// MongoReportRepository implements ReportRepository for MongoDB
type MongoReportRepository struct {
	collection *mongo.Collection
}

func NewMongoReportRepository(db *mongo.Database) *MongoReportRepository {
	return &MongoReportRepository{collection: db.Collection("reports")}
}

func (r *MongoReportRepository) CreateReport(ctx context.Context, rep *models.Report) error {
	now := time.Now()
	rep.ID = primitive.NewObjectID()
	rep.CreatedAt = now
	rep.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, rep)
	return translate(err)
}

func (r *MongoReportRepository) GetReportByID(ctx context.Context, id string) (*models.Report, error) {
	objID, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var rep models.Report
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&rep); err != nil {
		return nil, translate(err)
	}
	return &rep, nil
}

func (r *MongoReportRepository) HasPending(ctx context.Context, reporterID uint, target models.ReportTarget, targetID string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{
		"reporter_id": reporterID,
		"target_type": target,
		"target_id":   targetID,
		"status":      models.ReportPending,
	})
	return n > 0, err
}

// ListReports filters by status unless it is empty
func (r *MongoReportRepository) ListReports(ctx context.Context, status models.ReportStatus, skip, limit int64) ([]models.Report, int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	reports := []models.Report{}
	if err = cursor.All(ctx, &reports); err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// UpdateStatus only applies while the report is still in status from
func (r *MongoReportRepository) UpdateStatus(ctx context.Context, id string, from, to models.ReportStatus, adminID uint) error {
	objID, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "status": from},
		bson.M{"$set": bson.M{"status": to, "resolved_by": adminID, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ResolveForTarget closes every open report about a target
func (r *MongoReportRepository) ResolveForTarget(ctx context.Context, target models.ReportTarget, targetID string, adminID uint) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{
			"target_type": target,
			"target_id":   targetID,
			"status":      bson.M{"$in": bson.A{models.ReportPending, models.ReportReviewed}},
		},
		bson.M{"$set": bson.M{"status": models.ReportResolved, "resolved_by": adminID, "updated_at": time.Now()}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *MongoReportRepository) CountPending(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"status": models.ReportPending})
}
