package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"news-hub/models"
)

// AILogRepository appends model call records to ai_logs.
type AILogRepository struct {
	col *mongo.Collection
}

func NewAILogRepository(db *mongo.Database) *AILogRepository {
	return &AILogRepository{col: db.Collection("ai_logs")}
}

func (r *AILogRepository) Insert(ctx context.Context, log models.AILog) error {
	if log.RequestedAt.IsZero() {
		log.RequestedAt = time.Now().UTC()
	}
	if _, err := r.col.InsertOne(ctx, log); err != nil {
		return fmt.Errorf("insert ai log: %w", err)
	}
	return nil
}

// ByRequest returns the calls made while serving one request, oldest first.
func (r *AILogRepository) ByRequest(ctx context.Context, requestID string) ([]models.AILog, error) {
	cur, err := r.col.Find(ctx, bson.M{"requestId": requestID}, options.Find().SetSort(bson.D{{Key: "requestedAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find ai logs: %w", err)
	}
	defer cur.Close(ctx)
	out := []models.AILog{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode ai logs: %w", err)
	}
	return out, nil
}
