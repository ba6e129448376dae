package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"news-hub/models"
)

type ChatRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewChatRepository(db *mongo.Database) *ChatRepository {
	return &ChatRepository{col: db.Collection("chats"), now: time.Now}
}

// AppendMessage pushes msg onto the session, creating the session on first use.
// One upsert per call, so concurrent appends to a session never lose messages.
func (r *ChatRepository) AppendMessage(ctx context.Context, sessionID, articleID, articleTitle string, msg models.Message) error {
	now := r.now().UTC().Truncate(time.Millisecond)
	msg = DefaultMessage(msg, uuid.NewString, now)

	filter := bson.M{"sessionId": sessionID}
	update := bson.M{
		"$push": bson.M{"messages": msg},
		"$set": bson.M{
			"updatedAt":    now,
			"articleTitle": articleTitle,
			"articleId":    articleID,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.Update().SetUpsert(true)

	_, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		// 동시에 첫 메시지가 들어온 경우: 다른 쪽이 세션을 만들었으므로 한 번 더 시도하면 update 로 처리된다.
		_, err = r.col.UpdateOne(ctx, filter, update, opts)
	}
	return err
}

// GetHistory returns the messages of a session in append order, empty when
// the session does not exist.
func (r *ChatRepository) GetHistory(ctx context.Context, sessionID string) ([]models.Message, error) {
	s, err := r.FindSession(ctx, sessionID)
	if errors.Is(err, ErrNotFound) {
		return []models.Message{}, nil
	}
	if err != nil {
		return nil, err
	}
	if s.Messages == nil {
		return []models.Message{}, nil
	}
	return s.Messages, nil
}

func (r *ChatRepository) FindSession(ctx context.Context, sessionID string) (*models.ChatSession, error) {
	var s models.ChatSession
	if err := r.col.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

var _ ChatStore = (*ChatRepository)(nil)
