package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"news-hub/config"
)

const (
	CollectionArticles = "articles"
	CollectionChats    = "chats"
	CollectionAILogs   = "ai_logs"

	collectionChecks = "connection_checks"
)

// Mongo owns the client lifecycle. Callers Connect once at startup and Close on shutdown.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Connect dials the server, pings the primary and ensures indexes.
func Connect(ctx context.Context, cfg config.MongoConfig) (*Mongo, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cl, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := cl.Ping(ctx, readpref.Primary()); err != nil {
		_ = cl.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	m := &Mongo{Client: cl, DB: cl.Database(cfg.Database)}
	if err := EnsureIndexes(ctx, m.DB); err != nil {
		_ = cl.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo indexes: %w", err)
	}
	config.InfoWithFields("MongoDB connected and indexes ensured", config.Fields{"database": cfg.Database})
	return m, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	if m == nil || m.Client == nil {
		return nil
	}
	return m.Client.Disconnect(ctx)
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}

// RoundTrip writes, reads back and deletes a probe document.
func (m *Mongo) RoundTrip(ctx context.Context) error {
	col := m.DB.Collection(collectionChecks)
	id := "__test_connection__"
	if _, err := col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": "ok", "checkedAt": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	); err != nil {
		return fmt.Errorf("write probe: %w", err)
	}
	var got struct {
		Status string `bson:"status"`
	}
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&got); err != nil {
		return fmt.Errorf("read probe: %w", err)
	}
	if _, err := col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete probe: %w", err)
	}
	if got.Status != "ok" {
		return fmt.Errorf("probe mismatch: status=%q", got.Status)
	}
	return nil
}

func articleIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "datePosted", Value: -1}},
			Options: options.Index().SetName("category_date"),
		},
		{
			Keys:    bson.D{{Key: "sourceUrl", Value: 1}},
			Options: options.Index().SetName("sourceUrl_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "datePosted", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("datePosted_desc"),
		},
		{
			Keys:    bson.D{{Key: "publisherName", Value: 1}},
			Options: options.Index().SetName("publisherName_asc"),
		},
	}
}

func chatIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sessionId", Value: 1}},
			Options: options.Index().SetName("sessionId_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "sessionId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("session_created"),
		},
		{
			Keys:    bson.D{{Key: "articleId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("article_created"),
		},
	}
}

func aiLogIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "requestedAt", Value: -1}},
			Options: options.Index().SetName("idx_requested_at_desc"),
		},
		{
			Keys:    bson.D{{Key: "purpose", Value: 1}, {Key: "requestedAt", Value: -1}},
			Options: options.Index().SetName("idx_purpose_requested_at"),
		},
		{
			Keys:    bson.D{{Key: "requestId", Value: 1}},
			Options: options.Index().SetName("idx_request_id"),
		},
	}
}

// EnsureIndexes creates the indexes of every collection. Existing indexes with
// the same definition are left alone by the server.
func EnsureIndexes(ctx context.Context, d *mongo.Database) error {
	for name, models := range map[string][]mongo.IndexModel{
		CollectionArticles: articleIndexes(),
		CollectionChats:    chatIndexes(),
		CollectionAILogs:   aiLogIndexes(),
	} {
		if _, err := d.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
