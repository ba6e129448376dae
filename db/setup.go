package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"news-hub/models"
)

// ArticlesValidator is the $jsonSchema enforced on the articles collection.
// sourceUrl is not pattern-checked because "#" is a legal placeholder.
func ArticlesValidator() bson.M {
	categories := make(bson.A, 0, len(models.Categories))
	for _, c := range models.Categories {
		categories = append(categories, string(c))
	}
	str := bson.M{"bsonType": "string"}
	date := bson.M{"bsonType": "date"}
	return bson.M{"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": bson.A{
			"title", "coverImage", "publisherName", "publisherLogo", "authorName",
			"datePosted", "quickSummary", "sourceUrl", "category",
		},
		"properties": bson.M{
			"title":           str,
			"coverImage":      str,
			"publisherName":   str,
			"publisherLogo":   str,
			"authorName":      str,
			"datePosted":      date,
			"quickSummary":    str,
			"detailedSummary": str,
			"whyItMatters":    str,
			"sourceUrl":       str,
			"originalContent": str,
			"category":        bson.M{"bsonType": "string", "enum": categories},
			"createdAt":       date,
			"updatedAt":       date,
		},
	}}
}

// ChatsValidator is the $jsonSchema enforced on the chats collection.
func ChatsValidator() bson.M {
	return bson.M{"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": bson.A{"sessionId", "articleId", "messages", "articleTitle", "createdAt"},
		"properties": bson.M{
			"sessionId":    bson.M{"bsonType": "string"},
			"articleId":    bson.M{"bsonType": "string"},
			"articleTitle": bson.M{"bsonType": "string"},
			"messages": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": bson.A{"id", "text", "isUser", "timestamp"},
					"properties": bson.M{
						"id":        bson.M{"bsonType": "string"},
						"text":      bson.M{"bsonType": "string"},
						"isUser":    bson.M{"bsonType": "bool"},
						"timestamp": bson.M{"bsonType": "date"},
					},
				},
			},
			"createdAt": bson.M{"bsonType": "date"},
			"updatedAt": bson.M{"bsonType": "date"},
		},
	}}
}

// CollectionSetup reports what SetupCollections did for one collection.
type CollectionSetup struct {
	Name     string
	Created  bool
	Required []string
	Indexes  []string
}

// SetupCollections creates articles/chats with their validators, or applies
// the validators with collMod when the collection already exists. Data is kept.
func SetupCollections(ctx context.Context, d *mongo.Database) ([]CollectionSetup, error) {
	existing, err := d.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	exists := make(map[string]bool, len(existing))
	for _, n := range existing {
		exists[n] = true
	}

	specs := []struct {
		name      string
		validator bson.M
	}{
		{CollectionArticles, ArticlesValidator()},
		{CollectionChats, ChatsValidator()},
	}

	var out []CollectionSetup
	for _, s := range specs {
		res := CollectionSetup{Name: s.name}
		if exists[s.name] {
			cmd := bson.D{
				{Key: "collMod", Value: s.name},
				{Key: "validator", Value: s.validator},
				{Key: "validationLevel", Value: "moderate"},
			}
			if err := d.RunCommand(ctx, cmd).Err(); err != nil {
				return out, fmt.Errorf("collMod %s: %w", s.name, err)
			}
		} else {
			if err := d.CreateCollection(ctx, s.name, options.CreateCollection().SetValidator(s.validator)); err != nil {
				return out, fmt.Errorf("create %s: %w", s.name, err)
			}
			res.Created = true
		}
		out = append(out, res)
	}

	if err := EnsureIndexes(ctx, d); err != nil {
		return out, err
	}

	for i := range out {
		if err := describe(ctx, d, &out[i]); err != nil {
			return out, err
		}
	}
	return out, nil
}

func describe(ctx context.Context, d *mongo.Database, res *CollectionSetup) error {
	specs, err := d.Collection(res.Name).Indexes().ListSpecifications(ctx)
	if err != nil {
		return fmt.Errorf("list indexes %s: %w", res.Name, err)
	}
	for _, s := range specs {
		name := s.Name
		if s.Unique != nil && *s.Unique {
			name += " (unique)"
		}
		res.Indexes = append(res.Indexes, name)
	}

	cur, err := d.ListCollections(ctx, bson.M{"name": res.Name})
	if err != nil {
		return fmt.Errorf("list collection %s: %w", res.Name, err)
	}
	defer cur.Close(ctx)
	if cur.Next(ctx) {
		var info struct {
			Options struct {
				Validator struct {
					JSONSchema struct {
						Required []string `bson:"required"`
					} `bson:"$jsonSchema"`
				} `bson:"validator"`
			} `bson:"options"`
		}
		if err := cur.Decode(&info); err != nil {
			return fmt.Errorf("decode collection info %s: %w", res.Name, err)
		}
		res.Required = info.Options.Validator.JSONSchema.Required
	}
	return cur.Err()
}
