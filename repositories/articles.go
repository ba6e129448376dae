package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"news-hub/config"
	"news-hub/models"
)

type ArticleRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewArticleRepository(db *mongo.Database) *ArticleRepository {
	return &ArticleRepository{col: db.Collection("articles"), now: time.Now}
}

// listProjection keeps the card fields; the long texts are only served by FindByID.
var listProjection = bson.M{
	"_id":           1,
	"title":         1,
	"quickSummary":  1,
	"coverImage":    1,
	"publisherName": 1,
	"publisherLogo": 1,
	"authorName":    1,
	"datePosted":    1,
	"category":      1,
	"sourceUrl":     1,
}

// Upsert writes every article keyed by its content identifier. A failing item
// is counted and skipped; the joined error is returned with the partial result.
func (r *ArticleRepository) Upsert(ctx context.Context, articles []models.Article) (UpsertResult, error) {
	var (
		res  UpsertResult
		errs []error
	)
	now := r.now().UTC().Truncate(time.Millisecond)

	for i, in := range articles {
		if err := ctx.Err(); err != nil {
			res.Failed += len(articles) - i
			errs = append(errs, err)
			break
		}

		a := PrepareArticle(in, now)
		filter := bson.M{"_id": a.ID}
		update := bson.M{
			"$setOnInsert": bson.M{
				"createdAt": now,
			},
			"$set": bson.M{
				"title":           a.Title,
				"coverImage":      a.CoverImage,
				"publisherName":   a.PublisherName,
				"publisherLogo":   a.PublisherLogo,
				"authorName":      a.AuthorName,
				"sourceUrl":       a.SourceURL,
				"originalContent": a.OriginalContent,
				"category":        a.Category,
				"quickSummary":    a.QuickSummary,
				"detailedSummary": a.DetailedSummary,
				"whyItMatters":    a.WhyItMatters,
				"datePosted":      a.DatePosted,
				"updatedAt":       a.UpdatedAt,
			},
		}
		ur, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
		if err != nil {
			res.Failed++
			errs = append(errs, fmt.Errorf("article %s: %w", a.ID, err))
			config.ErrorWithFields("article upsert failed", config.Fields{
				"article_id": a.ID,
				"source_url": a.SourceURL,
				"error":      err.Error(),
			})
			continue
		}
		if ur.UpsertedCount > 0 {
			res.Created++
		} else {
			res.Updated++
		}
	}
	return res, errors.Join(errs...)
}

// List returns articles sorted by datePosted desc with card fields only.
func (r *ArticleRepository) List(ctx context.Context, opt ListArticlesOptions) ([]models.Article, int64, error) {
	opt = opt.Normalize()

	filter := bson.M{}
	if opt.Category != "" {
		filter["category"] = primitive.Regex{Pattern: regexp.QuoteMeta(opt.Category), Options: "i"}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOpts := options.Find().
		SetProjection(listProjection).
		SetSkip(int64(opt.Skip())).
		SetLimit(int64(opt.Limit)).
		SetSort(bson.D{
			{Key: "datePosted", Value: -1},
			{Key: "_id", Value: -1},
		})
	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	results := make([]models.Article, 0, opt.Limit)
	for cur.Next(ctx) {
		var a models.Article
		if err := cur.Decode(&a); err != nil {
			return nil, 0, err
		}
		results = append(results, a)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *ArticleRepository) FindByID(ctx context.Context, id string) (*models.Article, error) {
	var a models.Article
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

var _ ArticleStore = (*ArticleRepository)(nil)
