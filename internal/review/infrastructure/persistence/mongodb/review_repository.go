// Package mongodb 评论仓储的 MongoDB 实现
package mongodb

import (
	"context"
	"fmt"

	"github.com/wyfcoding/smarthome/internal/review/domain"
	"github.com/wyfcoding/smarthome/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultCollection 未配置时使用的评论集合
const DefaultCollection = "product_reviews"

type reviewRepository struct {
	coll *mongo.Collection
}

// NewReviewRepository 创建评论仓储，collection 为空时使用默认集合
func NewReviewRepository(db *mongo.Database, collection string) domain.ReviewRepository {
	return &reviewRepository{coll: db.Collection(collectionName(collection))}
}

func collectionName(name string) string {
	if name == "" {
		return DefaultCollection
	}
	return name
}

// EnsureIndexes 创建按商品名查询与排行所需的索引
func EnsureIndexes(ctx context.Context, db *mongo.Database, collection string) error {
	_, err := db.Collection(collectionName(collection)).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "ProductModelName", Value: 1}}},
		{Keys: bson.D{{Key: "ReviewRating", Value: -1}, {Key: "timestamp", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create review indexes: %w", err)
	}
	return nil
}

func (r *reviewRepository) Insert(ctx context.Context, review *domain.Review) (string, error) {
	res, err := r.coll.InsertOne(ctx, review)
	if err != nil {
		logger.Error(ctx, "review_repository.insert failed", "product", review.ProductModelName, "error", err)
		return "", fmt.Errorf("failed to insert review: %w", err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Sprint(res.InsertedID), nil
	}
	review.ID = id
	return id.Hex(), nil
}

func (r *reviewRepository) List(ctx context.Context) ([]*domain.Review, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}))
}

func (r *reviewRepository) ListByProduct(ctx context.Context, productModelName string) ([]*domain.Review, error) {
	return r.find(ctx, bson.M{"ProductModelName": productModelName},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}))
}

func (r *reviewRepository) TopRated(ctx context.Context, limit int) ([]*domain.Review, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "ReviewRating", Value: -1}, {Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, bson.M{}, opts)
}

func (r *reviewRepository) find(ctx context.Context, filter any, opts *options.FindOptions) ([]*domain.Review, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := make([]*domain.Review, 0)
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, nil
}
