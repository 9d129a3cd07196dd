// Package application 商品评论服务
package application

import (
	"context"
	"strings"
	"time"

	"github.com/wyfcoding/smarthome/internal/review/domain"
	"github.com/wyfcoding/smarthome/pkg/apperror"
	"github.com/wyfcoding/smarthome/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const topLikedLimit = 5

// ReviewService 评论服务
type ReviewService struct {
	repo domain.ReviewRepository
	now  func() time.Time
}

// NewReviewService 创建评论服务
func NewReviewService(repo domain.ReviewRepository) *ReviewService {
	return &ReviewService{repo: repo, now: time.Now}
}

// SubmitReview 保存评论，时间戳由服务端设置
func (s *ReviewService) SubmitReview(ctx context.Context, review *domain.Review) (string, error) {
	if err := review.Validate(); err != nil {
		return "", err
	}
	review.ID = primitive.NilObjectID
	review.Timestamp = s.now().UTC()

	id, err := s.repo.Insert(ctx, review)
	if err != nil {
		return "", apperror.Internal(err, "failed to save review")
	}
	logger.Info(ctx, "Review submitted", "review_id", id, "product", review.ProductModelName, "rating", review.ReviewRating)
	return id, nil
}

// ListReviews 全部评论
func (s *ReviewService) ListReviews(ctx context.Context) ([]*domain.Review, error) {
	reviews, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load reviews")
	}
	return reviews, nil
}

// ListReviewsByProduct 按商品名称查询
func (s *ReviewService) ListReviewsByProduct(ctx context.Context, productModelName string) ([]*domain.Review, error) {
	name := strings.TrimSpace(productModelName)
	if name == "" {
		return nil, apperror.Validation("product name is required")
	}
	reviews, err := s.repo.ListByProduct(ctx, name)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load reviews")
	}
	return reviews, nil
}

// TopLikedProducts 评分最高的五条评论
func (s *ReviewService) TopLikedProducts(ctx context.Context) ([]*domain.Review, error) {
	reviews, err := s.repo.TopRated(ctx, topLikedLimit)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load top rated reviews")
	}
	return reviews, nil
}
