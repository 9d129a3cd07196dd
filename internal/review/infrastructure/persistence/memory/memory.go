// Package memory 评论仓储的内存实现
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/wyfcoding/smarthome/internal/review/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReviewRepository 内存评论仓储，排序规则与 MongoDB 实现一致
type ReviewRepository struct {
	mu      sync.Mutex
	reviews []domain.Review
}

// NewReviewRepository 创建内存评论仓储
func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{}
}

func (r *ReviewRepository) Insert(_ context.Context, review *domain.Review) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	review.ID = primitive.NewObjectID()
	r.reviews = append(r.reviews, *review)
	return review.ID.Hex(), nil
}

func (r *ReviewRepository) List(_ context.Context) ([]*domain.Review, error) {
	return r.sorted(func(domain.Review) bool { return true }, byNewest), nil
}

func (r *ReviewRepository) ListByProduct(_ context.Context, name string) ([]*domain.Review, error) {
	return r.sorted(func(rv domain.Review) bool { return rv.ProductModelName == name }, byNewest), nil
}

func (r *ReviewRepository) TopRated(_ context.Context, limit int) ([]*domain.Review, error) {
	out := r.sorted(func(domain.Review) bool { return true }, func(a, b *domain.Review) bool {
		if a.ReviewRating != b.ReviewRating {
			return a.ReviewRating > b.ReviewRating
		}
		return byNewest(a, b)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func byNewest(a, b *domain.Review) bool { return a.Timestamp.After(b.Timestamp) }

func (r *ReviewRepository) sorted(keep func(domain.Review) bool, less func(a, b *domain.Review) bool) []*domain.Review {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Review, 0, len(r.reviews))
	for _, rv := range r.reviews {
		if keep(rv) {
			rv := rv
			out = append(out, &rv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
