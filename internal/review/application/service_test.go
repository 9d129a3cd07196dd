package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/smarthome/internal/review/domain"
	"github.com/wyfcoding/smarthome/internal/review/infrastructure/persistence/memory"
	"github.com/wyfcoding/smarthome/pkg/apperror"
)

func newService() *ReviewService {
	svc := NewReviewService(memory.NewReviewRepository())
	clock := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return svc
}

func TestSubmitReview(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	client := time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	r := &domain.Review{ProductModelName: " Sonos One ", ReviewRating: 5, ReviewText: "Great sound", Timestamp: client}
	id, err := svc.SubmitReview(ctx, r)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, "Sonos One", r.ProductModelName)
	assert.NotEqual(t, client, r.Timestamp, "timestamp is set server-side")

	for name, bad := range map[string]*domain.Review{
		"missing product": {ReviewRating: 3},
		"rating too low":  {ProductModelName: "Sonos One", ReviewRating: 0},
		"rating too high": {ProductModelName: "Sonos One", ReviewRating: 6},
	} {
		_, err := svc.SubmitReview(ctx, bad)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err), name)
	}

	all, err := svc.ListReviews(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestListReviewsByProduct(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	for _, r := range []domain.Review{
		{ProductModelName: "Wyze Bulb", ReviewRating: 4},
		{ProductModelName: "Sonos One", ReviewRating: 5},
		{ProductModelName: "Wyze Bulb", ReviewRating: 2},
	} {
		r := r
		_, err := svc.SubmitReview(ctx, &r)
		require.NoError(t, err)
	}

	got, err := svc.ListReviewsByProduct(ctx, "Wyze Bulb")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].ReviewRating, "newest first")

	none, err := svc.ListReviewsByProduct(ctx, "Echo")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = svc.ListReviewsByProduct(ctx, " ")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestTopLikedProducts(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	ratings := []int{3, 5, 4, 5, 1, 4, 5}
	for i, rating := range ratings {
		_, err := svc.SubmitReview(ctx, &domain.Review{ProductModelName: "P" + string(rune('A'+i)), ReviewRating: rating})
		require.NoError(t, err)
	}

	top, err := svc.TopLikedProducts(ctx)
	require.NoError(t, err)
	require.Len(t, top, 5)

	names := make([]string, len(top))
	for i, r := range top {
		names[i] = r.ProductModelName
	}
	// 同为 5 分时较新的在前
	assert.Equal(t, []string{"PG", "PD", "PB", "PF", "PC"}, names)
}
