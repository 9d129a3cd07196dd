package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(0, 0, 45)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PageSize)
	assert.Equal(t, int64(3), p.Pages)
	assert.Equal(t, 0, p.Offset())

	p = NewPagination(3, 10, 45)
	assert.Equal(t, 20, p.Offset())
	assert.Equal(t, 10, p.Limit())
	assert.Equal(t, 1000, NewPagination(1, 5000, 0).PageSize)
}

func TestRetryWithBackoff(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), 3, time.Millisecond, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = RetryWithBackoff(context.Background(), 2, time.Millisecond, time.Millisecond, func() error {
		calls++
		return errors.New("always")
	})
	assert.EqualError(t, err, "always")
	assert.Equal(t, 2, calls)
}

func TestRetryWithBackoffCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RetryWithBackoff(ctx, 5, time.Second, time.Second, func() error { return errors.New("x") })
	assert.ErrorIs(t, err, context.Canceled)
}
