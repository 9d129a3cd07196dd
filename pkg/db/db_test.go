package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTxContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	_, ok := TxFromContext(ctx)
	assert.False(t, ok)

	tx := &gorm.DB{}
	got, ok := TxFromContext(WithTxContext(ctx, tx))
	assert.True(t, ok)
	assert.Same(t, tx, got)
}

func TestErrorClassifiers(t *testing.T) {
	assert.True(t, IsDuplicateKey(fmt.Errorf("insert order: %w", gorm.ErrDuplicatedKey)))
	assert.False(t, IsDuplicateKey(errors.New("boom")))
	assert.True(t, IsNotFound(fmt.Errorf("find: %w", gorm.ErrRecordNotFound)))
	assert.False(t, IsNotFound(gorm.ErrDuplicatedKey))
}
