package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/smarthome/internal/catalog/domain"
)

func TestDecrementStockConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(&domain.Product{ID: "p", Name: "Plug", Price: decimal.NewFromInt(10), CategoryID: 1, AvailableItems: 10})

	const workers = 64
	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		granted atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ok, err := repo.DecrementStock(ctx, "p", 3)
			assert.NoError(t, err)
			if ok {
				granted.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(3), granted.Load())
	p, err := repo.GetByID(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, 1, p.AvailableItems)
}

func TestDecrementStockUnknownProduct(t *testing.T) {
	ok, err := NewProductRepository().DecrementStock(context.Background(), "missing", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}
