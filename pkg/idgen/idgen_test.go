package idgen

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmationUnique(t *testing.T) {
	g, err := New(1)
	require.NoError(t, err)

	const workers, perWorker = 8, 500
	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, 0, perWorker)
			for j := 0; j < perWorker; j++ {
				local = append(local, g.Confirmation())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, c := range local {
				seen[c] = struct{}{}
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
	for c := range seen {
		assert.True(t, strings.HasPrefix(c, "ORD-"))
		break
	}
}

func TestNewRejectsOutOfRangeNode(t *testing.T) {
	_, err := New(4096)
	assert.Error(t, err)
}
