package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRate(t *testing.T) {
	assert.Equal(t, 1.0, normalizeRate(0))
	assert.Equal(t, 1.0, normalizeRate(-0.5))
	assert.Equal(t, 1.0, normalizeRate(3))
	assert.Equal(t, 0.25, normalizeRate(0.25))
}
