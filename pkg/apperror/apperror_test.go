package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type outOfStock struct{}

func (outOfStock) Error() string { return "out of stock" }
func (outOfStock) Kind() Kind    { return KindConflict }

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"validation", Validation("bad %s", "input"), KindValidation},
		{"wrapped not found", fmt.Errorf("get: %w", NotFound("product %s not found", "p1")), KindNotFound},
		{"domain error", fmt.Errorf("place: %w", outOfStock{}), KindConflict},
		{"plain error", errors.New("boom"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "bad input", PublicMessage(Validation("bad input")))
	assert.Equal(t, "failed to save", PublicMessage(Internal(errors.New("dial tcp: refused"), "failed to save")))
	assert.Equal(t, "internal server error", PublicMessage(errors.New("dial tcp: refused")))
	assert.Equal(t, "out of stock", PublicMessage(outOfStock{}))
}

func TestInternalUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Internal(cause, "failed to save")
	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, KindInternal))
	assert.Contains(t, err.Error(), "dial tcp")
}
