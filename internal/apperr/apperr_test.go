package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("name is required"), KindValidation},
		{"auth", Auth("invalid credentials"), KindAuth},
		{"not found", NotFound("store not found"), KindNotFound},
		{"limit", LimitExceeded("store limit reached"), KindLimitExceeded},
		{"dependency", Dependency("database unavailable", errors.New("dial tcp")), KindDependency},
		{"wrapped", fmt.Errorf("create store: %w", LimitExceeded("store limit reached")), KindLimitExceeded},
		{"plain error", errors.New("boom"), KindUnknown},
		{"nil", nil, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestDependencyUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Dependency("database unavailable", cause)

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "database unavailable")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWithDetails(t *testing.T) {
	base := Validation("invalid payload")
	detailed := base.WithDetails("price: must be greater than zero")

	assert.Empty(t, base.Details)
	assert.Equal(t, "price: must be greater than zero", detailed.Details)
	assert.Equal(t, KindValidation, detailed.Kind)
}
