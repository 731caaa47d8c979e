package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"configuration", ErrConfiguration, KindConfiguration},
		{"wrapped configuration", fmt.Errorf("parsing DSN: %w", ErrConfiguration), KindConfiguration},
		{"connectivity", fmt.Errorf("%w: dial tcp: refused", ErrConnectivity), KindConnectivity},
		{"pool exhausted", fmt.Errorf("%w: %w", ErrPoolExhausted, context.DeadlineExceeded), KindPoolExhausted},
		{"other", errors.New("boom"), KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}

func TestErrorKindsAreDistinct(t *testing.T) {
	assert.NotErrorIs(t, ErrConnectivity, ErrConfiguration)
	assert.NotErrorIs(t, ErrConfiguration, ErrConnectivity)
	assert.NotErrorIs(t, ErrPoolExhausted, ErrConnectivity)
}
