package fieldcrypt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskvault/internal/model"
)

func TestDeriveKey(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		wantErr    error
	}{
		{
			name:       "user identifier",
			identifier: "user-123",
		},
		{
			name:       "group identifier",
			identifier: "550e8400-e29b-41d4-a716-446655440000",
		},
		{
			name:       "empty identifier",
			identifier: "",
			wantErr:    model.ErrMissingKeyIdentifier,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := DeriveKey(tt.identifier)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, key)
				return
			}
			require.NoError(t, err)
			assert.Len(t, key, 32)
		})
	}
}

func TestDeriveKey_Deterministic(t *testing.T) {
	k1, err := DeriveKey("user-123")
	require.NoError(t, err)
	k2, err := DeriveKey("user-123")
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
}

func TestDeriveKey_IndependentKeys(t *testing.T) {
	k1, err := DeriveKey("user-123")
	require.NoError(t, err)
	k2, err := DeriveKey("user-456")
	require.NoError(t, err)

	assert.NotEqual(t, k1, k2)
}

func TestKeyCache_Derive(t *testing.T) {
	cache := NewKeyCache()

	k1, err := cache.Derive("user-123")
	require.NoError(t, err)

	direct, err := DeriveKey("user-123")
	require.NoError(t, err)
	assert.Equal(t, direct, k1)

	k2, err := cache.Derive("user-123")
	require.NoError(t, err)
	assert.Equal(t, k1, k2)

	_, err = cache.Derive("")
	assert.ErrorIs(t, err, model.ErrMissingKeyIdentifier)
}
