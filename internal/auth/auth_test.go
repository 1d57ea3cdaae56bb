package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)

	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	req.NoError(err)
	req.NotEqual("correct horse", hash)

	match, err := ComparePassword("correct horse", hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("wrong horse", hash)
	req.NoError(err)
	req.False(match)

	_, err = ComparePassword("anything", "not-a-bcrypt-hash")
	req.Error(err)
}

func TestHashPassword_InvalidCostFallsBack(t *testing.T) {
	hash, err := HashPassword("pw", 0)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	require.Equal(t, bcrypt.DefaultCost, cost)
}

func TestTokenManager(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *TokenManager, token string) string
		wantErr bool
	}{
		{
			name:   "valid token",
			mutate: func(_ *TokenManager, token string) string { return token },
		},
		{
			name: "tampered token",
			mutate: func(_ *TokenManager, token string) string {
				return token + "x"
			},
			wantErr: true,
		},
		{
			name: "expired token",
			mutate: func(m *TokenManager, token string) string {
				m.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
				return token
			},
			wantErr: true,
		},
		{
			name: "other secret",
			mutate: func(m *TokenManager, token string) string {
				m.secret = []byte("other")
				return token
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			m := NewTokenManager("secret", 24*time.Hour)

			token, err := m.GenerateToken(42, "+15550001")
			req.NoError(err)

			claims, err := m.ValidateToken(tt.mutate(m, token))
			if tt.wantErr {
				req.ErrorIs(err, ErrInvalidToken)
				return
			}
			req.NoError(err)
			req.Equal(int64(42), claims.UserID)
			req.Equal("+15550001", claims.Mobile)
			req.Equal("42", claims.Subject)
		})
	}
}
