package cauth

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func makeToken(t *testing.T, claims map[string]any) string {
	t.Helper()

	payload, err := json.Marshal(claims)
	require.NoError(t, err)

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT"}`))
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".signature"
}

func TestParseToken(t *testing.T) {
	expiresAt := time.Now().Add(24 * time.Hour).Truncate(time.Second)

	tests := []struct {
		name      string
		token     string
		wantErr   error
		wantEmail string
	}{
		{
			name: "valid",
			token: makeToken(t, map[string]any{
				"email": "trainer@example.com",
				"exp":   expiresAt.Unix(),
			}),
			wantEmail: "trainer@example.com",
		},
		{
			name: "email falls back to sub",
			token: makeToken(t, map[string]any{
				"sub": "user-123",
				"exp": expiresAt.Unix(),
			}),
			wantEmail: "user-123",
		},
		{
			name:    "empty",
			token:   "  ",
			wantErr: ErrEmptyToken,
		},
		{
			name:    "two segments",
			token:   "header.payload",
			wantErr: ErrInvalidFormat,
		},
		{
			name: "missing expiry",
			token: makeToken(t, map[string]any{
				"email": "trainer@example.com",
			}),
			wantErr: ErrMissingExpiry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := ParseToken(tt.token)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantEmail, decoded.Email)
			require.Equal(t, expiresAt.Unix(), decoded.ExpiresAt.Unix())
			require.Equal(t, tt.token, decoded.Token)
		})
	}
}

func TestParseToken_BadPayload(t *testing.T) {
	_, err := ParseToken("header.!!!.signature")
	require.ErrorContains(t, err, "invalid token data")

	notJSON := base64.RawURLEncoding.EncodeToString([]byte("not json"))
	_, err = ParseToken("header." + notJSON + ".signature")
	require.ErrorContains(t, err, "invalid token json")
}

func TestParseToken_PaddedPayload(t *testing.T) {
	payload, err := json.Marshal(map[string]any{
		"email": "trainer@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	token := "header." + base64.URLEncoding.EncodeToString(payload) + ".signature"

	decoded, err := ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "trainer@example.com", decoded.Email)
}

func TestDecodedToken_Valid(t *testing.T) {
	require.True(t, DecodedToken{ExpiresAt: time.Now().Add(2 * time.Hour)}.Valid())
	require.False(t, DecodedToken{ExpiresAt: time.Now().Add(30 * time.Second)}.Valid())
	require.False(t, DecodedToken{ExpiresAt: time.Now().Add(-time.Hour)}.Valid())
}
