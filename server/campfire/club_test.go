package campfire

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func deepLinkURL(payload string) string {
	return "https://campfire.onelink.me/eBr8?af_dp=campfire%3A%2F%2F&deep_link_sub1=" + base64.StdEncoding.EncodeToString([]byte(payload))
}

func TestClient_ResolveClubID(t *testing.T) {
	tests := []struct {
		name       string
		clubURL    string
		want       string
		wantErr    error
		wantErrMsg string
	}{
		{
			name:    "club deep link",
			clubURL: deepLinkURL("r=clubs&c=club-123"),
			want:    "club-123",
		},
		{
			name:    "events route",
			clubURL: deepLinkURL("r=events&c=club-123"),
			wantErr: ErrNotClubLink,
		},
		{
			name:    "missing route",
			clubURL: deepLinkURL("c=club-123"),
			wantErr: ErrNotClubLink,
		},
		{
			name:    "empty club id",
			clubURL: deepLinkURL("r=clubs&c="),
			wantErr: ErrMissingClubID,
		},
		{
			name:    "missing deep link parameter",
			clubURL: "https://campfire.onelink.me/eBr8?af_dp=campfire%3A%2F%2F",
			wantErr: ErrNoDeepLink,
		},
		{
			name:       "invalid base64",
			clubURL:    "https://campfire.onelink.me/eBr8?deep_link_sub1=!!!not-base64!!!",
			wantErrMsg: "failed to decode deep link",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewWithSource(NewMemorySource())

			got, err := client.ResolveClubID(context.Background(), tt.clubURL)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			if tt.wantErrMsg != "" {
				require.ErrorContains(t, err, tt.wantErrMsg)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestClient_ResolveClub(t *testing.T) {
	source := NewMemorySource()
	source.AddClub(Club{ID: "club-123", Name: "Test Club"})
	client := NewWithSource(source)

	club, err := client.ResolveClub(context.Background(), deepLinkURL("r=clubs&c=club-123"))
	require.NoError(t, err)
	require.Equal(t, "club-123", club.ID)
	require.Equal(t, "Test Club", club.Name)
	require.Equal(t, []string{"club"}, source.Calls())
}

func TestClient_ResolveClub_NotAClubLink(t *testing.T) {
	client := NewWithSource(NewMemorySource())

	_, err := client.ResolveClub(context.Background(), deepLinkURL("r=events"))
	require.ErrorIs(t, err, ErrNotClubLink)
}
