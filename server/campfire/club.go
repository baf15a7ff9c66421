package campfire

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"unicode/utf8"
)

// ResolveClubID extracts the club ID from a club share link. The link carries
// a deep_link_sub1 query parameter holding a base64 encoded query string with
// the route and the club ID.
func (c *Client) ResolveClubID(ctx context.Context, clubURL string) (string, error) {
	u, err := url.Parse(clubURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse club URL: %w", err)
	}

	deepLink := u.Query().Get("deep_link_sub1")
	if deepLink == "" {
		return "", ErrNoDeepLink
	}

	decoded, err := base64.StdEncoding.DecodeString(deepLink)
	if err != nil {
		return "", fmt.Errorf("failed to decode deep link: %w", err)
	}
	if !utf8.Valid(decoded) {
		return "", errors.New("deep link payload is not valid UTF-8")
	}

	values, err := url.ParseQuery(string(decoded))
	if err != nil {
		return "", fmt.Errorf("failed to parse deep link payload: %w", err)
	}

	if values.Get("r") != "clubs" {
		return "", ErrNotClubLink
	}

	clubID := values.Get("c")
	if clubID == "" {
		return "", ErrMissingClubID
	}

	return clubID, nil
}

func (c *Client) ResolveClub(ctx context.Context, clubURL string) (*Club, error) {
	clubID, err := c.ResolveClubID(ctx, clubURL)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve club ID: %w", err)
	}

	club, err := c.GetClub(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch club: %w", err)
	}

	return club, nil
}

func (c *Client) GetClub(ctx context.Context, clubID string) (*Club, error) {
	slog.DebugContext(ctx, "Fetching club", slog.String("club_id", clubID))
	return c.source.FetchClub(ctx, clubID)
}
