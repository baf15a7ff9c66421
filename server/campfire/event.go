package campfire

import (
	"cmp"
	"context"
	"log/slog"
)

// ResolveShortURL expands a cmpf.re short link into the meetup URL it points
// at, either via the redirect target or by scanning the response body.
func (c *Client) ResolveShortURL(ctx context.Context, shortURL string) (string, error) {
	return c.source.ResolveShortURL(ctx, shortURL)
}

func (c *Client) GetEvent(ctx context.Context, eventID string) (*Event, error) {
	slog.DebugContext(ctx, "Fetching full event", slog.String("event_id", eventID))
	return c.source.FetchEvent(ctx, eventID)
}

// FindMemberName looks up a member in the event's member list and returns
// their display name, falling back to the username. The second return reports
// whether the member was found.
func FindMemberName(memberID string, event Event) (string, bool) {
	for _, edge := range event.Members.Edges {
		if edge.Node.ID == memberID {
			return cmp.Or(edge.Node.DisplayName, edge.Node.Username), true
		}
	}
	return "", false
}
