package campfire

import (
	"context"
)

// GetPastMeetups walks all archived meetup pages of a club and returns the
// events in server order.
func (c *Client) GetPastMeetups(ctx context.Context, clubID string) ([]Event, error) {
	events, _, err := c.GetPastMeetupsFrom(ctx, clubID, nil)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// GetPastMeetupsFrom walks archived meetup pages starting at cursor. On
// failure it returns the events collected so far together with the cursor of
// the page that failed, so callers can resume the walk later.
func (c *Client) GetPastMeetupsFrom(ctx context.Context, clubID string, cursor *string) ([]Event, *string, error) {
	var allEvents []Event
	for {
		feed, err := c.source.FetchArchivedMeetups(ctx, clubID, cursor)
		if err != nil {
			return allEvents, cursor, err
		}

		for _, edge := range feed.ArchivedFeed.Edges {
			if edge.Node.Typename != "Event" {
				continue
			}
			allEvents = append(allEvents, edge.Node)
		}

		if !feed.ArchivedFeed.PageInfo.HasNextPage {
			break
		}
		cursor = &feed.ArchivedFeed.PageInfo.EndCursor
	}

	return allEvents, nil, nil
}
