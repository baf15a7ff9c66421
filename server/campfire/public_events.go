package campfire

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// ResolveEventID maps a meetup share URL to the campfire event ID. Short links
// are expanded first, discover links carry the event ID directly, public
// meetup links carry a map object ID which is resolved via the public events
// lookup.
func (c *Client) ResolveEventID(ctx context.Context, meetupURL string) (string, error) {
	var campfireEventID string
	if !strings.HasPrefix(meetupURL, discoverMeetupPrefix) {
		if strings.HasPrefix(meetupURL, shortURLPrefix) {
			var err error
			meetupURL, err = c.ResolveShortURL(ctx, meetupURL)
			if err != nil {
				return "", fmt.Errorf("failed to resolve short URL: %w", err)
			}
		}

		if strings.HasPrefix(meetupURL, meetupWithoutLocationPrefix) {
			return "", ErrUnsupportedMeetup
		}

		if !strings.HasPrefix(meetupURL, publicMeetupPrefix) {
			return "", errors.New("invalid URL. Must start with 'https://niantic-social.nianticlabs.com/public/meetup/', 'https://cmpf.re/' or 'https://campfire.nianticlabs.com/discover/meetup/'")
		}
		mapObjectID := path.Base(meetupURL)
		if mapObjectID == "" {
			return "", errors.New("could not extract event ID from URL")
		}

		events, err := c.GetEvents(ctx, []string{mapObjectID})
		if err != nil {
			return "", fmt.Errorf("failed to fetch events: %w", err)
		}

		if len(events.PublicMapObjectsByID) == 0 {
			return "", ErrEventNotFound
		}

		var (
			matched     bool
			returnedIDs []string
		)
		for _, object := range events.PublicMapObjectsByID {
			returnedIDs = append(returnedIDs, object.ID)
			if !matched && object.ID == mapObjectID {
				campfireEventID = object.Event.ID
				matched = true
			}
		}
		if !matched {
			return "", fmt.Errorf("event ID mismatch: expected %s, got %s", mapObjectID, strings.Join(returnedIDs, ", "))
		}
	} else {
		campfireEventID = path.Base(meetupURL)
	}

	if campfireEventID == "" {
		return "", fmt.Errorf("invalid URL: %s", meetupURL)
	}

	return campfireEventID, nil
}

func (c *Client) ResolveEvent(ctx context.Context, meetupURL string) (*Event, error) {
	campfireEventID, err := c.ResolveEventID(ctx, meetupURL)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve event ID: %w", err)
	}

	event, err := c.GetEvent(ctx, campfireEventID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch full event: %w", err)
	}

	return event, nil
}

func (c *Client) GetEvents(ctx context.Context, mapObjectIDs []string) (*Events, error) {
	return c.source.FetchPublicEvents(ctx, mapObjectIDs)
}
