package campfire

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var _ DataSource = (*MemorySource)(nil)

// MemorySource is an in-memory DataSource. It serves fixture data and records
// every call so tests can assert on call counts and cursors.
type MemorySource struct {
	mu          sync.Mutex
	shortURLs   map[string]string
	events      map[string]Event
	mapObjects  []PublicMapObject
	clubs       map[string]Club
	meetupPages map[string][]ArchivedFeed

	calls         []string
	meetupCursors []*string
}

func NewMemorySource() *MemorySource {
	return &MemorySource{
		shortURLs:   map[string]string{},
		events:      map[string]Event{},
		clubs:       map[string]Club{},
		meetupPages: map[string][]ArchivedFeed{},
	}
}

func (s *MemorySource) AddShortURL(shortURL string, meetupURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shortURLs[shortURL] = meetupURL
}

func (s *MemorySource) AddEvent(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ID] = event
}

func (s *MemorySource) AddMapObject(object PublicMapObject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mapObjects = append(s.mapObjects, object)
}

func (s *MemorySource) AddClub(club Club) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clubs[club.ID] = club
}

func (s *MemorySource) AddMeetupPage(clubID string, page ArchivedFeed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meetupPages[clubID] = append(s.meetupPages[clubID], page)
}

// Calls returns the names of all data source operations in call order.
func (s *MemorySource) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// MeetupCursors returns the cursors passed to FetchArchivedMeetups in call
// order, nil for the first page.
func (s *MemorySource) MeetupCursors() []*string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*string(nil), s.meetupCursors...)
}

func (s *MemorySource) ResolveShortURL(ctx context.Context, shortURL string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "resolve_short_url")

	meetupURL, ok := s.shortURLs[shortURL]
	if !ok {
		return "", errors.New("no valid meetup URL found in response")
	}
	return meetupURL, nil
}

func (s *MemorySource) FetchEvent(ctx context.Context, eventID string) (*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "event")

	event := s.events[eventID]
	return &event, nil
}

// FetchPublicEvents returns every stored map object in insertion order,
// regardless of the requested IDs, the way a fixture snapshot would.
func (s *MemorySource) FetchPublicEvents(ctx context.Context, mapObjectIDs []string) (*Events, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "public_events")

	return &Events{
		PublicMapObjectsByID: append([]PublicMapObject(nil), s.mapObjects...),
	}, nil
}

func (s *MemorySource) FetchClub(ctx context.Context, clubID string) (*Club, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "club")

	club := s.clubs[clubID]
	return &club, nil
}

func (s *MemorySource) FetchArchivedMeetups(ctx context.Context, clubID string, after *string) (*ArchivedFeed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "archived_meetups")
	if after == nil {
		s.meetupCursors = append(s.meetupCursors, nil)
	} else {
		cursor := *after
		s.meetupCursors = append(s.meetupCursors, &cursor)
	}

	pages := s.meetupPages[clubID]
	if after == nil {
		if len(pages) == 0 {
			return &ArchivedFeed{}, nil
		}
		return &pages[0], nil
	}

	for i, page := range pages {
		if page.ArchivedFeed.PageInfo.EndCursor == *after {
			if i+1 >= len(pages) {
				return nil, fmt.Errorf("no page after cursor: %s", *after)
			}
			return &pages[i+1], nil
		}
	}
	return nil, fmt.Errorf("unknown cursor: %s", *after)
}
