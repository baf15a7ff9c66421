package campfire

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func meetupPage(eventID string, hasNext bool, endCursor string) ArchivedFeed {
	return ArchivedFeed{
		ArchivedFeed: Pagination[Event]{
			Edges: []Edge[Event]{
				{Node: Event{Typename: "Event", ID: eventID}, Cursor: eventID},
			},
			PageInfo: PageInfo{
				HasNextPage: hasNext,
				EndCursor:   endCursor,
			},
		},
	}
}

func TestClient_GetPastMeetups(t *testing.T) {
	source := NewMemorySource()
	source.AddMeetupPage("club-1", meetupPage("event-1", true, "cursorA"))
	source.AddMeetupPage("club-1", meetupPage("event-2", true, "cursorB"))
	source.AddMeetupPage("club-1", meetupPage("event-3", false, ""))
	client := NewWithSource(source)

	events, err := client.GetPastMeetups(context.Background(), "club-1")
	require.NoError(t, err)

	var ids []string
	for _, event := range events {
		ids = append(ids, event.ID)
	}
	require.Equal(t, []string{"event-1", "event-2", "event-3"}, ids)

	require.Equal(t, []string{"archived_meetups", "archived_meetups", "archived_meetups"}, source.Calls())

	cursors := source.MeetupCursors()
	require.Len(t, cursors, 3)
	require.Nil(t, cursors[0])
	require.Equal(t, "cursorA", *cursors[1])
	require.Equal(t, "cursorB", *cursors[2])
}

func TestClient_GetPastMeetups_FiltersNonEvents(t *testing.T) {
	source := NewMemorySource()
	source.AddMeetupPage("club-1", ArchivedFeed{
		ArchivedFeed: Pagination[Event]{
			Edges: []Edge[Event]{
				{Node: Event{Typename: "Event", ID: "event-1"}, Cursor: "c1"},
				{Node: Event{Typename: "CommunityEvent", ID: "not-an-event"}, Cursor: "c2"},
				{Node: Event{Typename: "Event", ID: "event-2"}, Cursor: "c3"},
			},
			PageInfo: PageInfo{HasNextPage: false},
		},
	})
	client := NewWithSource(source)

	events, err := client.GetPastMeetups(context.Background(), "club-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "event-1", events[0].ID)
	require.Equal(t, "event-2", events[1].ID)
}

func TestClient_GetPastMeetups_EmptyClub(t *testing.T) {
	source := NewMemorySource()
	client := NewWithSource(source)

	events, err := client.GetPastMeetups(context.Background(), "club-1")
	require.NoError(t, err)
	require.Empty(t, events)
	require.Equal(t, []string{"archived_meetups"}, source.Calls())
}

func TestClient_GetPastMeetupsFrom_Resume(t *testing.T) {
	source := NewMemorySource()
	source.AddMeetupPage("club-1", meetupPage("event-1", true, "cursorA"))
	source.AddMeetupPage("club-1", meetupPage("event-2", true, "cursorB"))
	source.AddMeetupPage("club-1", meetupPage("event-3", false, ""))
	client := NewWithSource(source)

	cursor := "cursorA"
	events, next, err := client.GetPastMeetupsFrom(context.Background(), "club-1", &cursor)
	require.NoError(t, err)
	require.Nil(t, next)
	require.Len(t, events, 2)
	require.Equal(t, "event-2", events[0].ID)
	require.Equal(t, "event-3", events[1].ID)
}

func TestClient_GetPastMeetupsFrom_ReturnsCursorOnFailure(t *testing.T) {
	source := NewMemorySource()
	source.AddMeetupPage("club-1", meetupPage("event-1", true, "cursorA"))
	client := NewWithSource(source)

	// The feed claims a next page which the source cannot serve.
	events, next, err := client.GetPastMeetupsFrom(context.Background(), "club-1", nil)
	require.Error(t, err)
	require.Len(t, events, 1)
	require.NotNil(t, next)
	require.Equal(t, "cursorA", *next)
}
