package server

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/topi314/campfire-sync/server/campfire"
)

func exportEvent(id string, name string) campfire.Event {
	return campfire.Event{
		ID:   id,
		Name: name,
		Members: campfire.Pagination[campfire.Member]{
			TotalCount: 2,
			Edges: []campfire.Edge[campfire.Member]{
				{Node: campfire.Member{ID: "member-1", DisplayName: "Ash", Username: "ash"}},
				{Node: campfire.Member{ID: "member-2", Username: "misty"}},
			},
		},
		RSVPStatuses: []campfire.RSVPStatus{
			{UserID: "member-1", RSVPStatus: "ACCEPTED"},
			{UserID: "member-2", RSVPStatus: "CHECKED_IN"},
			{UserID: "member-3", RSVPStatus: "DECLINED"},
		},
	}
}

func TestExport_Validation(t *testing.T) {
	t.Run("invalid JSON", func(t *testing.T) {
		s := newTestServer(campfire.NewMemorySource())

		rec := serveRequest(s, httptest.NewRequest(http.MethodPost, "/api/export", strings.NewReader("{")))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Invalid JSON body.", errorDetail(t, rec))
	})

	t.Run("no URLs", func(t *testing.T) {
		s := newTestServer(campfire.NewMemorySource())

		rec := serveRequest(s, httptest.NewRequest(http.MethodPost, "/api/export", strings.NewReader(`{"urls":[]}`)))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Provide at least one meetup URL.", errorDetail(t, rec))
	})

	t.Run("too many URLs", func(t *testing.T) {
		s := newTestServer(campfire.NewMemorySource())

		urls := make([]string, 0, maxExportURLs+1)
		for range maxExportURLs + 1 {
			urls = append(urls, `"https://campfire.nianticlabs.com/discover/meetup/camp-1"`)
		}
		body := `{"urls":[` + strings.Join(urls, ",") + `]}`

		rec := serveRequest(s, httptest.NewRequest(http.MethodPost, "/api/export", strings.NewReader(body)))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Please limit the number of URLs to 50, got 51.", errorDetail(t, rec))
	})
}

func TestExport_CSV(t *testing.T) {
	source := campfire.NewMemorySource()
	source.AddEvent(exportEvent("camp-1", "Raid Hour"))
	s := newTestServer(source)

	rec := serveRequest(s, httptest.NewRequest(http.MethodPost, "/api/export", strings.NewReader(
		`{"urls":["https://campfire.nianticlabs.com/discover/meetup/camp-1"]}`,
	)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Equal(t, "attachment; filename=export.csv", rec.Header().Get("Content-Disposition"))

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"id", "name", "status", "event_id", "event_name"},
		{"member-1", "Ash", "ACCEPTED", "camp-1", "Raid Hour"},
		{"member-2", "misty", "CHECKED_IN", "camp-1", "Raid Hour"},
	}, records)
}

func TestExport_IncludeMissingMembers(t *testing.T) {
	source := campfire.NewMemorySource()
	source.AddEvent(exportEvent("camp-1", "Raid Hour"))
	s := newTestServer(source)

	rec := serveRequest(s, httptest.NewRequest(http.MethodPost, "/api/export", strings.NewReader(
		`{"urls":["https://campfire.nianticlabs.com/discover/meetup/camp-1"],"include_missing_members":true}`,
	)))
	require.Equal(t, http.StatusOK, rec.Code)

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	require.Equal(t, []string{"member-3", "", "DECLINED", "camp-1", "Raid Hour"}, records[3])
}

func TestExport_CombinesEvents(t *testing.T) {
	source := campfire.NewMemorySource()
	source.AddEvent(exportEvent("camp-1", "Raid Hour"))
	source.AddEvent(exportEvent("camp-2", "Community Day"))
	s := newTestServer(source)

	rec := serveRequest(s, httptest.NewRequest(http.MethodPost, "/api/export", strings.NewReader(
		`{"urls":["https://campfire.nianticlabs.com/discover/meetup/camp-1","https://campfire.nianticlabs.com/discover/meetup/camp-2"]}`,
	)))
	require.Equal(t, http.StatusOK, rec.Code)

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Equal(t, []string{"id", "name", "status", "event_id", "event_name"}, records[0])

	// Events are fetched concurrently, their order in the CSV is not fixed.
	require.ElementsMatch(t, [][]string{
		{"member-1", "Ash", "ACCEPTED", "camp-1", "Raid Hour"},
		{"member-2", "misty", "CHECKED_IN", "camp-1", "Raid Hour"},
		{"member-1", "Ash", "ACCEPTED", "camp-2", "Community Day"},
		{"member-2", "misty", "CHECKED_IN", "camp-2", "Community Day"},
	}, records[1:])
}

func TestExport_SkipsEventsWithoutRSVPs(t *testing.T) {
	source := campfire.NewMemorySource()
	source.AddEvent(campfire.Event{ID: "camp-1", Name: "Raid Hour"})
	s := newTestServer(source)

	rec := serveRequest(s, httptest.NewRequest(http.MethodPost, "/api/export", strings.NewReader(
		`{"urls":["https://campfire.nianticlabs.com/discover/meetup/camp-1"]}`,
	)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "No events found for the provided URLs.", errorDetail(t, rec))
}

func TestExport_SkipsUnsupportedMeetups(t *testing.T) {
	source := campfire.NewMemorySource()
	source.AddEvent(exportEvent("camp-1", "Raid Hour"))
	s := newTestServer(source)

	rec := serveRequest(s, httptest.NewRequest(http.MethodPost, "/api/export", strings.NewReader(
		`{"urls":["https://campfire.nianticlabs.com/discover/meetup/camp-1","https://niantic-social.nianticlabs.com/public/meetup-without-location/some-meetup"]}`,
	)))
	require.Equal(t, http.StatusOK, rec.Code)

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
}

func TestExport_FetchError(t *testing.T) {
	s := newTestServer(campfire.NewMemorySource())

	rec := serveRequest(s, httptest.NewRequest(http.MethodPost, "/api/export", strings.NewReader(
		`{"urls":["https://example.com/meetup/123"]}`,
	)))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	detail := errorDetail(t, rec)
	require.Contains(t, detail, "Failed to fetch events: ")
	require.Contains(t, detail, "https://example.com/meetup/123")
}
