package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/topi314/campfire-sync/internal/xtime"
	"github.com/topi314/campfire-sync/server/campfire"
)

func newTestServer(source *campfire.MemorySource) *Server {
	return &Server{
		Cfg: Config{
			Campfire: campfire.Config{
				Every:      xtime.Duration(time.Second),
				Burst:      40,
				MaxRetries: 3,
			},
		},
		Campfire:   campfire.NewWithSource(source),
		HTTPClient: &http.Client{},
	}
}

func serveRequest(s *Server, r *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	s.routes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, r)
	return rec
}

func errorDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Detail
}

func TestHealth(t *testing.T) {
	s := newTestServer(campfire.NewMemorySource())

	rec := serveRequest(s, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestNotFound(t *testing.T) {
	s := newTestServer(campfire.NewMemorySource())

	rec := serveRequest(s, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Not found.", errorDetail(t, rec))
}

func TestCampfireConfig(t *testing.T) {
	s := newTestServer(campfire.NewMemorySource())

	rec := serveRequest(s, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"every_seconds":1,"burst":40,"max_retries":3}`, rec.Body.String())
}

func TestResolve(t *testing.T) {
	t.Run("missing url", func(t *testing.T) {
		s := newTestServer(campfire.NewMemorySource())

		rec := serveRequest(s, httptest.NewRequest(http.MethodGet, "/api/resolve", nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Provide a ?url= to resolve.", errorDetail(t, rec))
	})

	t.Run("discover URL", func(t *testing.T) {
		s := newTestServer(campfire.NewMemorySource())

		rec := serveRequest(s, httptest.NewRequest(http.MethodGet, "/api/resolve?url=https://campfire.nianticlabs.com/discover/meetup/camp-987", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp resolveResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Equal(t, "camp-987", resp.EventID)
		require.Equal(t, "https://campfire.nianticlabs.com/discover/meetup/camp-987", resp.URL)
	})

	t.Run("meetup without location", func(t *testing.T) {
		s := newTestServer(campfire.NewMemorySource())

		rec := serveRequest(s, httptest.NewRequest(http.MethodGet, "/api/resolve?url=https://niantic-social.nianticlabs.com/public/meetup-without-location/some-meetup", nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Meetups without location are not supported.", errorDetail(t, rec))
	})

	t.Run("unknown URL", func(t *testing.T) {
		s := newTestServer(campfire.NewMemorySource())

		rec := serveRequest(s, httptest.NewRequest(http.MethodGet, "/api/resolve?url=https://example.com/meetup/123", nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, errorDetail(t, rec), "invalid URL")
	})
}

func TestImportEvent_Validation(t *testing.T) {
	t.Run("invalid JSON", func(t *testing.T) {
		s := newTestServer(campfire.NewMemorySource())

		rec := serveRequest(s, httptest.NewRequest(http.MethodPost, "/api/events/import", strings.NewReader("{")))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Invalid JSON body.", errorDetail(t, rec))
	})

	t.Run("empty reference", func(t *testing.T) {
		s := newTestServer(campfire.NewMemorySource())

		rec := serveRequest(s, httptest.NewRequest(http.MethodPost, "/api/events/import", strings.NewReader(`{"event":"   "}`)))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Provide an event ID or meetup URL.", errorDetail(t, rec))
	})

	t.Run("unresolvable URL", func(t *testing.T) {
		s := newTestServer(campfire.NewMemorySource())

		rec := serveRequest(s, httptest.NewRequest(http.MethodPost, "/api/events/import", strings.NewReader(`{"event":"https://example.com/meetup/123"}`)))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, errorDetail(t, rec), "invalid URL")
	})

	t.Run("unknown event ID", func(t *testing.T) {
		s := newTestServer(campfire.NewMemorySource())

		rec := serveRequest(s, httptest.NewRequest(http.MethodPost, "/api/events/import", strings.NewReader(`{"event":"camp-does-not-exist"}`)))
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "Event not found.", errorDetail(t, rec))
	})
}

func TestLookupClub_Validation(t *testing.T) {
	t.Run("no parameters", func(t *testing.T) {
		s := newTestServer(campfire.NewMemorySource())

		rec := serveRequest(s, httptest.NewRequest(http.MethodGet, "/api/clubs/lookup", nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Provide ?club=, ?url=, or ?id= to lookup a club.", errorDetail(t, rec))
	})

	t.Run("no reference in club parameter", func(t *testing.T) {
		s := newTestServer(campfire.NewMemorySource())

		rec := serveRequest(s, httptest.NewRequest(http.MethodGet, "/api/clubs/lookup?club=just+some+text", nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "No club URL or ID found in the provided input.", errorDetail(t, rec))
	})

	t.Run("multiple references", func(t *testing.T) {
		s := newTestServer(campfire.NewMemorySource())

		rec := serveRequest(s, httptest.NewRequest(http.MethodGet, "/api/clubs/lookup?club=a1b2c3d4-e5f6-7890-abcd-ef1234567890+b1b2c3d4-e5f6-7890-abcd-ef1234567890", nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Multiple club URLs or IDs found.", errorDetail(t, rec))
	})

	t.Run("unknown club ID", func(t *testing.T) {
		s := newTestServer(campfire.NewMemorySource())

		rec := serveRequest(s, httptest.NewRequest(http.MethodGet, "/api/clubs/lookup?id=a1b2c3d4-e5f6-7890-abcd-ef1234567890", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "Club not found.", errorDetail(t, rec))
	})
}

func TestAddToken_Validation(t *testing.T) {
	t.Run("invalid JSON", func(t *testing.T) {
		s := newTestServer(campfire.NewMemorySource())

		rec := serveRequest(s, httptest.NewRequest(http.MethodPost, "/api/tokens", strings.NewReader("{")))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Invalid JSON body.", errorDetail(t, rec))
	})

	t.Run("empty token", func(t *testing.T) {
		s := newTestServer(campfire.NewMemorySource())

		rec := serveRequest(s, httptest.NewRequest(http.MethodPost, "/api/tokens", strings.NewReader(`{"token":"  "}`)))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Provide a token.", errorDetail(t, rec))
	})

	t.Run("malformed token", func(t *testing.T) {
		s := newTestServer(campfire.NewMemorySource())

		rec := serveRequest(s, httptest.NewRequest(http.MethodPost, "/api/tokens", strings.NewReader(`{"token":"garbage"}`)))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "token must contain three segments", errorDetail(t, rec))
	})
}

func TestEventQR(t *testing.T) {
	s := newTestServer(campfire.NewMemorySource())

	rec := serveRequest(s, httptest.NewRequest(http.MethodGet, "/api/events/camp-987/qr", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

type roundTripFunc func(rq *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(rq *http.Request) (*http.Response, error) {
	return f(rq)
}

func TestImage(t *testing.T) {
	t.Run("proxies upstream image", func(t *testing.T) {
		s := newTestServer(campfire.NewMemorySource())
		s.HTTPClient = &http.Client{
			Transport: roundTripFunc(func(rq *http.Request) (*http.Response, error) {
				require.Equal(t, "https://niantic-social-api.nianticlabs.com/images/avatar-1", rq.URL.String())
				return &http.Response{
					StatusCode: http.StatusOK,
					Header: http.Header{
						"Content-Type":   []string{"image/jpeg"},
						"Content-Length": []string{"9"},
					},
					Body:    io.NopCloser(strings.NewReader("jpeg-data")),
					Request: rq,
				}, nil
			}),
		}

		rec := serveRequest(s, httptest.NewRequest(http.MethodGet, "/api/images/avatar-1", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
		require.Equal(t, "public, max-age=31536000", rec.Header().Get("Cache-Control"))
		require.Equal(t, "jpeg-data", rec.Body.String())
	})

	t.Run("upstream error status", func(t *testing.T) {
		s := newTestServer(campfire.NewMemorySource())
		s.HTTPClient = &http.Client{
			Transport: roundTripFunc(func(rq *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusNotFound,
					Status:     "404 Not Found",
					Header:     http.Header{},
					Body:       io.NopCloser(strings.NewReader("")),
					Request:    rq,
				}, nil
			}),
		}

		rec := serveRequest(s, httptest.NewRequest(http.MethodGet, "/api/images/missing", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "Failed to fetch image: 404 Not Found", errorDetail(t, rec))
	})
}
