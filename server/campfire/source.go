package campfire

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	publicEndpoint = "https://niantic-social-api.nianticlabs.com/public/graphql"
	endpoint       = "https://niantic-social-api.nianticlabs.com/graphql"

	retryDelay = time.Second

	// eventsPerPage is the fixed page size for archived meetup pages.
	eventsPerPage = 50
	// allMembers is large enough to fetch all members of an event in one page.
	allMembers = 100000000
)

var (
	//go:embed queries/event.graphql
	eventQuery string

	//go:embed queries/public_events.graphql
	publicEventsQuery string

	//go:embed queries/archived_meetups.graphql
	archivedMeetupsQuery string

	//go:embed queries/club.graphql
	clubQuery string
)

// NewGraphQLSource creates the HTTP backed DataSource. The token func supplies
// the bearer token for authenticated requests, a nil token func falls back to
// the static token from the config. A nil httpClient falls back to a client
// with a generous fixed timeout.
func NewGraphQLSource(cfg Config, token TokenFunc, httpClient *http.Client) (*GraphQLSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid campfire config: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}
	if token == nil {
		staticToken := cfg.Token
		token = func(ctx context.Context) (string, error) {
			return staticToken, nil
		}
	}

	return &GraphQLSource{
		cfg:            cfg,
		httpClient:     httpClient,
		limiter:        rate.NewLimiter(rate.Every(cfg.Every.AsDuration()), cfg.Burst),
		token:          token,
		endpoint:       endpoint,
		publicEndpoint: publicEndpoint,
		retryDelay:     retryDelay,
	}, nil
}

type GraphQLSource struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	token      TokenFunc

	endpoint       string
	publicEndpoint string
	retryDelay     time.Duration
}

func (s *GraphQLSource) ResolveShortURL(ctx context.Context, shortURL string) (string, error) {
	rq, err := http.NewRequestWithContext(ctx, http.MethodGet, shortURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for short URL: %w", err)
	}

	rs, err := s.httpClient.Do(rq)
	if err != nil {
		return "", fmt.Errorf("failed to resolve short URL: %w", err)
	}
	defer rs.Body.Close()
	if rs.StatusCode != http.StatusOK {
		return "", fmt.Errorf("short URL resolution failed with status: %s", rs.Status)
	}

	if finalURL := rs.Request.URL.String(); isMeetupURL(finalURL) {
		return finalURL, nil
	}

	html, err := io.ReadAll(rs.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	meetupURL := meetupURLRegex.FindString(string(html))
	if meetupURL == "" {
		return "", errors.New("no valid meetup URL found in response")
	}
	return meetupURL, nil
}

func (s *GraphQLSource) FetchEvent(ctx context.Context, eventID string) (*Event, error) {
	data, err := s.do(ctx, "event", s.endpoint, eventQuery, map[string]any{
		"id":    eventID,
		"first": allMembers,
	}, true)
	if err != nil {
		return nil, err
	}

	resp, err := decodeData[eventResp](data)
	if err != nil {
		return nil, err
	}
	return &resp.Event, nil
}

func (s *GraphQLSource) FetchPublicEvents(ctx context.Context, mapObjectIDs []string) (*Events, error) {
	data, err := s.do(ctx, "public_events", s.publicEndpoint, publicEventsQuery, map[string]any{
		"ids": mapObjectIDs,
	}, false)
	if err != nil {
		return nil, err
	}

	resp, err := decodeData[Events](data)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GraphQLSource) FetchClub(ctx context.Context, clubID string) (*Club, error) {
	data, err := s.do(ctx, "club", s.endpoint, clubQuery, map[string]any{
		"clubId": clubID,
	}, true)
	if err != nil {
		return nil, err
	}

	resp, err := decodeData[clubResp](data)
	if err != nil {
		return nil, err
	}
	return &resp.Club, nil
}

func (s *GraphQLSource) FetchArchivedMeetups(ctx context.Context, clubID string, after *string) (*ArchivedFeed, error) {
	data, err := s.do(ctx, "archived_meetups", s.endpoint, archivedMeetupsQuery, map[string]any{
		"clubId":       clubID,
		"first":        eventsPerPage,
		"after":        after,
		"membersFirst": allMembers,
	}, true)
	if err != nil {
		return nil, err
	}

	resp, err := decodeData[archivedFeedResp](data)
	if err != nil {
		return nil, err
	}
	return &resp.Club, nil
}

func (s *GraphQLSource) do(ctx context.Context, op string, endpoint string, query string, variables map[string]any, authenticated bool) (json.RawMessage, error) {
	var token string
	if authenticated {
		var err error
		token, err = s.token(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get campfire token: %w", err)
		}
		if token == "" {
			return nil, ErrNoToken
		}
	}

	body, err := json.Marshal(Req{
		Query:     query,
		Variables: variables,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	for try := 0; try < s.cfg.MaxRetries; try++ {
		if try > 0 {
			retriesTotal.WithLabelValues(op).Inc()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.retryDelay):
			}
		}

		data, err := s.doOnce(ctx, op, endpoint, token, body)
		if err != nil {
			var rErr *retryableError
			if errors.As(err, &rErr) {
				slog.WarnContext(ctx, "Campfire request failed, retrying", slog.String("operation", op), slog.Int("try", try+1), slog.Any("error", err))
				continue
			}
			requestsTotal.WithLabelValues(op, outcomeError).Inc()
			return nil, err
		}

		requestsTotal.WithLabelValues(op, outcomeOK).Inc()
		return data, nil
	}

	requestsTotal.WithLabelValues(op, outcomeError).Inc()
	return nil, fmt.Errorf("failed to execute %s after %d retries: %w", op, s.cfg.MaxRetries, ErrTooManyRetries)
}

func (s *GraphQLSource) doOnce(ctx context.Context, op string, endpoint string, token string, body []byte) (json.RawMessage, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	rq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	rq.Header.Set("Content-Type", "application/json")
	rq.Header.Set("Accept", "application/json")
	if token != "" {
		rq.Header.Set("Authorization", "Bearer "+token)
	}

	rs, err := s.httpClient.Do(rq)
	if err != nil {
		return nil, &retryableError{err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer rs.Body.Close()

	switch {
	case rs.StatusCode == http.StatusTooManyRequests:
		return nil, ErrTooManyRequests
	case rs.StatusCode == http.StatusBadGateway:
		return nil, &retryableError{err: fmt.Errorf("request failed with status code: %d", rs.StatusCode)}
	case rs.StatusCode != http.StatusOK:
		data, _ := io.ReadAll(rs.Body)
		slog.ErrorContext(ctx, "Campfire request failed", slog.String("operation", op), slog.Int("status_code", rs.StatusCode), slog.String("response", string(data)))
		return nil, &RequestError{StatusCode: rs.StatusCode, Body: string(data)}
	}

	logBuf := new(bytes.Buffer)
	bodyReader := io.TeeReader(rs.Body, logBuf)

	var resp Resp[json.RawMessage]
	if err = json.NewDecoder(bodyReader).Decode(&resp); err != nil {
		slog.ErrorContext(ctx, "Failed to decode response", slog.String("operation", op), slog.String("response", logBuf.String()), slog.Any("error", err))
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	for _, e := range resp.Errors {
		slog.ErrorContext(ctx, "Campfire GraphQL error", slog.String("operation", op), slog.String("message", e.String()))
	}

	return resp.Data, nil
}

func decodeData[T any](data json.RawMessage) (T, error) {
	var v T
	if len(data) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("failed to decode response data: %w", err)
	}
	return v, nil
}
