package campfire

import (
	"context"
	"net/http"
	"regexp"
	"strings"
)

const (
	shortURLPrefix              = "https://cmpf.re/"
	publicMeetupPrefix          = "https://niantic-social.nianticlabs.com/public/meetup/"
	meetupWithoutLocationPrefix = "https://niantic-social.nianticlabs.com/public/meetup-without-location/"
	discoverMeetupPrefix        = "https://campfire.nianticlabs.com/discover/meetup/"
)

var meetupURLRegex = regexp.MustCompile(`https://(?:niantic-social\.nianticlabs\.com/public/meetup(?:-without-location)?|campfire\.nianticlabs\.com/discover/meetup)/[a-zA-Z0-9-]+`)

func isMeetupURL(url string) bool {
	return strings.HasPrefix(url, publicMeetupPrefix) ||
		strings.HasPrefix(url, meetupWithoutLocationPrefix) ||
		strings.HasPrefix(url, discoverMeetupPrefix)
}

// EventURL returns the public discover link for an event.
func EventURL(eventID string) string {
	return discoverMeetupPrefix + eventID
}

// TokenFunc supplies the bearer token for authenticated Campfire requests. An
// empty token with a nil error means no token is currently available.
type TokenFunc func(ctx context.Context) (string, error)

// DataSource is the transport the client operates on. GraphQLSource talks to
// the real API, MemorySource serves from memory.
type DataSource interface {
	ResolveShortURL(ctx context.Context, shortURL string) (string, error)
	FetchEvent(ctx context.Context, eventID string) (*Event, error)
	FetchPublicEvents(ctx context.Context, mapObjectIDs []string) (*Events, error)
	FetchClub(ctx context.Context, clubID string) (*Club, error)
	FetchArchivedMeetups(ctx context.Context, clubID string, after *string) (*ArchivedFeed, error)
}

func New(cfg Config, token TokenFunc, httpClient *http.Client) (*Client, error) {
	source, err := NewGraphQLSource(cfg, token, httpClient)
	if err != nil {
		return nil, err
	}
	return &Client{source: source}, nil
}

func NewWithSource(source DataSource) *Client {
	return &Client{source: source}
}

type Client struct {
	source DataSource
}
