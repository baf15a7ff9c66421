package campfire

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/topi314/campfire-sync/internal/omit"
)

type Req struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type Resp[T any] struct {
	Errors []Error `json:"errors"`
	Data   T       `json:"data"`
}

type Error struct {
	Message string `json:"message"`
	Path    []any  `json:"path"`
}

func (e Error) String() string {
	return e.Error()
}

func (e Error) Error() string {
	msg := fmt.Sprintf("Error: %s", e.Message)
	if len(e.Path) > 0 {
		var path []string
		for _, p := range e.Path {
			path = append(path, fmt.Sprint(p))
		}
		msg += fmt.Sprintf(", Path: %v", strings.Join(path, "."))
	}
	return msg
}

type Pagination[T any] struct {
	TotalCount int       `json:"totalCount"`
	Edges      []Edge[T] `json:"edges"`
	PageInfo   PageInfo  `json:"pageInfo"`
}

type Edge[T any] struct {
	Node   T      `json:"node"`
	Cursor string `json:"cursor"`
}

type PageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	StartCursor string `json:"startCursor"`
	EndCursor   string `json:"endCursor"`
}

// Events is the public map object lookup result. Entries stay in server order
// and are not deduplicated.
type Events struct {
	PublicMapObjectsByID []PublicMapObject `json:"publicMapObjectsById"`
}

// PublicMapObject pairs a map object ID with the unauthenticated view of its
// event. The map object ID is what public meetup URLs carry, not the event ID.
type PublicMapObject struct {
	ID    string      `json:"id"`
	Event PublicEvent `json:"event"`
}

type PublicEvent struct {
	ID                       string            `json:"id"`
	Name                     string            `json:"name"`
	Details                  string            `json:"details"`
	ClubName                 string            `json:"clubName"`
	ClubID                   string            `json:"clubId"`
	ClubAvatarURL            string            `json:"clubAvatarUrl"`
	IsPasscodeRewardEligible bool              `json:"isPasscodeRewardEligible"`
	Place                    any               `json:"place"`
	MapObjectLocation        MapObjectLocation `json:"mapObjectLocation"`
	EventTime                string            `json:"eventTime"`
	EventEndTime             string            `json:"eventEndTime"`
	Address                  string            `json:"address"`
}

type MapObjectLocation struct {
	Latitude  omit.Omit[float64] `json:"latitude"`
	Longitude omit.Omit[float64] `json:"longitude"`
}

type eventResp struct {
	Event Event `json:"event"`
}

type Event struct {
	Typename                     string             `json:"__typename"`
	ID                           string             `json:"id"`
	Name                         string             `json:"name"`
	Visibility                   string             `json:"visibility"`
	Address                      string             `json:"address"`
	CoverPhotoURL                string             `json:"coverPhotoUrl"`
	Details                      string             `json:"details"`
	EventTime                    string             `json:"eventTime"`
	EventEndTime                 string             `json:"eventEndTime"`
	RSVPStatus                   string             `json:"rsvpStatus"`
	CreatedByCommunityAmbassador bool               `json:"createdByCommunityAmbassador"`
	BadgeGrants                  []string           `json:"badgeGrants"`
	TopicID                      string             `json:"topicId"`
	CommentCount                 int                `json:"commentCount"`
	DiscordInterested            int                `json:"discordInterested"`
	Creator                      Member             `json:"creator"`
	Club                         Club               `json:"club"`
	Members                      Pagination[Member] `json:"members"`
	IsPasscodeRewardEligible     bool               `json:"isPasscodeRewardEligible"`
	CommentsPermissions          string             `json:"commentsPermissions"`
	CommentsPreview              []any              `json:"commentsPreview"`
	IsSubscribed                 bool               `json:"isSubscribed"`
	CampfireLiveEventID          string             `json:"campfireLiveEventId"`
	CampfireLiveEvent            CampfireLiveEvent  `json:"campfireLiveEvent"`
	MapPreviewURL                string             `json:"mapPreviewUrl"`
	Location                     string             `json:"location"`
	Passcode                     string             `json:"passcode"`
	RSVPStatuses                 []RSVPStatus       `json:"rsvpStatuses"`
	Game                         string             `json:"game"`
	ClubID                       string             `json:"clubId"`
	CheckedInMembersCount        int                `json:"checkedInMembersCount"`
	Raw                          []byte             `json:"-"`
}

func (e *Event) UnmarshalJSON(data []byte) error {
	type Alias Event
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.BadgeGrants == nil {
		a.BadgeGrants = []string{}
	}
	if a.RSVPStatuses == nil {
		a.RSVPStatuses = []RSVPStatus{}
	}
	*e = Event(a)
	e.Raw = data
	return nil
}

// CampfireLiveEvent is the optional live event an event is attached to. An
// absent live event decodes to the zero value.
type CampfireLiveEvent struct {
	ID                   string         `json:"id"`
	EventName            string         `json:"eventName"`
	ModalHeadingImageURL string         `json:"modalHeadingImageUrl"`
	CheckInRadiusMeters  omit.Omit[int] `json:"checkInRadiusMeters"`
}

type RSVPStatus struct {
	UserID     string `json:"userId"`
	RSVPStatus string `json:"rsvpStatus"`
}

type clubResp struct {
	Club Club `json:"club"`
}

type Club struct {
	ID                           string   `json:"id"`
	Name                         string   `json:"name"`
	AvatarURL                    string   `json:"avatarUrl"`
	Visibility                   string   `json:"visibility"`
	MyPermissions                []string `json:"myPermissions"`
	BadgeGrants                  []string `json:"badgeGrants"`
	CreatedByCommunityAmbassador bool     `json:"createdByCommunityAmbassador"`
	Game                         string   `json:"game"`
	AmIMember                    bool     `json:"amIMember"`
	Creator                      Member   `json:"creator"`
	Raw                          []byte   `json:"-"`
}

func (c *Club) UnmarshalJSON(data []byte) error {
	type Alias Club
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.MyPermissions == nil {
		a.MyPermissions = []string{}
	}
	if a.BadgeGrants == nil {
		a.BadgeGrants = []string{}
	}
	*c = Club(a)
	c.Raw = data
	return nil
}

type archivedFeedResp struct {
	Club ArchivedFeed `json:"club"`
}

// ArchivedFeed is one page of a club's archived meetups feed.
type ArchivedFeed struct {
	ArchivedFeed Pagination[Event] `json:"archivedFeed"`
	Raw          []byte            `json:"-"`
}

func (c *ArchivedFeed) UnmarshalJSON(data []byte) error {
	type Alias ArchivedFeed
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = ArchivedFeed(a)
	c.Raw = data
	return nil
}

type Member struct {
	ID          string         `json:"id"`
	Username    string         `json:"username"`
	DisplayName string         `json:"displayName"`
	AvatarURL   string         `json:"avatarUrl"`
	Badges      []Badge        `json:"badges"`
	ClubRoles   []ClubRole     `json:"clubRoles"`
	ClubRank    omit.Omit[int] `json:"clubRank"`
	Raw         []byte         `json:"-"`
}

func (m *Member) UnmarshalJSON(data []byte) error {
	type Alias Member
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.Badges == nil {
		a.Badges = []Badge{}
	}
	if a.ClubRoles == nil {
		a.ClubRoles = []ClubRole{}
	}
	*m = Member(a)
	m.Raw = data
	return nil
}

type ClubRole struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Badge struct {
	Alias     string `json:"alias"`
	BadgeType string `json:"badgeType"`
}
