package database

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

type Club struct {
	ID                           string          `db:"club_id"`
	Name                         string          `db:"club_name"`
	AvatarURL                    string          `db:"club_avatar_url"`
	Game                         string          `db:"club_game"`
	Visibility                   string          `db:"club_visibility"`
	CreatorID                    string          `db:"club_creator_id"`
	CreatedByCommunityAmbassador bool            `db:"club_created_by_community_ambassador"`
	BadgeGrants                  pq.StringArray  `db:"club_badge_grants"`
	LastAutoEventImportAt        time.Time       `db:"club_last_auto_event_import_at"`
	ImportedAt                   time.Time       `db:"club_imported_at"`
	RawJSON                      json.RawMessage `db:"club_raw_json"`
}

type ClubWithCreator struct {
	Club
	Member
}

type Event struct {
	ID                           string          `db:"event_id"`
	Name                         string          `db:"event_name"`
	Details                      string          `db:"event_details"`
	Address                      string          `db:"event_address"`
	Location                     string          `db:"event_location"`
	CreatorID                    string          `db:"event_creator_id"`
	CoverPhotoURL                string          `db:"event_cover_photo_url"`
	MapPreviewURL                string          `db:"event_map_preview_url"`
	EventTime                    time.Time       `db:"event_time"`
	EventEndTime                 time.Time       `db:"event_end_time"`
	Finished                     bool            `db:"event_finished"`
	RSVPStatus                   string          `db:"event_rsvp_status"`
	DiscordInterested            int             `db:"event_discord_interested"`
	CreatedByCommunityAmbassador bool            `db:"event_created_by_community_ambassador"`
	BadgeGrants                  pq.StringArray  `db:"event_badge_grants"`
	CampfireLiveEventID          string          `db:"event_campfire_live_event_id"`
	CampfireLiveEventName        string          `db:"event_campfire_live_event_name"`
	CheckedInMembersCount        int             `db:"event_checked_in_members_count"`
	MembersTotal                 int             `db:"event_members_total"`
	ClubID                       string          `db:"event_club_id"`
	ImportedAt                   time.Time       `db:"event_imported_at"`
	RawJSON                      json.RawMessage `db:"event_raw_json"`
}

type EventWithStats struct {
	Event
	Accepted int `db:"accepted"`
	CheckIns int `db:"check_ins"`
}

type Member struct {
	ID          string          `db:"member_id"`
	Username    string          `db:"member_username"`
	DisplayName string          `db:"member_display_name"`
	AvatarURL   string          `db:"member_avatar_url"`
	ClubRank    *int            `db:"member_club_rank"`
	ImportedAt  time.Time       `db:"member_imported_at"`
	RawJSON     json.RawMessage `db:"member_raw_json"`
}

type EventRSVP struct {
	EventID    string    `db:"event_rsvp_event_id"`
	MemberID   string    `db:"event_rsvp_member_id"`
	Status     string    `db:"event_rsvp_status"`
	ImportedAt time.Time `db:"event_rsvp_imported_at"`
}

type EventMember struct {
	Member
	Status string `db:"event_rsvp_status"`
}
