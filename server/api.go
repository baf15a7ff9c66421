package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/topi314/campfire-sync/server/campfire"
	"github.com/topi314/campfire-sync/server/database"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", slog.Any("err", err))
	}
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, errorResponse{Detail: detail})
}

func (s *Server) NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "Not found.")
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) CampfireConfig(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, campfireConfigResponse{
		EverySeconds: s.Cfg.Campfire.Every.AsDuration().Seconds(),
		Burst:        s.Cfg.Campfire.Burst,
		MaxRetries:   s.Cfg.Campfire.MaxRetries,
	})
}

type campfireConfigResponse struct {
	EverySeconds float64 `json:"every_seconds"`
	Burst        int     `json:"burst"`
	MaxRetries   int     `json:"max_retries"`
}

type memberResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username"`
	AvatarURL   string `json:"avatar_url"`
	ClubRank    *int   `json:"club_rank"`
}

func newMemberResponse(member database.Member) *memberResponse {
	if member.ID == "" {
		return nil
	}
	return &memberResponse{
		ID:          member.ID,
		DisplayName: member.DisplayName,
		Username:    member.Username,
		AvatarURL:   member.AvatarURL,
		ClubRank:    member.ClubRank,
	}
}

type clubResponse struct {
	ID                           string          `json:"id"`
	Name                         string          `json:"name"`
	Game                         string          `json:"game"`
	Visibility                   string          `json:"visibility"`
	AvatarURL                    string          `json:"avatar_url"`
	CreatedByCommunityAmbassador bool            `json:"created_by_community_ambassador"`
	BadgeGrants                  []string        `json:"badge_grants"`
	Creator                      *memberResponse `json:"creator"`
}

func newClubResponse(club database.Club, creator database.Member) clubResponse {
	badges := []string(club.BadgeGrants)
	if badges == nil {
		badges = []string{}
	}
	return clubResponse{
		ID:                           club.ID,
		Name:                         club.Name,
		Game:                         club.Game,
		Visibility:                   club.Visibility,
		AvatarURL:                    club.AvatarURL,
		CreatedByCommunityAmbassador: club.CreatedByCommunityAmbassador,
		BadgeGrants:                  badges,
		Creator:                      newMemberResponse(creator),
	}
}

type eventRSVPResponse struct {
	Member *memberResponse `json:"member"`
	Status string          `json:"status"`
}

type eventResponse struct {
	ID                           string              `json:"id"`
	Name                         string              `json:"name"`
	Details                      string              `json:"details"`
	Address                      string              `json:"address"`
	Location                     string              `json:"location"`
	URL                          string              `json:"url"`
	CoverPhotoURL                string              `json:"cover_photo_url"`
	MapPreviewURL                string              `json:"map_preview_url"`
	EventTime                    time.Time           `json:"event_time"`
	EventEndTime                 time.Time           `json:"event_end_time"`
	Finished                     bool                `json:"finished"`
	RSVPStatus                   string              `json:"rsvp_status"`
	CreatedByCommunityAmbassador bool                `json:"created_by_community_ambassador"`
	DiscordInterested            int                 `json:"discord_interested"`
	BadgeGrants                  []string            `json:"badge_grants"`
	CampfireLiveEventID          string              `json:"campfire_live_event_id"`
	CampfireLiveEventName        string              `json:"campfire_live_event_name"`
	CheckedInMembersCount        int                 `json:"checked_in_members_count"`
	MembersTotal                 int                 `json:"members_total"`
	Club                         clubResponse        `json:"club"`
	Creator                      *memberResponse     `json:"creator"`
	RSVPs                        []eventRSVPResponse `json:"rsvps"`
}

func newEventResponse(event database.Event, club clubResponse, creator database.Member, members []database.EventMember) eventResponse {
	badges := []string(event.BadgeGrants)
	if badges == nil {
		badges = []string{}
	}
	rsvps := make([]eventRSVPResponse, 0, len(members))
	for _, member := range members {
		rsvps = append(rsvps, eventRSVPResponse{
			Member: newMemberResponse(member.Member),
			Status: member.Status,
		})
	}
	return eventResponse{
		ID:                           event.ID,
		Name:                         event.Name,
		Details:                      event.Details,
		Address:                      event.Address,
		Location:                     event.Location,
		URL:                          campfire.EventURL(event.ID),
		CoverPhotoURL:                event.CoverPhotoURL,
		MapPreviewURL:                event.MapPreviewURL,
		EventTime:                    event.EventTime,
		EventEndTime:                 event.EventEndTime,
		Finished:                     event.Finished,
		RSVPStatus:                   event.RSVPStatus,
		CreatedByCommunityAmbassador: event.CreatedByCommunityAmbassador,
		DiscordInterested:            event.DiscordInterested,
		BadgeGrants:                  badges,
		CampfireLiveEventID:          event.CampfireLiveEventID,
		CampfireLiveEventName:        event.CampfireLiveEventName,
		CheckedInMembersCount:        event.CheckedInMembersCount,
		MembersTotal:                 event.MembersTotal,
		Club:                         club,
		Creator:                      newMemberResponse(creator),
		RSVPs:                        rsvps,
	}
}

type eventSummaryResponse struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	URL                   string    `json:"url"`
	CoverPhotoURL         string    `json:"cover_photo_url"`
	EventTime             time.Time `json:"event_time"`
	EventEndTime          time.Time `json:"event_end_time"`
	Finished              bool      `json:"finished"`
	CampfireLiveEventID   string    `json:"campfire_live_event_id"`
	CampfireLiveEventName string    `json:"campfire_live_event_name"`
	CheckedInMembersCount int       `json:"checked_in_members_count"`
	MembersTotal          int       `json:"members_total"`
	Accepted              int       `json:"accepted"`
	CheckIns              int       `json:"check_ins"`
}

func newEventSummaryResponse(event database.EventWithStats) eventSummaryResponse {
	return eventSummaryResponse{
		ID:                    event.ID,
		Name:                  event.Name,
		URL:                   campfire.EventURL(event.ID),
		CoverPhotoURL:         event.CoverPhotoURL,
		EventTime:             event.EventTime,
		EventEndTime:          event.EventEndTime,
		Finished:              event.Finished,
		CampfireLiveEventID:   event.CampfireLiveEventID,
		CampfireLiveEventName: event.CampfireLiveEventName,
		CheckedInMembersCount: event.CheckedInMembersCount,
		MembersTotal:          event.MembersTotal,
		Accepted:              event.Accepted,
		CheckIns:              event.CheckIns,
	}
}

type tokenResponse struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func newTokenResponse(token database.CampfireToken) tokenResponse {
	return tokenResponse{
		ID:        token.ID,
		Email:     token.Email,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: token.CreatedAt,
	}
}

type importJobResponse struct {
	ID              int        `json:"id"`
	ClubID          string     `json:"club_id"`
	ClubName        string     `json:"club_name,omitempty"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	LastTriedAt     *time.Time `json:"last_tried_at"`
	Error           string     `json:"error,omitempty"`
	EventsImported  int        `json:"events_imported"`
	MembersImported int        `json:"members_imported"`
	RSVPsImported   int        `json:"rsvps_imported"`
	EventIDs        []string   `json:"event_ids"`
}

func newImportJobResponse(job database.ClubImportJob) importJobResponse {
	eventIDs := job.State.V.EventIDs
	if eventIDs == nil {
		eventIDs = []string{}
	}
	return importJobResponse{
		ID:              job.ID,
		ClubID:          job.ClubID,
		Status:          string(job.Status),
		CreatedAt:       job.CreatedAt,
		CompletedAt:     nullableTime(job.CompletedAt),
		LastTriedAt:     nullableTime(job.LastTriedAt),
		Error:           job.Error,
		EventsImported:  job.State.V.Events,
		MembersImported: job.State.V.Members,
		RSVPsImported:   job.State.V.RSVPs,
		EventIDs:        eventIDs,
	}
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
