package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/topi314/campfire-sync/server/campfire"
	"github.com/topi314/campfire-sync/server/database"
)

type resolveResponse struct {
	EventID string `json:"event_id"`
	URL     string `json:"url"`
}

// Resolve resolves a meetup URL into the canonical event ID without importing
// anything.
func (s *Server) Resolve(w http.ResponseWriter, r *http.Request) {
	meetupURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if meetupURL == "" {
		respondError(w, http.StatusBadRequest, "Provide a ?url= to resolve.")
		return
	}

	eventID, err := s.Campfire.ResolveEventID(r.Context(), meetupURL)
	if err != nil {
		if errors.Is(err, campfire.ErrUnsupportedMeetup) {
			respondError(w, http.StatusBadRequest, "Meetups without location are not supported.")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, resolveResponse{
		EventID: eventID,
		URL:     campfire.EventURL(eventID),
	})
}

type importEventRequest struct {
	Event string `json:"event"`
}

// ImportEvent fetches an event by ID or meetup URL, persists it and returns
// the stored representation.
func (s *Server) ImportEvent(w http.ResponseWriter, r *http.Request) {
	var req importEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	reference := strings.TrimSpace(req.Event)
	if reference == "" {
		respondError(w, http.StatusBadRequest, "Provide an event ID or meetup URL.")
		return
	}

	ctx := r.Context()

	var (
		event *campfire.Event
		err   error
	)
	if strings.HasPrefix(reference, "http://") || strings.HasPrefix(reference, "https://") {
		event, err = s.Campfire.ResolveEvent(ctx, reference)
	} else {
		event, err = s.Campfire.GetEvent(ctx, reference)
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if event.ID == "" {
		respondError(w, http.StatusNotFound, "Event not found.")
		return
	}

	if err = s.processEventImport(ctx, *event); err != nil {
		slog.ErrorContext(ctx, "Failed to persist imported event", slog.String("event_id", event.ID), slog.Any("err", err))
		respondError(w, http.StatusInternalServerError, "Failed to persist event.")
		return
	}

	s.respondEvent(w, r, event.ID, http.StatusCreated)
}

// GetEvent returns a stored event together with its club, creator and RSVPs.
func (s *Server) GetEvent(w http.ResponseWriter, r *http.Request) {
	s.respondEvent(w, r, r.PathValue("event_id"), http.StatusOK)
}

func (s *Server) respondEvent(w http.ResponseWriter, r *http.Request, eventID string, status int) {
	ctx := r.Context()

	event, err := s.DB.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "Not found.")
			return
		}
		slog.ErrorContext(ctx, "Failed to get event", slog.String("event_id", eventID), slog.Any("err", err))
		respondError(w, http.StatusInternalServerError, "Failed to load event.")
		return
	}

	club := clubResponse{ID: event.ClubID, BadgeGrants: []string{}}
	if dbClub, clubErr := s.DB.GetClub(ctx, event.ClubID); clubErr == nil {
		club = newClubResponse(dbClub.Club, dbClub.Member)
	} else if !errors.Is(clubErr, sql.ErrNoRows) {
		slog.ErrorContext(ctx, "Failed to get event club", slog.String("club_id", event.ClubID), slog.Any("err", clubErr))
		respondError(w, http.StatusInternalServerError, "Failed to load event.")
		return
	}

	var creator database.Member
	if member, creatorErr := s.DB.GetMember(ctx, event.CreatorID); creatorErr == nil {
		creator = *member
	} else if !errors.Is(creatorErr, sql.ErrNoRows) {
		slog.ErrorContext(ctx, "Failed to get event creator", slog.String("member_id", event.CreatorID), slog.Any("err", creatorErr))
		respondError(w, http.StatusInternalServerError, "Failed to load event.")
		return
	}

	members, err := s.DB.GetEventMembers(ctx, event.ID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to get event members", slog.String("event_id", event.ID), slog.Any("err", err))
		respondError(w, http.StatusInternalServerError, "Failed to load event.")
		return
	}

	respondJSON(w, status, newEventResponse(*event, club, creator, members))
}
