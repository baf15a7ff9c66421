package server

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/lib/pq"

	"github.com/topi314/campfire-sync/server/campfire"
	"github.com/topi314/campfire-sync/server/database"
)

var ErrContinueLater = errors.New("continue later")

const (
	importInterval     = 5 * time.Second
	autoImportInterval = time.Minute
	autoImportAfter    = 24 * time.Hour
)

func (s *Server) importClubs() {
	id, wake := s.importNotifier.Subscribe()
	defer s.importNotifier.Unsubscribe(id)

	for {
		s.doImportClubs()

		select {
		case _, ok := <-wake:
			if !ok {
				return
			}
		case <-time.After(importInterval):
		}
	}
}

func (s *Server) doImportClubs() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.doImportNextClub(ctx); err != nil {
		slog.ErrorContext(ctx, "Failed to import next club", slog.Any("err", err))
	}
}

func (s *Server) doImportNextClub(ctx context.Context) error {
	job, err := s.DB.GetNextPendingClubImportJob(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}

	slog.InfoContext(ctx, "Importing club history", slog.Int("job_id", job.ID), slog.String("club_id", job.ClubID))

	job.LastTriedAt = time.Now()
	state, err := s.importClubEvents(ctx, *job, job.State.V)
	if err != nil {
		if errors.Is(err, ErrContinueLater) {
			job.Status = database.ClubImportJobStatusPending
		} else {
			job.Status = database.ClubImportJobStatusFailed
			job.Error = err.Error()
		}
	} else {
		job.Status = database.ClubImportJobStatusCompleted
		job.CompletedAt = time.Now()
	}
	job.State.V = state

	if updateErr := s.DB.UpdateClubImportJob(context.WithoutCancel(ctx), *job); updateErr != nil {
		slog.ErrorContext(ctx, "Failed to update club import job", slog.Int("job_id", job.ID), slog.Any("err", updateErr))
	}

	switch job.Status {
	case database.ClubImportJobStatusCompleted:
		s.SendNotification(ctx, fmt.Sprintf("Finished club history import for `%s`: `%d` events, `%d` members, `%d` RSVPs", job.ClubID, state.Events, state.Members, state.RSVPs))
	case database.ClubImportJobStatusFailed:
		s.SendNotification(ctx, fmt.Sprintf("Club history import for `%s` failed: %s", job.ClubID, job.Error))
	}

	if errors.Is(err, ErrContinueLater) {
		return nil
	}
	return err
}

// importClubEvents walks the club's archived meetups from the stored cursor
// and persists every event it gets back. Transient campfire failures keep the
// job pending so the next attempt resumes at the cursor.
func (s *Server) importClubEvents(ctx context.Context, job database.ClubImportJob, state database.ClubImportJobState) (database.ClubImportJobState, error) {
	events, cursor, err := s.Campfire.GetPastMeetupsFrom(ctx, job.ClubID, state.EventCursor)
	state.EventCursor = cursor

	for _, event := range events {
		if persistErr := s.processEventImport(ctx, event); persistErr != nil {
			return state, persistErr
		}

		if slices.Contains(state.EventIDs, event.ID) {
			continue
		}
		state.EventIDs = append(state.EventIDs, event.ID)
		state.Events++
		state.Members += len(event.Members.Edges)
		state.RSVPs += len(event.RSVPStatuses)
	}

	if err != nil {
		if isTransientImportError(err) {
			return state, ErrContinueLater
		}
		return state, err
	}

	if len(state.EventIDs) == 0 {
		slog.InfoContext(ctx, "No past meetups found for club", slog.String("club_id", job.ClubID))
	}

	return state, nil
}

func isTransientImportError(err error) bool {
	return errors.Is(err, campfire.ErrTooManyRequests) ||
		errors.Is(err, campfire.ErrTooManyRetries) ||
		errors.Is(err, campfire.ErrNoToken) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}

// processEventImport persists a fully fetched event: club creator and club
// first, then all members, then the event and finally its RSVPs. Unknown RSVP
// user IDs get placeholder member rows so the RSVPs can reference them.
func (s *Server) processEventImport(ctx context.Context, event campfire.Event) error {
	if event.Club.ID != "" {
		if err := s.persistClub(ctx, event.Club); err != nil {
			return err
		}
	}

	members := make([]database.Member, 0, len(event.Members.Edges)+1)
	if event.Creator.ID != "" {
		members = append(members, newDBMember(event.Creator))
	}
	for _, edge := range event.Members.Edges {
		if slices.ContainsFunc(members, func(m database.Member) bool {
			return m.ID == edge.Node.ID
		}) {
			continue
		}
		members = append(members, newDBMember(edge.Node))
	}

	var placeholders []database.Member
	for _, rsvpStatus := range event.RSVPStatuses {
		if slices.ContainsFunc(members, func(m database.Member) bool {
			return m.ID == rsvpStatus.UserID
		}) || slices.ContainsFunc(placeholders, func(m database.Member) bool {
			return m.ID == rsvpStatus.UserID
		}) {
			continue
		}
		placeholders = append(placeholders, database.Member{
			ID:      rsvpStatus.UserID,
			RawJSON: []byte("{}"),
		})
	}

	if err := s.DB.InsertMembers(ctx, members); err != nil {
		return fmt.Errorf("failed to insert event members: %w", err)
	}

	if len(placeholders) > 0 {
		if err := s.DB.EnsureMembers(ctx, placeholders); err != nil {
			return fmt.Errorf("failed to insert placeholder members: %w", err)
		}
	}

	if err := s.DB.InsertEvent(ctx, newDBEvent(ctx, event)); err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	rsvps := make([]database.EventRSVP, 0, len(event.RSVPStatuses))
	rsvpIndex := make(map[string]int, len(event.RSVPStatuses))
	for _, rsvpStatus := range event.RSVPStatuses {
		if i, ok := rsvpIndex[rsvpStatus.UserID]; ok {
			rsvps[i].Status = rsvpStatus.RSVPStatus
			continue
		}
		rsvpIndex[rsvpStatus.UserID] = len(rsvps)
		rsvps = append(rsvps, database.EventRSVP{
			EventID:  event.ID,
			MemberID: rsvpStatus.UserID,
			Status:   rsvpStatus.RSVPStatus,
		})
	}

	if err := s.DB.ReplaceEventRSVPs(ctx, event.ID, rsvps); err != nil {
		return fmt.Errorf("failed to replace event RSVPs: %w", err)
	}

	return nil
}

func (s *Server) persistClub(ctx context.Context, club campfire.Club) error {
	if club.Creator.ID != "" {
		if err := s.DB.InsertMembers(ctx, []database.Member{newDBMember(club.Creator)}); err != nil {
			return fmt.Errorf("failed to insert club creator: %w", err)
		}
	}

	if err := s.DB.InsertClubs(ctx, []database.Club{newDBClub(club)}); err != nil {
		return fmt.Errorf("failed to insert club: %w", err)
	}

	return nil
}

func (s *Server) autoImportClubs() {
	for {
		s.doAutoImportClubs()
		time.Sleep(autoImportInterval)
	}
}

func (s *Server) doAutoImportClubs() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.enqueueNextAutoImport(ctx); err != nil {
		slog.ErrorContext(ctx, "Failed to enqueue club auto import", slog.Any("err", err))
	}
}

func (s *Server) enqueueNextAutoImport(ctx context.Context) error {
	club, err := s.DB.GetNextAutoImportClub(ctx, time.Now().Add(-autoImportAfter))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}

	jobs, err := s.DB.GetClubImportJobsByClub(ctx, club.ID)
	if err != nil {
		return err
	}

	if !slices.ContainsFunc(jobs, func(job database.ClubImportJob) bool {
		return job.Status == database.ClubImportJobStatusPending
	}) {
		if _, err = s.DB.InsertClubImportJob(ctx, database.ClubImportJob{
			ClubID: club.ID,
			Status: database.ClubImportJobStatusPending,
		}); err != nil {
			return err
		}

		slog.InfoContext(ctx, "Enqueued club auto import", slog.String("club_id", club.ID), slog.String("club_name", club.Name))
		s.importNotifier.Notify()
	}

	return s.DB.UpdateClubLastAutoEventImported(ctx, club.ID)
}

func newDBMember(member campfire.Member) database.Member {
	raw := member.Raw
	if raw == nil {
		raw = []byte("{}")
	}
	var rank *int
	if member.ClubRank.OK {
		rank = &member.ClubRank.Value
	}
	return database.Member{
		ID:          member.ID,
		Username:    member.Username,
		DisplayName: member.DisplayName,
		AvatarURL:   member.AvatarURL,
		ClubRank:    rank,
		RawJSON:     raw,
	}
}

func newDBClub(club campfire.Club) database.Club {
	raw := club.Raw
	if raw == nil {
		raw = []byte("{}")
	}
	badges := club.BadgeGrants
	if badges == nil {
		badges = []string{}
	}
	return database.Club{
		ID:                           club.ID,
		Name:                         club.Name,
		AvatarURL:                    club.AvatarURL,
		Game:                         club.Game,
		Visibility:                   club.Visibility,
		CreatorID:                    club.Creator.ID,
		CreatedByCommunityAmbassador: club.CreatedByCommunityAmbassador,
		BadgeGrants:                  pq.StringArray(badges),
		RawJSON:                      raw,
	}
}

func newDBEvent(ctx context.Context, event campfire.Event) database.Event {
	raw := event.Raw
	if raw == nil {
		raw = []byte("{}")
	}
	badges := event.BadgeGrants
	if badges == nil {
		badges = []string{}
	}

	eventTime := parseEventTime(ctx, event.ID, "eventTime", event.EventTime)
	eventEndTime := parseEventTime(ctx, event.ID, "eventEndTime", event.EventEndTime)

	return database.Event{
		ID:                           event.ID,
		Name:                         event.Name,
		Details:                      event.Details,
		Address:                      event.Address,
		Location:                     event.Location,
		CreatorID:                    event.Creator.ID,
		CoverPhotoURL:                event.CoverPhotoURL,
		MapPreviewURL:                event.MapPreviewURL,
		EventTime:                    eventTime,
		EventEndTime:                 eventEndTime,
		Finished:                     !eventEndTime.IsZero() && eventEndTime.Before(time.Now()),
		RSVPStatus:                   event.RSVPStatus,
		DiscordInterested:            event.DiscordInterested,
		CreatedByCommunityAmbassador: event.CreatedByCommunityAmbassador,
		BadgeGrants:                  pq.StringArray(badges),
		CampfireLiveEventID:          event.CampfireLiveEventID,
		CampfireLiveEventName:        event.CampfireLiveEvent.EventName,
		CheckedInMembersCount:        event.CheckedInMembersCount,
		MembersTotal:                 event.Members.TotalCount,
		ClubID:                       cmp.Or(event.ClubID, event.Club.ID),
		RawJSON:                      raw,
	}
}

func parseEventTime(ctx context.Context, eventID string, field string, value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		slog.WarnContext(ctx, "Failed to parse event time", slog.String("event_id", eventID), slog.String("field", field), slog.Any("err", err))
		return time.Time{}
	}
	return t
}
