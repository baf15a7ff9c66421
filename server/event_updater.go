package server

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"
)

const eventUpdateInterval = 30 * time.Minute

func (s *Server) updateEvents() {
	for {
		s.doUpdateEvents()
		time.Sleep(10 * time.Second)
	}
}

func (s *Server) doUpdateEvents() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.doUpdateNextEvent(ctx); err != nil {
		slog.ErrorContext(ctx, "Failed to update next event", slog.Any("err", err))
	}
}

func (s *Server) doUpdateNextEvent(ctx context.Context) error {
	event, err := s.DB.GetNextUpdateEvent(ctx, time.Now().Add(-eventUpdateInterval))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}

	slog.InfoContext(ctx, "Updating event", slog.String("club_id", event.ClubID), slog.String("event_id", event.ID), slog.String("event_name", event.Name))

	return s.refreshEvent(ctx, event.ID)
}

// refreshEvent refetches an unfinished event and persists the fresh data. An
// event that no longer exists upstream is marked finished so it is not
// fetched again.
func (s *Server) refreshEvent(ctx context.Context, eventID string) error {
	event, err := s.Campfire.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}

	if event.ID == "" {
		slog.InfoContext(ctx, "Event no longer exists, marking it finished", slog.String("event_id", eventID))
		return s.DB.SetEventFinished(ctx, eventID, true)
	}

	if err = s.processEventImport(ctx, *event); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Updated event",
		slog.String("club_id", event.ClubID),
		slog.String("event_id", event.ID),
		slog.String("event_name", event.Name),
		slog.Int("rsvps", len(event.RSVPStatuses)),
		slog.Int("members", len(event.Members.Edges)),
	)

	return nil
}
