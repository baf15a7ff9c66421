package server

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/topi314/campfire-sync/internal/tsync"
	"github.com/topi314/campfire-sync/internal/xerrors"
	"github.com/topi314/campfire-sync/server/campfire"
)

const maxExportURLs = 50

type exportRequest struct {
	URLs                  []string `json:"urls"`
	IncludeMissingMembers bool     `json:"include_missing_members"`
}

// Export fetches the given meetups concurrently and streams their RSVP lists
// as one combined CSV. Meetups without location and events without RSVPs are
// skipped.
func (s *Server) Export(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	slog.InfoContext(r.Context(), "Received export request", slog.Int("urls", len(req.URLs)), slog.Bool("include_missing_members", req.IncludeMissingMembers))

	if len(req.URLs) == 0 {
		respondError(w, http.StatusBadRequest, "Provide at least one meetup URL.")
		return
	}
	if len(req.URLs) > maxExportURLs {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Please limit the number of URLs to %d, got %d.", maxExportURLs, len(req.URLs)))
		return
	}

	eg, ctx := tsync.ErrorGroupWithContext(r.Context())
	var (
		mu     sync.Mutex
		events []campfire.Event
	)
	for _, url := range req.URLs {
		meetupURL := strings.TrimSpace(url)
		if meetupURL == "" {
			continue
		}

		eg.Go(func() error {
			event, err := s.Campfire.ResolveEvent(ctx, meetupURL)
			if err != nil {
				if errors.Is(err, campfire.ErrUnsupportedMeetup) {
					return nil
				}
				return fmt.Errorf("failed to fetch event from URL %q: %w", meetupURL, err)
			}

			// ignore events without RSVP statuses
			if len(event.RSVPStatuses) == 0 {
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			events = append(events, *event)

			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		slog.ErrorContext(r.Context(), "Failed to fetch events", slog.Any("err", err))
		details := make([]string, 0)
		for _, fetchErr := range xerrors.Unwrap(err) {
			details = append(details, fetchErr.Error())
		}
		respondError(w, http.StatusInternalServerError, "Failed to fetch events: "+strings.Join(details, "; "))
		return
	}

	if len(events) == 0 {
		respondError(w, http.StatusBadRequest, "No events found for the provided URLs.")
		return
	}

	slog.InfoContext(r.Context(), "Fetched events for export", slog.Int("events", len(events)))

	records := [][]string{
		{"id", "name", "status", "event_id", "event_name"},
	}
	for _, event := range events {
		for _, rsvpStatus := range event.RSVPStatuses {
			name, ok := campfire.FindMemberName(rsvpStatus.UserID, event)
			if !ok && !req.IncludeMissingMembers {
				continue
			}

			records = append(records, []string{
				rsvpStatus.UserID,
				name,
				rsvpStatus.RSVPStatus,
				event.ID,
				event.Name,
			})
		}
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=export.csv")
	if err := csv.NewWriter(w).WriteAll(records); err != nil {
		slog.ErrorContext(r.Context(), "Failed to write CSV records", slog.Any("err", err))
	}
}
