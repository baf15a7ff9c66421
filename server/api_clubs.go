package server

import (
	"cmp"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/topi314/campfire-sync/internal/xquery"
	"github.com/topi314/campfire-sync/server/campfire"
	"github.com/topi314/campfire-sync/server/database"
)

// LookupClub resolves a club by share URL or ID, persists it and returns the
// stored representation. The ?club= parameter takes free-form text, ?url= and
// ?id= take the reference directly.
func (s *Server) LookupClub(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	input := strings.TrimSpace(cmp.Or(query.Get("club"), query.Get("query")))

	var (
		clubURL string
		clubID  string
		err     error
	)
	if input != "" {
		clubURL, clubID, err = normalizeClubLookup(input, true, "")
	} else {
		clubURL, clubID, err = normalizeClubLookup(query.Get("url"), false, clubRefURL)
		if err == nil && clubURL == "" && clubID == "" {
			clubURL, clubID, err = normalizeClubLookup(query.Get("id"), false, clubRefID)
		}
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if clubURL == "" && clubID == "" {
		respondError(w, http.StatusBadRequest, "Provide ?club=, ?url=, or ?id= to lookup a club.")
		return
	}

	ctx := r.Context()

	var club *campfire.Club
	if clubURL != "" {
		club, err = s.Campfire.ResolveClub(ctx, clubURL)
	} else {
		club, err = s.Campfire.GetClub(ctx, clubID)
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if club.ID == "" {
		respondError(w, http.StatusNotFound, "Club not found.")
		return
	}

	if err = s.persistClub(ctx, *club); err != nil {
		slog.ErrorContext(ctx, "Failed to persist club", slog.String("club_id", club.ID), slog.Any("err", err))
		respondError(w, http.StatusInternalServerError, "Failed to persist club.")
		return
	}

	s.respondClub(w, r, club.ID, http.StatusOK)
}

// GetClub returns a stored club.
func (s *Server) GetClub(w http.ResponseWriter, r *http.Request) {
	s.respondClub(w, r, r.PathValue("club_id"), http.StatusOK)
}

func (s *Server) respondClub(w http.ResponseWriter, r *http.Request, clubID string, status int) {
	ctx := r.Context()

	club, err := s.DB.GetClub(ctx, clubID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "Not found.")
			return
		}
		slog.ErrorContext(ctx, "Failed to get club", slog.String("club_id", clubID), slog.Any("err", err))
		respondError(w, http.StatusInternalServerError, "Failed to load club.")
		return
	}

	respondJSON(w, status, newClubResponse(club.Club, club.Member))
}

// GetClubEvents lists the stored events of a club, newest first. The ?from=
// and ?to= parameters take dates, ?only-ca-events= restricts the list to
// community ambassador events.
func (s *Server) GetClubEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	clubID := r.PathValue("club_id")
	from := xquery.ParseTime(query, "from", time.Time{})
	to := xquery.ParseTime(query, "to", time.Time{})
	if !to.IsZero() {
		to = to.Add(time.Hour*23 + time.Minute*59 + time.Second*59) // End of the day
	}
	onlyCAEvents := xquery.ParseBool(query, "only-ca-events", false)

	events, err := s.DB.GetEvents(ctx, clubID, from, to, onlyCAEvents)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to get club events", slog.String("club_id", clubID), slog.Any("err", err))
		respondError(w, http.StatusInternalServerError, "Failed to load club events.")
		return
	}

	responses := make([]eventSummaryResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, newEventSummaryResponse(event))
	}

	respondJSON(w, http.StatusOK, responses)
}

type importClubHistoryRequest struct {
	Club string `json:"club"`
}

type importClubHistoryResponse struct {
	JobID  int                          `json:"job_id"`
	Status database.ClubImportJobStatus `json:"status"`
	Club   clubResponse                 `json:"club"`
}

// ImportClubHistory resolves the club, stores it and enqueues a job that
// imports all of its archived meetups. The returned job id can be polled for
// progress.
func (s *Server) ImportClubHistory(w http.ResponseWriter, r *http.Request) {
	var req importClubHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	reference := strings.TrimSpace(req.Club)
	if reference == "" {
		respondError(w, http.StatusBadRequest, "Provide a club reference.")
		return
	}

	clubURL, clubID, err := normalizeClubLookup(reference, true, "")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()

	var club *campfire.Club
	if clubURL != "" {
		club, err = s.Campfire.ResolveClub(ctx, clubURL)
	} else {
		club, err = s.Campfire.GetClub(ctx, clubID)
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if club.ID == "" {
		respondError(w, http.StatusNotFound, "Club not found.")
		return
	}

	if err = s.persistClub(ctx, *club); err != nil {
		slog.ErrorContext(ctx, "Failed to persist club", slog.String("club_id", club.ID), slog.Any("err", err))
		respondError(w, http.StatusInternalServerError, "Failed to persist club.")
		return
	}

	jobID, err := s.DB.InsertClubImportJob(ctx, database.ClubImportJob{
		ClubID: club.ID,
		Status: database.ClubImportJobStatusPending,
	})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to create club import job", slog.String("club_id", club.ID), slog.Any("err", err))
		respondError(w, http.StatusInternalServerError, "Failed to create import job.")
		return
	}

	s.importNotifier.Notify()

	dbClub, err := s.DB.GetClub(ctx, club.ID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to get club", slog.String("club_id", club.ID), slog.Any("err", err))
		respondError(w, http.StatusInternalServerError, "Failed to load club.")
		return
	}

	respondJSON(w, http.StatusAccepted, importClubHistoryResponse{
		JobID:  jobID,
		Status: database.ClubImportJobStatusPending,
		Club:   newClubResponse(dbClub.Club, dbClub.Member),
	})
}

// GetClubImportJobs lists the import jobs of a club, newest first.
func (s *Server) GetClubImportJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clubID := r.PathValue("club_id")

	jobs, err := s.DB.GetClubImportJobsByClub(ctx, clubID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to get club import jobs", slog.String("club_id", clubID), slog.Any("err", err))
		respondError(w, http.StatusInternalServerError, "Failed to load import jobs.")
		return
	}

	responses := make([]importJobResponse, 0, len(jobs))
	for _, job := range jobs {
		responses = append(responses, newImportJobResponse(job))
	}

	respondJSON(w, http.StatusOK, responses)
}

// GetImportJob returns one import job with its progress counts.
func (s *Server) GetImportJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := strconv.Atoi(r.PathValue("job_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid job id.")
		return
	}

	ctx := r.Context()

	job, err := s.DB.GetClubImportJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "Not found.")
			return
		}
		slog.ErrorContext(ctx, "Failed to get import job", slog.Int("job_id", jobID), slog.Any("err", err))
		respondError(w, http.StatusInternalServerError, "Failed to load import job.")
		return
	}

	response := newImportJobResponse(job.ClubImportJob)
	response.ClubName = job.Club.Name
	respondJSON(w, http.StatusOK, response)
}
