package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/topi314/campfire-sync/internal/middlewares"
)

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("/", s.NotFound)

	mux.HandleFunc("GET /api/health", s.Health)
	mux.HandleFunc("GET /api/config", s.CampfireConfig)
	mux.HandleFunc("GET /api/resolve", s.Resolve)

	mux.HandleFunc("POST /api/events/import", s.ImportEvent)
	mux.HandleFunc("GET /api/events/{event_id}", s.GetEvent)
	mux.Handle("GET /api/events/{event_id}/qr", middlewares.Cache(24*time.Hour, http.HandlerFunc(s.EventQR)))

	mux.HandleFunc("GET /api/images/{image_id}", s.Image)

	mux.HandleFunc("GET /api/clubs/lookup", s.LookupClub)
	mux.HandleFunc("GET /api/clubs/{club_id}", s.GetClub)
	mux.HandleFunc("GET /api/clubs/{club_id}/events", s.GetClubEvents)
	mux.HandleFunc("GET /api/clubs/{club_id}/import-jobs", s.GetClubImportJobs)
	mux.HandleFunc("POST /api/clubs/import-history", s.ImportClubHistory)
	mux.HandleFunc("GET /api/import-jobs/{job_id}", s.GetImportJob)

	mux.HandleFunc("GET /api/tokens", s.GetTokens)
	mux.HandleFunc("POST /api/tokens", s.AddToken)

	mux.HandleFunc("POST /api/export", s.Export)

	mux.Handle("GET /metrics", promhttp.Handler())
}
