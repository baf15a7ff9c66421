package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/disgoorg/disgo/webhook"

	"github.com/topi314/campfire-sync/internal/middlewares"
	"github.com/topi314/campfire-sync/internal/tsync"
	"github.com/topi314/campfire-sync/server/campfire"
	"github.com/topi314/campfire-sync/server/cauth"
	"github.com/topi314/campfire-sync/server/database"
)

func New(cfg Config) (*Server, error) {
	db, err := database.New(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	httpClient := &http.Client{}

	token := cauth.Chain(
		cauth.Source{Label: "env", Func: cauth.FromEnv("CAMPFIRE_TOKEN")},
		cauth.Source{Label: "config", Func: cauth.Static(cfg.Campfire.Token)},
		cauth.Source{Label: "database", Func: cauth.FromDatabase(db)},
	)

	client, err := campfire.New(cfg.Campfire, token, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize campfire client: %w", err)
	}

	var webhookClient webhook.Client
	if cfg.Notifications.Enabled {
		if webhookClient, err = webhook.NewWithURL(cfg.Notifications.WebhookURL); err != nil {
			return nil, fmt.Errorf("failed to initialize webhook client: %w", err)
		}
	}

	mux := http.NewServeMux()

	s := &Server{
		Cfg:        cfg,
		DB:         db,
		Campfire:   client,
		HTTPClient: httpClient,
		server: &http.Server{
			Addr:    cfg.Server.Addr,
			Handler: cleanPathMiddleware(middlewares.RequestID(middlewares.AccessLog(mux))),
		},
		webhookClient:  webhookClient,
		importNotifier: tsync.NewNotifier(),
	}

	s.routes(mux)

	return s, nil
}

func cleanPathMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Clean the request URL path
		r.URL.Path = path.Clean(r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

type Server struct {
	Cfg        Config
	DB         *database.Database
	Campfire   *campfire.Client
	HTTPClient *http.Client

	server         *http.Server
	webhookClient  webhook.Client
	importNotifier *tsync.Notifier

	SentTokenNotifications []int
}

func (s *Server) Start() {
	go s.importClubs()
	if s.Cfg.Campfire.EventAutoImport {
		go s.autoImportClubs()
	}
	if s.Cfg.Campfire.EventAutoUpdate {
		go s.updateEvents()
	}
	go s.cleanupCampfireTokens()

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Printf("Server failed: %s\n", err)
		}
	}()
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", slog.Any("err", err))
	}

	s.importNotifier.Close()

	if err := s.DB.Close(); err != nil {
		slog.Error("Failed to close database", slog.Any("err", err))
	}
}
