package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/topi314/campfire-sync/server/cauth"
	"github.com/topi314/campfire-sync/server/database"
)

// GetTokens lists the stored campfire tokens that are still usable. Token
// values are never included in the response.
func (s *Server) GetTokens(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tokens, err := s.DB.GetCampfireTokens(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to get campfire tokens", slog.Any("err", err))
		respondError(w, http.StatusInternalServerError, "Failed to load tokens.")
		return
	}

	responses := make([]tokenResponse, 0, len(tokens))
	for _, token := range tokens {
		responses = append(responses, newTokenResponse(token))
	}

	respondJSON(w, http.StatusOK, responses)
}

type addTokenRequest struct {
	Token string `json:"token"`
}

// AddToken registers a campfire JWT. Re-registering a known token refreshes
// its expiry and email.
func (s *Server) AddToken(w http.ResponseWriter, r *http.Request) {
	var req addTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	if strings.TrimSpace(req.Token) == "" {
		respondError(w, http.StatusBadRequest, "Provide a token.")
		return
	}

	decoded, err := cauth.ParseToken(req.Token)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()

	if !decoded.Valid() {
		slog.WarnContext(ctx, "Registered campfire token is expired or about to expire", slog.String("email", decoded.Email), slog.Time("expires_at", decoded.ExpiresAt))
	}

	created := false
	if _, err = s.DB.GetCampfireTokenByToken(ctx, decoded.Token); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.ErrorContext(ctx, "Failed to check campfire token", slog.Any("err", err))
			respondError(w, http.StatusInternalServerError, "Failed to store token.")
			return
		}
		created = true
	}

	token, err := s.DB.InsertCampfireToken(ctx, database.CampfireToken{
		Token:     decoded.Token,
		Email:     decoded.Email,
		ExpiresAt: decoded.ExpiresAt,
	})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to store campfire token", slog.Any("err", err))
		respondError(w, http.StatusInternalServerError, "Failed to store token.")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondJSON(w, status, newTokenResponse(*token))
}
