package cauth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/topi314/campfire-sync/server/campfire"
	"github.com/topi314/campfire-sync/server/database"
)

// TokenStore is the subset of the database used to look up campfire tokens.
type TokenStore interface {
	GetNextCampfireToken(ctx context.Context) (*database.CampfireToken, error)
}

// Source pairs a token func with a label used in logs. Token values are never
// logged, only the label.
type Source struct {
	Label string
	Func  campfire.TokenFunc
}

// Static returns a token func that always yields the given token.
func Static(token string) campfire.TokenFunc {
	return func(ctx context.Context) (string, error) {
		return token, nil
	}
}

// FromEnv returns a token func that reads the token from the given
// environment variable on every call.
func FromEnv(key string) campfire.TokenFunc {
	return func(ctx context.Context) (string, error) {
		return os.Getenv(key), nil
	}
}

// FromDatabase returns a token func that picks the stored token closest to
// expiry that is still valid. A store without usable tokens yields an empty
// token, not an error.
func FromDatabase(store TokenStore) campfire.TokenFunc {
	return func(ctx context.Context) (string, error) {
		token, err := store.GetNextCampfireToken(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return "", nil
			}
			return "", fmt.Errorf("failed to get campfire token: %w", err)
		}
		return token.Token, nil
	}
}

// Chain returns a token func that tries each source in order and yields the
// first non-empty token.
func Chain(sources ...Source) campfire.TokenFunc {
	return func(ctx context.Context) (string, error) {
		var errs []error
		for _, source := range sources {
			token, err := source.Func(ctx)
			if err != nil {
				slog.DebugContext(ctx, "Campfire token source failed", slog.String("source", source.Label), slog.Any("error", err))
				errs = append(errs, fmt.Errorf("%s: %w", source.Label, err))
				continue
			}
			if token == "" {
				slog.DebugContext(ctx, "Campfire token source produced no token", slog.String("source", source.Label))
				continue
			}
			slog.DebugContext(ctx, "Campfire token source supplied token", slog.String("source", source.Label))
			return token, nil
		}

		slog.WarnContext(ctx, "Campfire token sources exhausted with no token")
		return "", errors.Join(errs...)
	}
}
