package cauth

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/topi314/campfire-sync/server/database"
)

type fakeTokenStore struct {
	token *database.CampfireToken
	err   error
}

func (s *fakeTokenStore) GetNextCampfireToken(ctx context.Context) (*database.CampfireToken, error) {
	return s.token, s.err
}

func TestStatic(t *testing.T) {
	token, err := Static("static-token")(context.Background())
	require.NoError(t, err)
	require.Equal(t, "static-token", token)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("CAMPFIRE_TOKEN", "env-token")

	token, err := FromEnv("CAMPFIRE_TOKEN")(context.Background())
	require.NoError(t, err)
	require.Equal(t, "env-token", token)

	token, err = FromEnv("CAMPFIRE_TOKEN_UNSET")(context.Background())
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestFromDatabase(t *testing.T) {
	store := &fakeTokenStore{token: &database.CampfireToken{Token: "db-token"}}

	token, err := FromDatabase(store)(context.Background())
	require.NoError(t, err)
	require.Equal(t, "db-token", token)
}

func TestFromDatabase_NoRows(t *testing.T) {
	store := &fakeTokenStore{err: sql.ErrNoRows}

	token, err := FromDatabase(store)(context.Background())
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestFromDatabase_Error(t *testing.T) {
	store := &fakeTokenStore{err: errors.New("connection refused")}

	_, err := FromDatabase(store)(context.Background())
	require.ErrorContains(t, err, "failed to get campfire token")
}

func TestChain(t *testing.T) {
	token, err := Chain(
		Source{Label: "env", Func: Static("")},
		Source{Label: "config", Func: Static("config-token")},
		Source{Label: "database", Func: Static("db-token")},
	)(context.Background())
	require.NoError(t, err)
	require.Equal(t, "config-token", token)
}

func TestChain_SkipsFailingSources(t *testing.T) {
	failing := func(ctx context.Context) (string, error) {
		return "", errors.New("boom")
	}

	token, err := Chain(
		Source{Label: "env", Func: failing},
		Source{Label: "database", Func: Static("db-token")},
	)(context.Background())
	require.NoError(t, err)
	require.Equal(t, "db-token", token)
}

func TestChain_Exhausted(t *testing.T) {
	token, err := Chain(
		Source{Label: "env", Func: Static("")},
		Source{Label: "database", Func: Static("")},
	)(context.Background())
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestChain_AllFailing(t *testing.T) {
	failing := func(ctx context.Context) (string, error) {
		return "", errors.New("boom")
	}

	_, err := Chain(Source{Label: "env", Func: failing})(context.Background())
	require.ErrorContains(t, err, "env: boom")
}
