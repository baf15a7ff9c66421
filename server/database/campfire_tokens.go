package database

import (
	"context"
	"time"
)

type CampfireToken struct {
	ID        int       `db:"id"`
	Token     string    `db:"token"`
	ExpiresAt time.Time `db:"expires_at"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
}

func (d *Database) InsertCampfireToken(ctx context.Context, token CampfireToken) (*CampfireToken, error) {
	query := `
		INSERT INTO campfire_tokens (token, expires_at, email)
		VALUES (:token, :expires_at, :email)
		ON CONFLICT (token) DO UPDATE SET
			expires_at = EXCLUDED.expires_at,
			email = EXCLUDED.email
		RETURNING *
	`

	query, args, err := d.db.BindNamed(query, token)
	if err != nil {
		return nil, err
	}

	var inserted CampfireToken
	if err = d.db.GetContext(ctx, &inserted, query, args...); err != nil {
		return nil, err
	}

	return &inserted, nil
}

func (d *Database) GetCampfireTokenByToken(ctx context.Context, token string) (*CampfireToken, error) {
	query := `SELECT * FROM campfire_tokens WHERE token = $1`

	var campfireToken CampfireToken
	if err := d.db.GetContext(ctx, &campfireToken, query, token); err != nil {
		return nil, err
	}

	return &campfireToken, nil
}

// GetCampfireTokens returns all tokens that are still usable, soonest to
// expire first.
func (d *Database) GetCampfireTokens(ctx context.Context) ([]CampfireToken, error) {
	query := `SELECT * FROM campfire_tokens WHERE expires_at > $1 ORDER BY expires_at`

	var tokens []CampfireToken
	if err := d.db.SelectContext(ctx, &tokens, query, time.Now().Add(time.Minute)); err != nil {
		return nil, err
	}

	return tokens, nil
}

func (d *Database) GetNextCampfireToken(ctx context.Context) (*CampfireToken, error) {
	query := `SELECT * FROM campfire_tokens WHERE expires_at > $1 ORDER BY expires_at LIMIT 1`

	var campfireToken CampfireToken
	if err := d.db.GetContext(ctx, &campfireToken, query, time.Now().Add(time.Minute)); err != nil {
		return nil, err
	}

	return &campfireToken, nil
}

func (d *Database) GetCampfireTokensExpiringSoon(ctx context.Context, within time.Duration) ([]CampfireToken, error) {
	query := `SELECT * FROM campfire_tokens WHERE expires_at > $1 AND expires_at < $2 ORDER BY expires_at`

	now := time.Now()

	var tokens []CampfireToken
	if err := d.db.SelectContext(ctx, &tokens, query, now, now.Add(within)); err != nil {
		return nil, err
	}

	return tokens, nil
}

func (d *Database) DeleteExpiredCampfireTokens(ctx context.Context) (int64, error) {
	res, err := d.db.ExecContext(ctx, `DELETE FROM campfire_tokens WHERE expires_at < $1`, time.Now())
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
