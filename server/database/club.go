package database

import (
	"context"
	"fmt"
	"time"
)

// GetClub returns a club with its creator. A club whose creator was never
// imported comes back with a zero member.
func (d *Database) GetClub(ctx context.Context, clubID string) (*ClubWithCreator, error) {
	query := `
		SELECT clubs.*,
			COALESCE(members.member_id, '') AS member_id,
			COALESCE(members.member_username, '') AS member_username,
			COALESCE(members.member_display_name, '') AS member_display_name,
			COALESCE(members.member_avatar_url, '') AS member_avatar_url,
			members.member_club_rank,
			COALESCE(members.member_imported_at, '0001-01-01 00:00:00+00') AS member_imported_at,
			COALESCE(members.member_raw_json, '{}') AS member_raw_json
		FROM clubs
		LEFT JOIN members ON clubs.club_creator_id = members.member_id
		WHERE clubs.club_id = $1
	`

	var club ClubWithCreator
	if err := d.db.GetContext(ctx, &club, query, clubID); err != nil {
		return nil, fmt.Errorf("failed to get club: %w", err)
	}

	return &club, nil
}

func (d *Database) InsertClubs(ctx context.Context, clubs []Club) error {
	query := `
		INSERT INTO clubs (club_id, club_name, club_avatar_url, club_game, club_visibility, club_creator_id, club_created_by_community_ambassador, club_badge_grants, club_raw_json)
		VALUES (:club_id, :club_name, :club_avatar_url, :club_game, :club_visibility, :club_creator_id, :club_created_by_community_ambassador, :club_badge_grants, :club_raw_json)
		ON CONFLICT (club_id) DO UPDATE SET
			club_name = EXCLUDED.club_name,
			club_avatar_url = EXCLUDED.club_avatar_url,
			club_game = EXCLUDED.club_game,
			club_visibility = EXCLUDED.club_visibility,
			club_creator_id = EXCLUDED.club_creator_id,
			club_created_by_community_ambassador = EXCLUDED.club_created_by_community_ambassador,
			club_badge_grants = EXCLUDED.club_badge_grants,
			club_imported_at = NOW(),
			club_raw_json = EXCLUDED.club_raw_json
	`

	if _, err := d.db.NamedExecContext(ctx, query, clubs); err != nil {
		return fmt.Errorf("failed to create or update club: %w", err)
	}

	return nil
}

func (d *Database) GetNextAutoImportClub(ctx context.Context, olderThan time.Time) (*Club, error) {
	query := `
		SELECT * FROM clubs
		WHERE club_last_auto_event_import_at < $1
		ORDER BY club_last_auto_event_import_at
		LIMIT 1
	`

	var club Club
	if err := d.db.GetContext(ctx, &club, query, olderThan); err != nil {
		return nil, fmt.Errorf("failed to get next auto import club: %w", err)
	}

	return &club, nil
}

func (d *Database) UpdateClubLastAutoEventImported(ctx context.Context, clubID string) error {
	if _, err := d.db.ExecContext(ctx, "UPDATE clubs SET club_last_auto_event_import_at = NOW() WHERE club_id = $1", clubID); err != nil {
		return fmt.Errorf("failed to update club last auto event import: %w", err)
	}

	return nil
}
