package database

import (
	"context"
	"fmt"
	"slices"
)

func (d *Database) InsertMembers(ctx context.Context, members []Member) error {
	query := `
		INSERT INTO members (member_id, member_username, member_display_name, member_avatar_url, member_club_rank, member_raw_json)
		VALUES (:member_id, :member_username, :member_display_name, :member_avatar_url, :member_club_rank, :member_raw_json)
		ON CONFLICT (member_id) DO UPDATE SET
			member_username = EXCLUDED.member_username,
			member_display_name = EXCLUDED.member_display_name,
			member_avatar_url = EXCLUDED.member_avatar_url,
			member_club_rank = EXCLUDED.member_club_rank,
			member_imported_at = NOW(),
			member_raw_json = EXCLUDED.member_raw_json
	`

	for chunk := range slices.Chunk(members, batchSize) {
		if _, err := d.db.NamedExecContext(ctx, query, chunk); err != nil {
			return fmt.Errorf("failed to insert members: %w", err)
		}
	}

	return nil
}

// EnsureMembers inserts members that do not exist yet and leaves existing
// rows untouched. Used for placeholder rows built from bare RSVP user IDs so
// they never overwrite previously imported member data.
func (d *Database) EnsureMembers(ctx context.Context, members []Member) error {
	query := `
		INSERT INTO members (member_id, member_username, member_display_name, member_avatar_url, member_club_rank, member_raw_json)
		VALUES (:member_id, :member_username, :member_display_name, :member_avatar_url, :member_club_rank, :member_raw_json)
		ON CONFLICT (member_id) DO NOTHING
	`

	for chunk := range slices.Chunk(members, batchSize) {
		if _, err := d.db.NamedExecContext(ctx, query, chunk); err != nil {
			return fmt.Errorf("failed to ensure members: %w", err)
		}
	}

	return nil
}

func (d *Database) GetMember(ctx context.Context, memberID string) (*Member, error) {
	var member Member
	if err := d.db.GetContext(ctx, &member, "SELECT * FROM members WHERE member_id = $1", memberID); err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return &member, nil
}

// GetEventMembers returns the members on an event together with their RSVP
// status, in stable display order.
func (d *Database) GetEventMembers(ctx context.Context, eventID string) ([]EventMember, error) {
	query := `
		SELECT members.*, event_rsvps.event_rsvp_status
		FROM event_rsvps
		JOIN members ON event_rsvps.event_rsvp_member_id = members.member_id
		WHERE event_rsvps.event_rsvp_event_id = $1
		ORDER BY members.member_display_name, members.member_username, members.member_id
	`

	var members []EventMember
	if err := d.db.SelectContext(ctx, &members, query, eventID); err != nil {
		return nil, fmt.Errorf("failed to get event members: %w", err)
	}

	return members, nil
}
