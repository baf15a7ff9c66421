package database

import (
	"context"
	"fmt"
	"slices"
	"time"
)

func (d *Database) InsertEvents(ctx context.Context, events []Event) error {
	query := `
		INSERT INTO events (event_id, event_name, event_details, event_address, event_location, event_creator_id, event_cover_photo_url, event_map_preview_url, event_time, event_end_time, event_finished, event_rsvp_status, event_discord_interested, event_created_by_community_ambassador, event_badge_grants, event_campfire_live_event_id, event_campfire_live_event_name, event_checked_in_members_count, event_members_total, event_club_id, event_raw_json)
		VALUES (:event_id, :event_name, :event_details, :event_address, :event_location, :event_creator_id, :event_cover_photo_url, :event_map_preview_url, :event_time, :event_end_time, :event_finished, :event_rsvp_status, :event_discord_interested, :event_created_by_community_ambassador, :event_badge_grants, :event_campfire_live_event_id, :event_campfire_live_event_name, :event_checked_in_members_count, :event_members_total, :event_club_id, :event_raw_json)
		ON CONFLICT (event_id) DO UPDATE SET
			event_name = EXCLUDED.event_name,
			event_details = EXCLUDED.event_details,
			event_address = EXCLUDED.event_address,
			event_location = EXCLUDED.event_location,
			event_creator_id = EXCLUDED.event_creator_id,
			event_cover_photo_url = EXCLUDED.event_cover_photo_url,
			event_map_preview_url = EXCLUDED.event_map_preview_url,
			event_time = EXCLUDED.event_time,
			event_end_time = EXCLUDED.event_end_time,
			event_finished = EXCLUDED.event_finished,
			event_rsvp_status = EXCLUDED.event_rsvp_status,
			event_discord_interested = EXCLUDED.event_discord_interested,
			event_created_by_community_ambassador = EXCLUDED.event_created_by_community_ambassador,
			event_badge_grants = EXCLUDED.event_badge_grants,
			event_campfire_live_event_id = EXCLUDED.event_campfire_live_event_id,
			event_campfire_live_event_name = EXCLUDED.event_campfire_live_event_name,
			event_checked_in_members_count = EXCLUDED.event_checked_in_members_count,
			event_members_total = EXCLUDED.event_members_total,
			event_club_id = EXCLUDED.event_club_id,
			event_imported_at = NOW(),
			event_raw_json = EXCLUDED.event_raw_json
	`

	for chunk := range slices.Chunk(events, batchSize) {
		if _, err := d.db.NamedExecContext(ctx, query, chunk); err != nil {
			return fmt.Errorf("failed to insert events: %w", err)
		}
	}

	return nil
}

func (d *Database) InsertEvent(ctx context.Context, event Event) error {
	return d.InsertEvents(ctx, []Event{event})
}

func (d *Database) GetEvent(ctx context.Context, eventID string) (*Event, error) {
	var event Event
	if err := d.db.GetContext(ctx, &event, "SELECT * FROM events WHERE event_id = $1", eventID); err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return &event, nil
}

// GetEvents returns the events of a club with their RSVP stats, newest first.
// Zero from/to values leave the time range open on that side.
func (d *Database) GetEvents(ctx context.Context, clubID string, from time.Time, to time.Time, caOnly bool) ([]EventWithStats, error) {
	query := `
		SELECT e.*,
			COUNT(er.event_rsvp_member_id) FILTER (WHERE er.event_rsvp_status = 'ACCEPTED' OR er.event_rsvp_status = 'CHECKED_IN') AS accepted,
			COUNT(er.event_rsvp_member_id) FILTER (WHERE er.event_rsvp_status = 'CHECKED_IN') AS check_ins
		FROM events e
		LEFT JOIN event_rsvps er ON e.event_id = er.event_rsvp_event_id
		WHERE e.event_club_id = $1
		AND ($2 = '0001-01-01 00:00:00+00'::timestamptz OR e.event_time >= $2)
		AND ($3 = '0001-01-01 00:00:00+00'::timestamptz OR e.event_time <= $3)
		AND (NOT $4 OR e.event_created_by_community_ambassador = TRUE)
		GROUP BY e.event_id
		ORDER BY e.event_time DESC, e.event_name DESC
	`

	var events []EventWithStats
	if err := d.db.SelectContext(ctx, &events, query, clubID, from, to, caOnly); err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}

	return events, nil
}

func (d *Database) GetNextUpdateEvent(ctx context.Context, olderThan time.Time) (*Event, error) {
	query := `
		SELECT * FROM events
		WHERE NOT event_finished AND event_imported_at < $1
		ORDER BY event_imported_at
		LIMIT 1
	`

	var event Event
	if err := d.db.GetContext(ctx, &event, query, olderThan); err != nil {
		return nil, fmt.Errorf("failed to get next update event: %w", err)
	}

	return &event, nil
}

func (d *Database) SetEventFinished(ctx context.Context, eventID string, finished bool) error {
	if _, err := d.db.ExecContext(ctx, "UPDATE events SET event_finished = $2 WHERE event_id = $1", eventID, finished); err != nil {
		return fmt.Errorf("failed to set event finished: %w", err)
	}

	return nil
}
