package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/lib/pq"
)

const batchSize = 1_000

// ReplaceEventRSVPs upserts the given RSVPs and deletes rows for members that
// are no longer on the event.
func (d *Database) ReplaceEventRSVPs(ctx context.Context, eventID string, rsvps []EventRSVP) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.ErrorContext(ctx, "failed to rollback transaction", "error", err)
		}
	}()

	memberIDs := make([]string, 0, len(rsvps))
	for _, rsvp := range rsvps {
		memberIDs = append(memberIDs, rsvp.MemberID)
	}

	deleteQuery := `
		DELETE FROM event_rsvps
		WHERE event_rsvp_event_id = $1 AND event_rsvp_member_id != ALL($2)
	`

	if _, err = tx.ExecContext(ctx, deleteQuery, eventID, pq.Array(memberIDs)); err != nil {
		return fmt.Errorf("failed to delete stale event RSVPs: %w", err)
	}

	query := `
		INSERT INTO event_rsvps (event_rsvp_event_id, event_rsvp_member_id, event_rsvp_status, event_rsvp_imported_at)
		VALUES (:event_rsvp_event_id, :event_rsvp_member_id, :event_rsvp_status, now())
		ON CONFLICT (event_rsvp_event_id, event_rsvp_member_id) DO UPDATE SET
			event_rsvp_status = EXCLUDED.event_rsvp_status,
			event_rsvp_imported_at = now()
	`

	for chunk := range slices.Chunk(rsvps, batchSize) {
		if _, err = tx.NamedExecContext(ctx, query, chunk); err != nil {
			return fmt.Errorf("failed to insert event RSVPs: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
