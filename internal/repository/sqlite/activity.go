package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/haidang/referral-hub/internal/model"
	"github.com/haidang/referral-hub/internal/repository"
)

// compile-time check that *DB implements repository.ActivityRepository
var _ repository.ActivityRepository = (*DB)(nil)

// AppendActivity inserts the entry and trims the log to
// model.ActivityLogCap rows in the same transaction, so the cap holds even
// if the process dies between the two statements.
func (db *DB) AppendActivity(ctx context.Context, activity *model.Activity) error {
	activity.ID = xid.New().String()
	activity.Timestamp = time.Now().UTC()
	if activity.Metadata == nil {
		activity.Metadata = map[string]any{}
	}

	metadata, err := encodeJSON(activity.Metadata)
	if err != nil {
		return err
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning activity tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO activities (id, type, description, metadata, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		activity.ID, activity.Type, activity.Description, metadata, activity.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting activity: %w", err)
	}

	// xid is time-ordered, so (timestamp, id) gives a stable newest-first
	// order even when entries land within the same clock tick.
	_, err = tx.ExecContext(ctx,
		`DELETE FROM activities WHERE id NOT IN (
			SELECT id FROM activities ORDER BY timestamp DESC, id DESC LIMIT ?
		)`,
		model.ActivityLogCap,
	)
	if err != nil {
		return fmt.Errorf("sqlite: trimming activity log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing activity tx: %w", err)
	}
	return nil
}

func (db *DB) ListActivities(ctx context.Context, opts repository.ListOptions) ([]model.Activity, int, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activities`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting activities: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, type, description, metadata, timestamp
		 FROM activities
		 ORDER BY timestamp DESC, id DESC
		 LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing activities: %w", err)
	}
	defer rows.Close()

	activities := []model.Activity{}
	for rows.Next() {
		var a model.Activity
		var metadata string
		if err := rows.Scan(&a.ID, &a.Type, &a.Description, &metadata, &a.Timestamp); err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning activity row: %w", err)
		}
		if err := decodeJSON(metadata, &a.Metadata); err != nil {
			return nil, 0, err
		}
		if a.Metadata == nil {
			a.Metadata = map[string]any{}
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating activities: %w", err)
	}
	return activities, total, nil
}
