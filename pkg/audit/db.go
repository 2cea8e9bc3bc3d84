package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/finvia/reportd/pkg/storage"
)

// DBRecorder appends audit events to the audit_log table
type DBRecorder struct {
	db     *sql.DB
	driver string
}

// NewDBRecorder creates a recorder over an opened database. The audit_log
// table is created by storage.Migrate.
func NewDBRecorder(db *sql.DB, driver string) *DBRecorder {
	return &DBRecorder{db: db, driver: driver}
}

// Record appends one event. A zero CreatedAt is filled with the current time.
func (r *DBRecorder) Record(ctx context.Context, e Event) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query := storage.Rebind(r.driver, `
		INSERT INTO audit_log (actor_id, actor_name, action, target, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)

	if _, err := r.db.ExecContext(ctx, query,
		e.ActorID, e.ActorName, string(e.Action), e.Target, e.Detail, e.CreatedAt); err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}
	return nil
}

// List returns the newest events first, up to limit
func (r *DBRecorder) List(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}

	query := storage.Rebind(r.driver, `
		SELECT id, actor_id, actor_name, action, target, detail, created_at
		FROM audit_log
		ORDER BY id DESC
		LIMIT ?`)

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var e Event
		var action string
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorName, &action, &e.Target, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = Action(action)
		events = append(events, e)
	}
	return events, rows.Err()
}
