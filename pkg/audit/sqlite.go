// SPDX-License-Identifier: Apache-2.0

package audit

import (
	"context"
	"database/sql"
	"errors"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists audit events in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLite-backed audit store and ensures schema.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if err := ensureAuditSchema(db); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Record stores a single audit event.
func (s *SQLiteStore) Record(ctx context.Context, event Event) error {
	plan, err := encodePlan(event.Plan)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pipeline_audit_events (
			session_id, query, intent, fallback, step_count, reply_type, success, error_text, duration_ms, plan_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		event.SessionID,
		event.Query,
		event.Intent,
		event.Fallback,
		event.StepCount,
		event.ReplyType,
		event.Success,
		event.Error,
		event.DurationMS,
		string(plan),
		normalizeTime(event.CreatedAt),
	)
	return err
}

// List returns audit events matching the filter.
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]Event, error) {
	query := `
		SELECT session_id, query, intent, fallback, step_count, reply_type, success, error_text, duration_ms, plan_json, created_at
		FROM pipeline_audit_events
	`
	var args []any
	where := ""
	addFilter := func(clause string, value any) {
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
		args = append(args, value)
	}
	if filter.SessionID != "" {
		addFilter("session_id = ?", filter.SessionID)
	}
	if filter.Intent != "" {
		addFilter("intent = ?", filter.Intent)
	}
	if filter.FallbackOnly {
		if where == "" {
			where = " WHERE fallback = 1"
		} else {
			where += " AND fallback = 1"
		}
	}
	query += where + " ORDER BY created_at ASC, rowid ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			event    Event
			planJSON string
			created  sql.NullTime
		)
		if err := rows.Scan(
			&event.SessionID,
			&event.Query,
			&event.Intent,
			&event.Fallback,
			&event.StepCount,
			&event.ReplyType,
			&event.Success,
			&event.Error,
			&event.DurationMS,
			&planJSON,
			&created,
		); err != nil {
			return nil, err
		}
		if planJSON != "" && planJSON != "null" {
			if plan, err := decodePlan([]byte(planJSON)); err == nil {
				event.Plan = plan
			}
		}
		if created.Valid {
			event.CreatedAt = created.Time
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func ensureAuditSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS pipeline_audit_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			query TEXT NOT NULL,
			intent TEXT NOT NULL,
			fallback BOOLEAN NOT NULL DEFAULT 0,
			step_count INTEGER NOT NULL DEFAULT 0,
			reply_type TEXT,
			success BOOLEAN NOT NULL DEFAULT 0,
			error_text TEXT,
			duration_ms INTEGER,
			plan_json TEXT,
			created_at TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_pipeline_audit_session ON pipeline_audit_events(session_id);
		CREATE INDEX IF NOT EXISTS idx_pipeline_audit_intent ON pipeline_audit_events(intent);
	`)
	return err
}
