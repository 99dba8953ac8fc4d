package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/davzula/blinkwatch/internal/blink"
)

// Archive keeps a local Postgres history of minute records so sessions
// can be reviewed without the cloud store. It is entirely optional; a
// nil Archive means the history is simply not kept.
type Archive struct {
	conn *pgx.Conn
}

// OpenArchive establishes a connection to the database and ensures the schema is initialized.
func OpenArchive(ctx context.Context, connString string) (*Archive, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}

	// Initialize schema (Auto-Migration)
	if err := initSchema(ctx, conn); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return &Archive{conn: conn}, nil
}

func initSchema(ctx context.Context, conn *pgx.Conn) error {
	query := `
		CREATE TABLE IF NOT EXISTS blink_sessions (
			id TEXT PRIMARY KEY,
			user_name TEXT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS blink_records (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT REFERENCES blink_sessions(id),
			kind TEXT NOT NULL,
			blinks_per_minute INT NOT NULL,
			health_status TEXT NOT NULL,
			total_blinks INT NOT NULL,
			session_duration_minutes DOUBLE PRECISION NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS blink_records_session_id_idx ON blink_records (session_id);
	`
	_, err := conn.Exec(ctx, query)
	return err
}

// Close terminates the database connection.
func (a *Archive) Close(ctx context.Context) {
	a.conn.Close(ctx)
}

// EnsureSession registers the session row records will hang off of.
func (a *Archive) EnsureSession(ctx context.Context, id, userName string, startedAt time.Time) error {
	_, err := a.conn.Exec(ctx, `
		INSERT INTO blink_sessions (id, user_name, started_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, id, userName, startedAt)
	return err
}

// InsertRecord appends one minute or final record to the archive.
func (a *Archive) InsertRecord(ctx context.Context, rec *blink.Record) error {
	recordedAt, err := time.Parse(time.RFC3339, rec.Timestamp)
	if err != nil {
		return fmt.Errorf("record carries malformed timestamp %q: %w", rec.Timestamp, err)
	}
	_, err = a.conn.Exec(ctx, `
		INSERT INTO blink_records (session_id, kind, blinks_per_minute, health_status, total_blinks, session_duration_minutes, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.SessionID, rec.Kind, rec.BlinksPerMinute, rec.HealthStatus, rec.TotalBlinks, rec.SessionDurationMinutes, recordedAt)
	return err
}

// ArchivedRecord is one row of session history for listing.
type ArchivedRecord struct {
	SessionID       string
	UserName        string
	Kind            string
	BlinksPerMinute int
	HealthStatus    string
	TotalBlinks     int
	DurationMinutes float64
	RecordedAt      time.Time
}

// ListRecords returns the most recent records, newest first.
func (a *Archive) ListRecords(ctx context.Context, limit int) ([]ArchivedRecord, error) {
	rows, err := a.conn.Query(ctx, `
		SELECT r.session_id, s.user_name, r.kind, r.blinks_per_minute, r.health_status,
		       r.total_blinks, r.session_duration_minutes, r.recorded_at
		FROM blink_records r
		JOIN blink_sessions s ON s.id = r.session_id
		ORDER BY r.recorded_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ArchivedRecord
	for rows.Next() {
		var rec ArchivedRecord
		if err := rows.Scan(&rec.SessionID, &rec.UserName, &rec.Kind, &rec.BlinksPerMinute,
			&rec.HealthStatus, &rec.TotalBlinks, &rec.DurationMinutes, &rec.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Reset drops all archive tables to clear the local history.
func (a *Archive) Reset(ctx context.Context) error {
	_, err := a.conn.Exec(ctx, `
		DROP TABLE IF EXISTS blink_records CASCADE;
		DROP TABLE IF EXISTS blink_sessions CASCADE;
	`)
	return err
}
