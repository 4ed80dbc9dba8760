package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	_ "modernc.org/sqlite"
)

// EventLogFileName is the append-only activity log inside the data dir.
const EventLogFileName = "activity.sqlite"

// EventLog records store events into a local SQLite database so the user can
// review what changed and when. Appends are best-effort: a failed write is
// logged and never blocks a mutation.
type EventLog struct {
	db  *sql.DB
	log zerolog.Logger
}

type ActivityEntry struct {
	Seq       int64     `json:"seq"`
	TS        time.Time `json:"ts"`
	Type      string    `json:"type"`
	ProjectID string    `json:"projectId,omitempty"`
	CellID    *int      `json:"cellId,omitempty"`
	Payload   string    `json:"payload,omitempty"`
}

func OpenEventLog(path string, log zerolog.Logger) (*EventLog, error) {
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite pragma: %w", err)
		}
	}

	schema := `CREATE TABLE IF NOT EXISTS activity (
  seq        INTEGER PRIMARY KEY AUTOINCREMENT,
  ts         TEXT NOT NULL,
  type       TEXT NOT NULL,
  project_id TEXT NOT NULL DEFAULT '',
  cell_id    INTEGER,
  payload    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_activity_type ON activity(type);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	return &EventLog{db: db, log: log}, nil
}

func (l *EventLog) Close() error {
	return l.db.Close()
}

// Attach subscribes the log to a store. Document-save notifications are
// skipped (they accompany every mutation); everything else is recorded.
func (l *EventLog) Attach(s *Store) {
	s.Subscribe(l.Record)
}

func (l *EventLog) Record(ev Event) {
	var projectID string
	var cellID *int

	switch e := ev.(type) {
	case DataSaved:
		return
	case DataSaveError:
		// Keep save failures: they explain gaps the user may notice later.
	case DataMigrated:
	case ProjectCreated:
		projectID = e.ID
	case ProjectSwitched:
		projectID = e.ID
	case ProjectDeleted:
		projectID = e.ID
	case CellAdded:
		projectID = e.ProjectID
		cellID = &e.Cell.ID
	case CellUpdated:
		projectID = e.ProjectID
		cellID = &e.ID
	case CellDeleted:
		projectID = e.ProjectID
		cellID = &e.ID
	case CellsReordered:
		projectID = e.ProjectID
	case MainPromptUpdated:
		projectID = e.ProjectID
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		payload = []byte("{}")
	}

	_, err = l.db.ExecContext(context.Background(),
		`INSERT INTO activity (ts, type, project_id, cell_id, payload) VALUES (?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano), ev.EventKind(), projectID, cellID, string(payload))
	if err != nil {
		l.log.Warn().Err(err).Str("event", ev.EventKind()).Msg("failed to append activity entry")
	}
}

// Recent returns up to limit entries, newest first.
func (l *EventLog) Recent(ctx context.Context, limit int) ([]ActivityEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT seq, ts, type, project_id, cell_id, payload FROM activity ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ActivityEntry
	for rows.Next() {
		var e ActivityEntry
		var ts string
		var cellID sql.NullInt64
		if err := rows.Scan(&e.Seq, &ts, &e.Type, &e.ProjectID, &cellID, &e.Payload); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			e.TS = t
		}
		if cellID.Valid {
			id := int(cellID.Int64)
			e.CellID = &id
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
