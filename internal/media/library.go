package media

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"reelcut/internal/timeline"
)

// Library is the clip registry: every imported source the timeline can
// reference. It implements timeline.ClipLibrary.
type Library struct {
	db *sql.DB
}

// ClipRecord is a registered clip plus its registry metadata.
type ClipRecord struct {
	timeline.Clip
	Title   string    `json:"title"`
	AddedAt time.Time `json:"addedAt"`
}

// Open opens (creating if needed) a clip library at the given sqlite path.
// Use ":memory:" for an ephemeral library.
func Open(path string) (*Library, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open clip library: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS clips (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		duration REAL NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		added_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create clips table: %w", err)
	}
	return &Library{db: db}, nil
}

// Close closes the underlying database.
func (l *Library) Close() error {
	return l.db.Close()
}

// Add registers a source file. When duration is zero or negative the file is
// probed with ffprobe.
func (l *Library) Add(path, title string, duration float64) (ClipRecord, error) {
	if duration <= 0 {
		probed, err := ProbeDuration(path)
		if err != nil {
			return ClipRecord{}, fmt.Errorf("probe %s: %w", path, err)
		}
		duration = probed
	}

	rec := ClipRecord{
		Clip: timeline.Clip{
			ID:       uuid.NewString(),
			Path:     path,
			Duration: duration,
		},
		Title:   title,
		AddedAt: time.Now(),
	}
	_, err := l.db.Exec(
		`INSERT INTO clips (id, path, duration, title, added_at) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Path, rec.Duration, rec.Title, rec.AddedAt.Unix(),
	)
	if err != nil {
		return ClipRecord{}, fmt.Errorf("insert clip: %w", err)
	}
	return rec, nil
}

// Clip resolves a clip id. The boolean is false for unknown ids.
func (l *Library) Clip(id string) (timeline.Clip, bool) {
	var c timeline.Clip
	row := l.db.QueryRow(`SELECT id, path, duration FROM clips WHERE id = ?`, id)
	if err := row.Scan(&c.ID, &c.Path, &c.Duration); err != nil {
		return timeline.Clip{}, false
	}
	return c, true
}

// Clips lists every registered clip, newest first.
func (l *Library) Clips() ([]ClipRecord, error) {
	rows, err := l.db.Query(
		`SELECT id, path, duration, title, added_at FROM clips ORDER BY added_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list clips: %w", err)
	}
	defer rows.Close()

	var out []ClipRecord
	for rows.Next() {
		var rec ClipRecord
		var added int64
		if err := rows.Scan(&rec.ID, &rec.Path, &rec.Duration, &rec.Title, &added); err != nil {
			return nil, fmt.Errorf("scan clip: %w", err)
		}
		rec.AddedAt = time.Unix(added, 0)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Remove deletes a clip from the registry. Items referencing it simply stop
// resolving; the timeline treats that as an unresolvable reference.
func (l *Library) Remove(id string) error {
	_, err := l.db.Exec(`DELETE FROM clips WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete clip: %w", err)
	}
	return nil
}
