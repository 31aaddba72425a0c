// Package store keeps detections in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"langindexer/internal/pkg/metrics"
	"langindexer/internal/pkg/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS detections (
    id TEXT PRIMARY KEY,
    url TEXT,
    signature TEXT NOT NULL,
    language TEXT NOT NULL,
    reliable INTEGER NOT NULL,
    text_bytes INTEGER NOT NULL,
    top_json TEXT NOT NULL,
    chunks_json TEXT,
    shadow_language TEXT,
    detected_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS detections_language ON detections(language);
CREATE INDEX IF NOT EXISTS detections_signature ON detections(signature);
`

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("detection not found")

// Store is a SQLite backed detection sink.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Add inserts or replaces one detection.
func (s *Store) Add(ctx context.Context, d *models.Detection) error {
	top, err := json.Marshal(d.Top)
	if err != nil {
		return fmt.Errorf("encode top languages: %w", err)
	}
	var chunks []byte
	if len(d.Chunks) > 0 {
		if chunks, err = json.Marshal(d.Chunks); err != nil {
			return fmt.Errorf("encode chunks: %w", err)
		}
	}
	_, err = s.db.ExecContext(ctx, `
INSERT OR REPLACE INTO detections
    (id, url, signature, language, reliable, text_bytes, top_json, chunks_json, shadow_language, detected_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.URL, d.Signature, d.Language, d.Reliable, d.TextBytes,
		string(top), string(chunks), d.ShadowLanguage, d.DetectedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		metrics.BulkFailures.WithLabelValues("sqlite").Inc()
		return fmt.Errorf("insert detection %s: %w", d.ID, err)
	}
	metrics.DocumentsIndexed.WithLabelValues("sqlite").Inc()
	return nil
}

// Get loads the detection with the given id.
func (s *Store) Get(ctx context.Context, id string) (*models.Detection, error) {
	var (
		d                  models.Detection
		url, shadow        sql.NullString
		top, chunks, stamp string
		chunksNull         sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, url, signature, language, reliable, text_bytes, top_json, chunks_json, shadow_language, detected_at
FROM detections WHERE id = ?`, id).Scan(
		&d.ID, &url, &d.Signature, &d.Language, &d.Reliable, &d.TextBytes, &top, &chunksNull, &shadow, &stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query detection %s: %w", id, err)
	}
	d.URL, d.ShadowLanguage = url.String, shadow.String
	if err := json.Unmarshal([]byte(top), &d.Top); err != nil {
		return nil, fmt.Errorf("decode top languages: %w", err)
	}
	if chunks = chunksNull.String; chunks != "" {
		if err := json.Unmarshal([]byte(chunks), &d.Chunks); err != nil {
			return nil, fmt.Errorf("decode chunks: %w", err)
		}
	}
	if d.DetectedAt, err = time.Parse(time.RFC3339Nano, stamp); err != nil {
		return nil, fmt.Errorf("parse detection time: %w", err)
	}
	return &d, nil
}

// CountByLanguage returns the number of stored detections per language.
func (s *Store) CountByLanguage(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT language, COUNT(*) FROM detections GROUP BY language`)
	if err != nil {
		return nil, fmt.Errorf("count detections: %w", err)
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var (
			lang string
			n    int
		)
		if err := rows.Scan(&lang, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[lang] = n
	}
	return counts, rows.Err()
}

// Close closes the database.
func (s *Store) Close(context.Context) error {
	return s.db.Close()
}
