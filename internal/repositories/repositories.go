// package repositories provides the persistence layer for the extraction cache.
//
// Completed extractions are stored as JSON blobs keyed by playlist ID so a
// repeat request inside the freshness window skips the upstream source.
package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/shared"
)

const createExtractionsTable = `
CREATE TABLE IF NOT EXISTS extractions (
	id TEXT PRIMARY KEY,
	playlist_id TEXT NOT NULL UNIQUE,
	method TEXT NOT NULL,
	playlist_json TEXT NOT NULL,
	tracks_json TEXT NOT NULL,
	extracted_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_extractions_extracted_at ON extractions(extracted_at);
`

// CachedExtraction is one stored extraction result.
type CachedExtraction struct {
	ID          string
	PlaylistID  string
	Method      string
	Playlist    models.Playlist
	RawTracks   []models.RawTrack
	ExtractedAt time.Time
}

// ExtractionRepository persists extraction results to SQLite.
type ExtractionRepository struct {
	db *sql.DB
}

// NewExtractionRepository creates a repository backed by the given database.
func NewExtractionRepository(db *sql.DB) *ExtractionRepository {
	return &ExtractionRepository{db: db}
}

// Init creates the extractions table if it does not exist.
func (r *ExtractionRepository) Init() error {
	if _, err := r.db.Exec(createExtractionsTable); err != nil {
		return fmt.Errorf("failed to create extractions table: %w", err)
	}
	return nil
}

// Save upserts an extraction result for a playlist. The previous cached result
// for the same playlist ID is replaced.
func (r *ExtractionRepository) Save(method string, playlist models.Playlist, raws []models.RawTrack) error {
	playlistJSON, err := json.Marshal(playlist)
	if err != nil {
		return fmt.Errorf("failed to marshal playlist: %w", err)
	}

	tracksJSON, err := json.Marshal(raws)
	if err != nil {
		return fmt.Errorf("failed to marshal tracks: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO extractions (id, playlist_id, method, playlist_json, tracks_json, extracted_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(playlist_id) DO UPDATE SET
			method = excluded.method,
			playlist_json = excluded.playlist_json,
			tracks_json = excluded.tracks_json,
			extracted_at = excluded.extracted_at`,
		shared.GenerateID(), playlist.ID, method, string(playlistJSON), string(tracksJSON), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save extraction: %w", err)
	}

	return nil
}

// Get returns the cached extraction for a playlist, or shared.ErrCacheMiss
// when none exists or the cached result is older than maxAge.
func (r *ExtractionRepository) Get(playlistID string, maxAge time.Duration) (*CachedExtraction, error) {
	row := r.db.QueryRow(`
		SELECT id, playlist_id, method, playlist_json, tracks_json, extracted_at
		FROM extractions WHERE playlist_id = ?`, playlistID)

	var cached CachedExtraction
	var playlistJSON, tracksJSON string

	err := row.Scan(&cached.ID, &cached.PlaylistID, &cached.Method, &playlistJSON, &tracksJSON, &cached.ExtractedAt)
	if err == sql.ErrNoRows {
		return nil, shared.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read extraction: %w", err)
	}

	if maxAge > 0 && time.Since(cached.ExtractedAt) > maxAge {
		return nil, shared.ErrCacheMiss
	}

	if err := json.Unmarshal([]byte(playlistJSON), &cached.Playlist); err != nil {
		return nil, fmt.Errorf("failed to unmarshal playlist: %w", err)
	}
	if err := json.Unmarshal([]byte(tracksJSON), &cached.RawTracks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tracks: %w", err)
	}

	return &cached, nil
}

// Purge deletes cached extractions older than maxAge and returns the number
// removed. maxAge of zero clears the whole cache.
func (r *ExtractionRepository) Purge(maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge)

	result, err := r.db.Exec(`DELETE FROM extractions WHERE extracted_at <= ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge extractions: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged extractions: %w", err)
	}

	return removed, nil
}
