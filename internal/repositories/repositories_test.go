package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/shared"
	tu "github.com/desertthunder/spx/internal/testing"
)

func testRepo(t *testing.T) *ExtractionRepository {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	// a second pool connection would see a fresh empty database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	repo := NewExtractionRepository(db)
	if err := repo.Init(); err != nil {
		t.Fatalf("failed to init repository: %v", err)
	}

	return repo
}

func fixturePlaylist() models.Playlist {
	return models.Playlist{
		ID:          "37i9dQZF1DXcBWIGoYBM5M",
		Name:        "Road Trip",
		TotalTracks: 1,
		ExtractedAt: time.Now().UTC(),
	}
}

func fixtureRawTracks() []models.RawTrack {
	return []models.RawTrack{
		{
			Name:       "Song One",
			Artists:    []string{"Artist A"},
			AlbumName:  "Album One",
			DurationMS: tu.I64(200000),
			Features:   models.RawFeatures{Danceability: tu.F64(0.414)},
		},
	}
}

func TestExtractionRepository(t *testing.T) {
	t.Run("Save And Get", func(t *testing.T) {
		repo := testRepo(t)

		if err := repo.Save("Spotify API", fixturePlaylist(), fixtureRawTracks()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		cached, err := repo.Get("37i9dQZF1DXcBWIGoYBM5M", time.Hour)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if cached.Method != "Spotify API" {
			t.Errorf("expected method 'Spotify API', got %q", cached.Method)
		}
		if cached.Playlist.Name != "Road Trip" {
			t.Errorf("expected playlist name 'Road Trip', got %q", cached.Playlist.Name)
		}
		if len(cached.RawTracks) != 1 {
			t.Fatalf("expected 1 raw track, got %d", len(cached.RawTracks))
		}

		track := cached.RawTracks[0]
		if track.DurationMS == nil || *track.DurationMS != 200000 {
			t.Errorf("raw duration did not round trip: %v", track.DurationMS)
		}
		if track.Features.Danceability == nil || *track.Features.Danceability != 0.414 {
			t.Errorf("raw features did not round trip: %v", track.Features.Danceability)
		}
	})

	t.Run("Miss On Unknown Playlist", func(t *testing.T) {
		repo := testRepo(t)

		_, err := repo.Get("unknown", time.Hour)
		if !errors.Is(err, shared.ErrCacheMiss) {
			t.Errorf("expected ErrCacheMiss, got %v", err)
		}
	})

	t.Run("Miss On Stale Entry", func(t *testing.T) {
		repo := testRepo(t)

		if err := repo.Save("Spotify API", fixturePlaylist(), fixtureRawTracks()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		time.Sleep(10 * time.Millisecond)

		_, err := repo.Get("37i9dQZF1DXcBWIGoYBM5M", time.Nanosecond)
		if !errors.Is(err, shared.ErrCacheMiss) {
			t.Errorf("expected ErrCacheMiss for stale entry, got %v", err)
		}
	})

	t.Run("Save Replaces Previous Entry", func(t *testing.T) {
		repo := testRepo(t)

		if err := repo.Save("Web Scraper", fixturePlaylist(), fixtureRawTracks()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := repo.Save("Spotify API", fixturePlaylist(), fixtureRawTracks()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		cached, err := repo.Get("37i9dQZF1DXcBWIGoYBM5M", time.Hour)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cached.Method != "Spotify API" {
			t.Errorf("expected upserted method 'Spotify API', got %q", cached.Method)
		}
	})

	t.Run("Purge Stale Entries", func(t *testing.T) {
		repo := testRepo(t)

		if err := repo.Save("Spotify API", fixturePlaylist(), fixtureRawTracks()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		removed, err := repo.Purge(time.Hour)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if removed != 0 {
			t.Errorf("expected fresh entry to survive, removed %d", removed)
		}

		time.Sleep(10 * time.Millisecond)

		removed, err = repo.Purge(0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if removed != 1 {
			t.Errorf("expected 1 purged entry, got %d", removed)
		}

		if _, err := repo.Get("37i9dQZF1DXcBWIGoYBM5M", time.Hour); !errors.Is(err, shared.ErrCacheMiss) {
			t.Errorf("expected ErrCacheMiss after purge, got %v", err)
		}
	})
}
