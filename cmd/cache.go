package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/repositories"
	"github.com/desertthunder/spx/internal/services"
	"github.com/desertthunder/spx/internal/shared"
	"github.com/urfave/cli/v3"
)

// CacheShow prints the cached extraction for a playlist.
func (r *Runner) CacheShow(ctx context.Context, cmd *cli.Command) error {
	idOrURL := cmd.StringArg("playlist")
	if idOrURL == "" {
		return fmt.Errorf("%w: playlist ID or URL is required", shared.ErrMissingArgument)
	}

	playlistID, err := services.ParsePlaylistID(idOrURL)
	if err != nil {
		return err
	}

	repo, cleanup, err := r.repository()
	if err != nil {
		return err
	}
	defer cleanup()

	cached, err := repo.Get(playlistID, r.config.Database.CacheTTL())
	if err != nil {
		return err
	}

	entry := struct {
		Method      string            `json:"method"`
		ExtractedAt time.Time         `json:"extracted_at"`
		Playlist    models.Playlist   `json:"playlist"`
		Tracks      []models.RawTrack `json:"tracks"`
	}{
		Method:      cached.Method,
		ExtractedAt: cached.ExtractedAt,
		Playlist:    cached.Playlist,
		Tracks:      cached.RawTracks,
	}

	return r.writeJSON(entry, cmd.Bool("pretty"))
}

// CachePurge deletes stale cached extractions, or all of them with --all.
func (r *Runner) CachePurge(ctx context.Context, cmd *cli.Command) error {
	repo, cleanup, err := r.repository()
	if err != nil {
		return err
	}
	defer cleanup()

	maxAge := r.config.Database.CacheTTL()
	if cmd.Bool("all") {
		maxAge = 0
	}

	deleted, err := repo.Purge(maxAge)
	if err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}

	r.logger.Infof("purged %d cached extractions", deleted)
	r.writePlainln("✓ Purged %d cached extractions", deleted)

	return nil
}

// repository opens the cache database and returns the extraction repository.
func (r *Runner) repository() (*repositories.ExtractionRepository, func(), error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	repo := repositories.NewExtractionRepository(db)
	if err := repo.Init(); err != nil {
		db.Close()
		return nil, nil, err
	}

	return repo, func() { db.Close() }, nil
}
