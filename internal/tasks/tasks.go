// package tasks orchestrates playlist extraction and export operations.
//
// The core abstraction is ExtractEngine, which selects an acquisition source,
// runs the raw records through the normalizer, and hands the canonical result
// to the exporters. Operations emit progress updates via channels for
// non-blocking status reporting to the CLI layer.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/processor"
	"github.com/desertthunder/spx/internal/repositories"
	"github.com/desertthunder/spx/internal/services"
	"github.com/desertthunder/spx/internal/shared"
)

// ExtractResult contains all data from a completed extraction.
type ExtractResult struct {
	Method    string            `json:"method"`     // Source that produced the data
	Playlist  models.Playlist   `json:"playlist"`   // Summary record with computed total duration
	RawTracks []models.RawTrack `json:"raw_tracks"` // Source records as received
	Tracks    []models.Track    `json:"tracks"`     // Canonical records
	Stats     models.Stats      `json:"stats"`      // Derived statistics
}

// ExtractEngine selects an acquisition source, normalizes its output, and
// computes derived statistics. The scraper is the fallback when the API client
// is missing or fails.
type ExtractEngine struct {
	api      services.Extractor
	scraper  services.Extractor
	proc     *processor.Processor
	cache    *repositories.ExtractionRepository
	cacheTTL time.Duration
	logger   *log.Logger
}

// EngineOpts contains dependencies for creating an ExtractEngine. API, Scraper,
// and Cache are each optional; at least one source must be set for Extract to
// succeed.
type EngineOpts struct {
	API      services.Extractor
	Scraper  services.Extractor
	Proc     *processor.Processor
	Cache    *repositories.ExtractionRepository
	CacheTTL time.Duration
	Logger   *log.Logger
}

// NewExtractEngine creates an ExtractEngine with the provided dependencies.
func NewExtractEngine(opts EngineOpts) *ExtractEngine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Proc == nil {
		opts.Proc = processor.New(opts.Logger)
	}

	return &ExtractEngine{
		api:      opts.API,
		scraper:  opts.Scraper,
		proc:     opts.Proc,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		logger:   opts.Logger,
	}
}

// Extract acquires a playlist by URL or bare ID, preferring the API source and
// falling back to the scraper, then normalizes and summarizes the result.
//
// The returned playlist record carries the computed total duration and the
// extraction timestamp. Results are cached when a cache repository is set.
func (e *ExtractEngine) Extract(ctx context.Context, prog chan<- ProgressUpdate, idOrURL string) (*ExtractResult, error) {
	playlistID, err := services.ParsePlaylistID(idOrURL)
	if err != nil {
		return nil, err
	}

	method, playlist, raws, err := e.acquire(ctx, prog, playlistID)
	if err != nil {
		return nil, err
	}

	e.sendProgress(prog, normalizeUpdate(len(raws)))

	tracks := e.proc.ProcessTracks(raws)

	result := &ExtractResult{
		Method:    method,
		Playlist:  *playlist,
		RawTracks: raws,
		Tracks:    tracks,
	}
	result.Playlist.TotalDuration = processor.TotalDuration(tracks)
	if result.Playlist.ExtractedAt.IsZero() {
		result.Playlist.ExtractedAt = time.Now()
	}
	result.Stats = processor.Summarize(result.Playlist, tracks)

	if e.cache != nil && method != cacheMethod {
		if err := e.cache.Save(method, result.Playlist, raws); err != nil {
			e.logger.Warnf("failed to cache extraction for %s: %v", playlistID, err)
		}
	}

	return result, nil
}

const cacheMethod = "cache"

// acquire returns the first successful source result: cache, API, scraper.
func (e *ExtractEngine) acquire(ctx context.Context, prog chan<- ProgressUpdate, playlistID string) (string, *models.Playlist, []models.RawTrack, error) {
	if e.cache != nil {
		if cached, err := e.cache.Get(playlistID, e.cacheTTL); err == nil {
			e.logger.Infof("using cached extraction for %s (method %s)", playlistID, cached.Method)
			return cacheMethod, &cached.Playlist, cached.RawTracks, nil
		} else if !errors.Is(err, shared.ErrCacheMiss) {
			e.logger.Warnf("extraction cache lookup failed: %v", err)
		}
	}

	var apiErr error
	if e.api != nil {
		e.sendProgress(prog, fetchPlaylistUpdate(e.api.Name()))

		playlist, raws, err := e.api.ExtractPlaylist(ctx, playlistID)
		if err == nil {
			return e.api.Name(), playlist, raws, nil
		}

		apiErr = err
		e.logger.Warnf("%s extraction failed: %v", e.api.Name(), err)
	}

	if e.scraper != nil {
		e.sendProgress(prog, scrapePlaylistUpdate())

		playlist, raws, err := e.scraper.ExtractPlaylist(ctx, playlistID)
		if err == nil {
			return e.scraper.Name(), playlist, raws, nil
		}

		if apiErr != nil {
			return "", nil, nil, fmt.Errorf("all sources failed: API: %v; scraper: %w", apiErr, err)
		}
		return "", nil, nil, err
	}

	if apiErr != nil {
		return "", nil, nil, apiErr
	}
	return "", nil, nil, fmt.Errorf("%w: no acquisition source configured", shared.ErrServiceUnavailable)
}

// sendProgress sends an update without blocking when no one is listening.
func (e *ExtractEngine) sendProgress(prog chan<- ProgressUpdate, update ProgressUpdate) {
	if prog == nil {
		return
	}
	select {
	case prog <- update:
	default:
	}
}
