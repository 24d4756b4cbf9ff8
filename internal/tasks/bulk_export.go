package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/spx/internal/formatter"
	"github.com/desertthunder/spx/internal/shared"
	"golang.org/x/time/rate"
)

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Formats    []string // Export formats: csv, xlsx (default: both)
	OutputDir  string   // Base output directory (default: spotify_export_{epoch})
	NumWorkers int      // Concurrent export workers (default: 4)
	RateLimit  float64  // Upstream fetches per second (default: 2)
}

// PlaylistExportResult records the outcome for one playlist in a bulk export.
type PlaylistExportResult struct {
	PlaylistID   string   `json:"playlist_id"`
	PlaylistName string   `json:"playlist_name"`
	Method       string   `json:"method,omitempty"`
	Success      bool     `json:"success"`
	Files        []string `json:"files,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// BulkExportResult summarizes an entire bulk export run.
type BulkExportResult struct {
	TotalPlaylists    int                    `json:"total_playlists"`
	SuccessfulExports int                    `json:"successful_exports"`
	FailedExports     int                    `json:"failed_exports"`
	OutputDirectory   string                 `json:"output_directory"`
	ManifestPath      string                 `json:"manifest_path,omitempty"`
	Results           []PlaylistExportResult `json:"results"`
}

type bulkExportJob struct {
	playlistID string
	result     *ExtractResult
}

// BulkExport extracts and exports multiple playlists concurrently.
//
// Upstream fetches run sequentially behind a rate limiter while rendering and
// file writes fan out to a worker pool. Partial failures are recorded per
// playlist and a manifest summarizing the run is written to the output
// directory.
func (e *ExtractEngine) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, ids []string, opts BulkExportOpts) (*BulkExportResult, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no playlist IDs given", shared.ErrMissingArgument)
	}

	if len(opts.Formats) == 0 {
		opts.Formats = []string{"csv", "xlsx"}
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("spotify_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 8 {
		opts.NumWorkers = 8
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	for _, format := range opts.Formats {
		if format != "csv" && format != "xlsx" {
			return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
		}
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalPlaylists:  len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlaylistExportResult, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan bulkExportJob, len(ids))
	results := make(chan PlaylistExportResult, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)

		for i, playlistID := range ids {
			select {
			case <-ctx.Done():
				return
			default:
			}

			if err := limiter.Wait(ctx); err != nil {
				return
			}

			extract, err := e.Extract(ctx, nil, playlistID)
			if err != nil {
				results <- PlaylistExportResult{
					PlaylistID:   playlistID,
					PlaylistName: fmt.Sprintf("Unknown (%s)", playlistID),
					Success:      false,
					Error:        fmt.Sprintf("failed to extract playlist: %v", err),
				}
				continue
			}

			e.sendProgress(prog, exportingUpdate(i+1, len(ids), extract.Playlist.Name))
			jobs <- bulkExportJob{playlistID: playlistID, result: extract}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.PlaylistName, len(res.Files)))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(ids), res.PlaylistName, fmt.Errorf("%s", res.Error)))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	manifest, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("export completed but failed to build manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, manifest, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	return result, nil
}

// exportWorker renders and writes artifacts for extracted playlists.
func (e *ExtractEngine) exportWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan bulkExportJob, results chan<- PlaylistExportResult, opts BulkExportOpts) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- e.exportSinglePlaylist(job, opts)
	}
}

// exportSinglePlaylist writes the requested artifact formats for one playlist
// into a per-playlist subdirectory.
func (e *ExtractEngine) exportSinglePlaylist(job bulkExportJob, opts BulkExportOpts) PlaylistExportResult {
	result := PlaylistExportResult{
		PlaylistID:   job.playlistID,
		PlaylistName: job.result.Playlist.Name,
		Method:       job.result.Method,
		Files:        []string{},
	}

	dir := filepath.Join(opts.OutputDir, job.playlistID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		result.Error = fmt.Sprintf("failed to create playlist directory: %v", err)
		return result
	}

	for _, format := range opts.Formats {
		var path string
		var err error

		switch format {
		case "csv":
			path, err = formatter.WriteCSVExport(job.result.Playlist, job.result.Tracks, dir)
		case "xlsx":
			path, err = formatter.WriteExcelExport(job.result.Playlist, job.result.Tracks, dir)
		}

		if err != nil {
			result.Error = fmt.Sprintf("%s export failed: %v", format, err)
			return result
		}
		result.Files = append(result.Files, path)
	}

	result.Success = true
	return result
}
