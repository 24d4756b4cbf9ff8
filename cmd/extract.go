package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/spx/internal/formatter"
	"github.com/desertthunder/spx/internal/shared"
	"github.com/desertthunder/spx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ExtractPlaylist extracts a playlist and prints a summary or the full
// normalized result as JSON.
func (r *Runner) ExtractPlaylist(ctx context.Context, cmd *cli.Command) error {
	idOrURL := cmd.StringArg("playlist")
	if idOrURL == "" {
		return fmt.Errorf("%w: playlist ID or URL is required", shared.ErrMissingArgument)
	}

	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	engine, cleanup, err := r.engine(!cmd.Bool("no-cache"))
	if err != nil {
		return err
	}
	defer cleanup()

	start := time.Now()
	result, err := r.runExtract(ctx, engine, idOrURL, !useJSON)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(result, pretty)
	}

	r.writeStats(result)
	r.writePlainln("  Elapsed: %s", elapsed(start))

	return nil
}

// ExportPlaylist extracts a single playlist and writes its CSV/Excel
// artifacts to the output directory.
func (r *Runner) ExportPlaylist(ctx context.Context, cmd *cli.Command) error {
	idOrURL := cmd.StringArg("playlist")
	if idOrURL == "" {
		return fmt.Errorf("%w: playlist ID or URL is required", shared.ErrMissingArgument)
	}

	formats, err := parseFormats(cmd.StringSlice("format"))
	if err != nil {
		return err
	}

	outputDir := cmd.String("output")

	engine, cleanup, err := r.engine(!cmd.Bool("no-cache"))
	if err != nil {
		return err
	}
	defer cleanup()

	start := time.Now()
	result, err := r.runExtract(ctx, engine, idOrURL, true)
	if err != nil {
		return err
	}

	r.writeStats(result)

	for _, format := range formats {
		var path string
		switch format {
		case "csv":
			path, err = formatter.WriteCSVExport(result.Playlist, result.Tracks, outputDir)
		case "xlsx":
			path, err = formatter.WriteExcelExport(result.Playlist, result.Tracks, outputDir)
		}
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrExportFailed, err)
		}
		r.writePlainln("  Wrote %s", path)
	}

	r.writePlainln("  Elapsed: %s", elapsed(start))

	return nil
}

// BulkExport extracts and exports multiple playlists concurrently.
func (r *Runner) BulkExport(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.StringArgs("playlists")
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one playlist ID or URL is required", shared.ErrMissingArgument)
	}

	formats, err := parseFormats(cmd.StringSlice("format"))
	if err != nil {
		return err
	}

	engine, cleanup, err := r.engine(true)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := tasks.BulkExportOpts{
		Formats:    formats,
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	}

	prog := make(chan tasks.ProgressUpdate)
	done := make(chan struct{})
	go r.drainProgress(prog, done)

	start := time.Now()
	result, err := engine.BulkExport(ctx, prog, ids, opts)
	close(prog)
	<-done

	if err != nil {
		return err
	}

	r.writePlainln("✓ Exported %d/%d playlists to %s", result.SuccessfulExports, result.TotalPlaylists, result.OutputDirectory)
	if result.FailedExports > 0 {
		for _, playlist := range result.Results {
			if playlist.Error != "" {
				r.writePlainln("  ✗ %s: %s", playlist.PlaylistID, playlist.Error)
			}
		}
	}
	r.writePlainln("  Elapsed: %s", elapsed(start))

	return nil
}

// runExtract wires a progress printer around a single engine extraction.
func (r *Runner) runExtract(ctx context.Context, engine *tasks.ExtractEngine, idOrURL string, showProgress bool) (*tasks.ExtractResult, error) {
	var prog chan tasks.ProgressUpdate
	done := make(chan struct{})

	if showProgress {
		prog = make(chan tasks.ProgressUpdate)
		go r.drainProgress(prog, done)
	} else {
		close(done)
	}

	result, err := engine.Extract(ctx, prog, idOrURL)
	if prog != nil {
		close(prog)
	}
	<-done

	return result, err
}

// parseFormats validates --format values, defaulting to both formats.
func parseFormats(formats []string) ([]string, error) {
	if len(formats) == 0 {
		return []string{"csv", "xlsx"}, nil
	}

	parsed := make([]string, 0, len(formats))
	for _, format := range formats {
		format = strings.ToLower(strings.TrimSpace(format))
		switch format {
		case "csv", "xlsx":
			parsed = append(parsed, format)
		default:
			return nil, fmt.Errorf("%w: unsupported format %q (expected csv or xlsx)", shared.ErrInvalidArgument, format)
		}
	}

	return parsed, nil
}
