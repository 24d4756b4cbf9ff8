package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spx/internal/processor"
	"github.com/desertthunder/spx/internal/repositories"
	"github.com/desertthunder/spx/internal/services"
	"github.com/desertthunder/spx/internal/shared"
	"github.com/desertthunder/spx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	api     services.Extractor
	scraper services.Extractor
	proc    *processor.Processor
	logger  *log.Logger
	output  io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	API     services.Extractor
	Scraper services.Extractor
	Logger  *log.Logger
	Output  io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:  opts.Config,
		api:     opts.API,
		scraper: opts.Scraper,
		proc:    processor.New(opts.Logger),
		logger:  opts.Logger,
		output:  opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		extractCommand, exportCommand, serveCommand, cacheCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// engine builds an ExtractEngine, attaching the extraction cache when the
// cache database can be opened.
func (r *Runner) engine(useCache bool) (*tasks.ExtractEngine, func(), error) {
	opts := tasks.EngineOpts{
		API:      r.api,
		Scraper:  r.scraper,
		Proc:     r.proc,
		CacheTTL: r.config.Database.CacheTTL(),
		Logger:   r.logger,
	}

	cleanup := func() {}

	if useCache {
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

		opts.Cache = repo
		cleanup = func() { db.Close() }
	}

	return tasks.NewExtractEngine(opts), cleanup, nil
}

// drainProgress prints progress updates until the channel closes.
func (r *Runner) drainProgress(prog <-chan tasks.ProgressUpdate, done chan<- struct{}) {
	for update := range prog {
		r.writePlainln("  [%s] %s", update.Phase, update.Message)
	}
	close(done)
}

func (r *Runner) writePlain(format string, args ...any) {
	fmt.Fprintf(r.output, format, args...)
}

func (r *Runner) writePlainln(format string, args ...any) {
	fmt.Fprintf(r.output, format+"\n", args...)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return err
	}

	if _, err := r.output.Write(append(output, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

func (r *Runner) writeStats(result *tasks.ExtractResult) {
	r.writePlainln("✓ Extracted via %s: %s", result.Method, result.Playlist.Name)
	r.writePlainln("  Tracks: %d", result.Stats.TotalTracksExtracted)
	r.writePlainln("  Total duration: %s", result.Stats.TotalDuration)
	r.writePlainln("  Average popularity: %.1f", result.Stats.AvgPopularity)
	r.writePlainln("  Explicit tracks: %d", result.Stats.ExplicitTracks)
	r.writePlainln("  Tracks with audio features: %d", result.Stats.TracksWithFeatures)
}

// elapsed reports a duration suitable for the success summary line.
func elapsed(start time.Time) string {
	return time.Since(start).Round(time.Millisecond).String()
}
