package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	FetchPlaylist Phase = iota
	ScrapePlaylist
	NormalizeTracks
	ExportPlaylist
)

func (p Phase) String() string {
	switch p {
	case FetchPlaylist:
		return "fetch_playlist"
	case ScrapePlaylist:
		return "scrape_playlist"
	case NormalizeTracks:
		return "normalize_tracks"
	case ExportPlaylist:
		return "export_playlist"
	default:
		return ""
	}
}

func fetchPlaylistUpdate(source string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    1,
		Total:   2,
		Message: fmt.Sprintf("Fetching playlist via %s...", source),
	}
}

func scrapePlaylistUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScrapePlaylist,
		Step:    1,
		Total:   2,
		Message: "API unavailable, falling back to web scraper...",
	}
}

func normalizeUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   NormalizeTracks,
		Step:    2,
		Total:   2,
		Message: fmt.Sprintf("Normalizing %d tracks...", count),
	}
}

func exportingUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Exporting playlist (%s)...", name),
	}
}

func exportCompletedUpdate(step, total int, name string, files int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Exported %s (%d files)", name, files),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Export failed for %s: %v", name, err),
	}
}
