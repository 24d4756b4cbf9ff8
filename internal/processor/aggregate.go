package processor

import (
	"fmt"

	"github.com/desertthunder/spx/internal/models"
)

// TotalDuration sums duration_ms across a canonical track sequence and formats
// the result. An empty sequence yields "0s".
func TotalDuration(tracks []models.Track) string {
	var total int64
	for _, t := range tracks {
		total += t.DurationMS
	}
	return FormatTotalDuration(total)
}

// RawTotalDuration is TotalDuration over raw records; absent durations count as 0.
func RawTotalDuration(raws []models.RawTrack) string {
	var total int64
	for _, r := range raws {
		if r.DurationMS != nil {
			total += *r.DurationMS
		}
	}
	return FormatTotalDuration(total)
}

// FormatTotalDuration converts total milliseconds to "{h}h {m}m {s}s",
// "{m}m {s}s", or "{s}s", using the first branch that applies.
func FormatTotalDuration(totalMS int64) string {
	totalSeconds := totalMS / 1000
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// Summarize computes derived statistics for a canonical track sequence.
// Average popularity is 0 for an empty sequence.
func Summarize(playlist models.Playlist, tracks []models.Track) models.Stats {
	stats := models.Stats{
		PlaylistName:         fallback(playlist.Name, defaultTrackName),
		TotalTracksExtracted: len(tracks),
		TotalDuration:        TotalDuration(tracks),
	}

	artists := make(map[string]struct{}, len(tracks))
	var popularity int

	for _, t := range tracks {
		popularity += t.Popularity
		artists[t.Artists] = struct{}{}

		if t.Explicit {
			stats.ExplicitTracks++
		}
		if t.ReleaseYear != "" && t.ReleaseYear != defaultYear {
			stats.TracksWithReleaseYear++
		}
		if t.Features.Danceability != NA {
			stats.TracksWithFeatures++
		}
	}

	if len(tracks) > 0 {
		stats.AvgPopularity = float64(popularity) / float64(len(tracks))
	}
	stats.UniqueArtists = len(artists)

	return stats
}

// Validate reports whether a raw track carries the fields required for a
// meaningful canonical record: name, artists, and album name. Optional
// pre-filter; Standardize itself accepts any raw record.
func Validate(raw models.RawTrack) bool {
	return raw.Name != "" && len(raw.Artists) > 0 && raw.AlbumName != ""
}
