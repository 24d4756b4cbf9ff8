package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/shared"
)

// metadataLabel and tracksLabel head the two blocks of the CSV document.
const (
	metadataLabel = "PLAYLIST METADATA"
	tracksLabel   = "TRACKS DATA"
)

// csvHeaders is the fixed 22-column header for the tracks block.
var csvHeaders = []string{
	"Track Number",
	"Track Name",
	"Artist(s)",
	"Album Name",
	"Duration (mm:ss)",
	"Date Added",
	"Release Year",
	"Popularity",
	"Explicit",
	"Streams",
	"Danceability",
	"Energy",
	"Valence",
	"Tempo",
	"Acousticness",
	"Instrumentalness",
	"Liveness",
	"Speechiness",
	"Loudness",
	"Key",
	"Mode",
	"Time Signature",
}

// ExportToCSV renders a playlist and its canonical tracks as a single CSV
// document: a metadata header block, a blank line, then the tracks block.
//
// Track numbering is 1-based export position, independent of any track_number
// carried on the record. Returns shared.ErrNoTracks for an empty sequence; any
// rendering fault yields a single wrapped error and no partial document.
func ExportToCSV(playlist models.Playlist, tracks []models.Track) ([]byte, error) {
	if len(tracks) == 0 {
		return nil, shared.ErrNoTracks
	}

	var buf bytes.Buffer

	writeMetadataBlock(&buf, playlist, len(tracks))

	buf.WriteString(tracksLabel + "\n")

	writer := csv.NewWriter(&buf)
	if err := writer.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("failed to create CSV: %w", err)
	}

	for i, track := range tracks {
		record := []string{
			strconv.Itoa(i + 1),
			track.TrackName,
			track.Artists,
			track.AlbumName,
			track.Duration,
			track.DateAdded,
			track.ReleaseYear,
			strconv.Itoa(track.Popularity),
			yesNo(track.Explicit),
			track.Streams,
			track.Features.Danceability,
			track.Features.Energy,
			track.Features.Valence,
			track.Features.Tempo,
			track.Features.Acousticness,
			track.Features.Instrumentalness,
			track.Features.Liveness,
			track.Features.Speechiness,
			track.Features.Loudness,
			track.Features.Key,
			track.Features.Mode,
			track.Features.TimeSignature,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to create CSV: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to create CSV: %w", err)
	}

	return buf.Bytes(), nil
}

// writeMetadataBlock emits the label line and the seven two-column metadata
// rows. The Description value is always quoted.
func writeMetadataBlock(buf *bytes.Buffer, playlist models.Playlist, trackCount int) {
	name := playlist.Name
	if name == "" {
		name = "Unknown Playlist"
	}

	total := playlist.TotalTracks
	if total == 0 {
		total = trackCount
	}

	duration := playlist.TotalDuration
	if duration == "" {
		duration = "Unknown"
	}

	extracted := playlist.ExtractedAt
	if extracted.IsZero() {
		extracted = time.Now()
	}

	buf.WriteString(metadataLabel + "\n")
	fmt.Fprintf(buf, "Name,%s\n", quoteIfNeeded(name))
	fmt.Fprintf(buf, "Description,%s\n", quoteAlways(playlist.Description))
	fmt.Fprintf(buf, "Total Saves/Followers,%d\n", playlist.Followers)
	fmt.Fprintf(buf, "Number of Songs,%d\n", total)
	fmt.Fprintf(buf, "Total Duration,%s\n", quoteIfNeeded(duration))
	fmt.Fprintf(buf, "URL,%s\n", quoteIfNeeded(playlist.ExternalURL))
	fmt.Fprintf(buf, "Extracted on,%s\n", extracted.Format("2006-01-02 15:04:05"))
	buf.WriteString("\n")
}

// quoteIfNeeded applies the standard CSV quoting rule: wrap in quotes and
// double embedded quotes when the field contains a comma, quote, or newline.
func quoteIfNeeded(field string) string {
	if strings.ContainsAny(field, ",\"\n\r") {
		return quoteAlways(field)
	}
	return field
}

func quoteAlways(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
