// package processor converts raw, source-specific track records into the
// canonical track shape and computes playlist-level aggregates.
//
// Standardize is pure: the same raw record always yields the same canonical
// record, and every canonical field is populated with a defined default.
package processor

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/shared"
)

// NA is the sentinel rendered for any value an acquisition source did not provide.
const NA = "N/A"

// Defaults substituted for absent raw fields.
const (
	defaultTrackName = "Unknown"
	defaultArtist    = "Unknown Artist"
	defaultAlbum     = "Unknown Album"
	defaultDuration  = "0:00"
	defaultDate      = "Unknown"
	defaultYear      = "Unknown"
)

// dateLayouts are tried in order for non-ISO date strings.
var dateLayouts = []string{"2006-01-02", "01/02/2006", "02/01/2006"}

// Processor normalizes raw track records. Safe for concurrent use; it carries
// no state beyond a logger.
type Processor struct {
	logger *log.Logger
}

// New creates a Processor. A nil logger falls back to the shared default.
func New(logger *log.Logger) *Processor {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Processor{logger: logger}
}

// ProcessTracks standardizes a raw track sequence, skipping any track whose
// normalization faults. Partial success is always preferred over total failure:
// a skipped track is logged with its name and processing continues.
func (p *Processor) ProcessTracks(raws []models.RawTrack) []models.Track {
	tracks := make([]models.Track, 0, len(raws))

	for _, raw := range raws {
		track, err := p.standardize(raw)
		if err != nil {
			p.logger.Warnf("error processing track %s: %v", rawName(raw), err)
			continue
		}
		tracks = append(tracks, track)
	}

	p.logger.Infof("processed %d tracks", len(tracks))
	return tracks
}

// Standardize converts one raw track record into the canonical 23-field track
// record. Field-level formatting faults are recovered locally: the default (or
// the original string) is substituted and a warning is logged.
func (p *Processor) Standardize(raw models.RawTrack) models.Track {
	var durationMS int64
	if raw.DurationMS != nil {
		durationMS = *raw.DurationMS
	}

	return models.Track{
		TrackName:   fallback(raw.Name, defaultTrackName),
		Artists:     joinArtists(raw.Artists),
		AlbumName:   fallback(raw.AlbumName, defaultAlbum),
		Duration:    p.trackDuration(raw),
		DurationMS:  durationMS,
		DateAdded:   p.formatDate(raw.AddedAt),
		ReleaseYear: releaseYear(raw),
		Popularity:  intOrZero(raw.Popularity),
		Explicit:    raw.Explicit != nil && *raw.Explicit,
		Streams:     fallback(raw.Streams, NA),
		TrackNumber: intOrZero(raw.TrackNumber),
		Features: models.AudioFeatures{
			Danceability:     FormatFeature(raw.Features.Danceability),
			Energy:           FormatFeature(raw.Features.Energy),
			Valence:          FormatFeature(raw.Features.Valence),
			Tempo:            FormatFeature(raw.Features.Tempo),
			Acousticness:     FormatFeature(raw.Features.Acousticness),
			Instrumentalness: FormatFeature(raw.Features.Instrumentalness),
			Liveness:         FormatFeature(raw.Features.Liveness),
			Speechiness:      FormatFeature(raw.Features.Speechiness),
			Loudness:         FormatFeature(raw.Features.Loudness),
			Key:              FormatFeature(raw.Features.Key),
			Mode:             FormatFeature(raw.Features.Mode),
			TimeSignature:    FormatFeature(raw.Features.TimeSignature),
		},
	}
}

// standardize wraps Standardize so a fault in one record cannot abort the batch.
func (p *Processor) standardize(raw models.RawTrack) (track models.Track, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("standardize: %v", r)
		}
	}()

	track = p.Standardize(raw)
	return track, nil
}

// formatDate normalizes a date-added string to YYYY-MM-DD.
//
// Strings containing "T" are treated as ISO-8601 timestamps (trailing "Z"
// accepted as UTC). Otherwise the layouts in dateLayouts are tried in order.
// Unparseable strings pass through unchanged; empty input yields "Unknown".
func (p *Processor) formatDate(s string) string {
	if s == "" {
		return defaultDate
	}

	if strings.Contains(s, "T") {
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.Format("2006-01-02")
			}
		}
	}

	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.Format("2006-01-02")
		}
	}

	p.logger.Warnf("error formatting date %q: no known layout", s)
	return s
}

func (p *Processor) trackDuration(raw models.RawTrack) string {
	if raw.DurationFormatted != "" {
		return raw.DurationFormatted
	}
	if raw.DurationMS != nil && *raw.DurationMS > 0 {
		return FormatDuration(*raw.DurationMS)
	}
	return defaultDuration
}

// FormatDuration converts a duration in milliseconds to mm:ss text.
func FormatDuration(ms int64) string {
	if ms <= 0 {
		return defaultDuration
	}

	seconds := ms / 1000
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FormatFeature renders an audio feature value: nil becomes "N/A", numbers are
// rounded to three decimal places and rendered without trailing zeros.
func FormatFeature(v *float64) string {
	if v == nil {
		return NA
	}

	rounded := math.Round(*v*1000) / 1000
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// ParseFeature is the inverse of FormatFeature for re-normalizing canonical
// records: the "N/A" sentinel (or any non-numeric text) maps back to nil.
func ParseFeature(s string) *float64 {
	if s == "" || s == NA {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func joinArtists(artists []string) string {
	if len(artists) == 0 {
		return defaultArtist
	}
	return strings.Join(artists, ", ")
}

func releaseYear(raw models.RawTrack) string {
	if raw.ReleaseYear != nil {
		return strconv.Itoa(*raw.ReleaseYear)
	}
	if len(raw.ReleaseDate) >= 4 {
		if year, err := strconv.Atoi(raw.ReleaseDate[:4]); err == nil {
			return strconv.Itoa(year)
		}
	}
	return defaultYear
}

func fallback(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func rawName(raw models.RawTrack) string {
	if raw.Name == "" {
		return defaultTrackName
	}
	return raw.Name
}
