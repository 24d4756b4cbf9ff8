// package services defines interface Extractor for playlist acquisition sources
//
// Spotify Web API, headless-browser scraper (fallback)
package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/shared"
)

// Extractor defines the interface for playlist acquisition sources. A source
// produces a playlist summary record and a sequence of raw track records, or
// fails; it never normalizes or exports.
type Extractor interface {
	// ExtractPlaylist retrieves playlist metadata and all raw track records.
	ExtractPlaylist(ctx context.Context, playlistID string) (*models.Playlist, []models.RawTrack, error)

	// Name returns the name of the source (e.g., "Spotify API", "Web Scraper")
	Name() string
}

var bareIDPattern = regexp.MustCompile(`^[0-9A-Za-z]{22}$`)

// ParsePlaylistID extracts the playlist ID from a Spotify share URL. A bare
// 22-character base62 ID is accepted as-is.
func ParsePlaylistID(input string) (string, error) {
	input = strings.TrimSpace(input)

	if idx := strings.Index(input, "playlist/"); idx >= 0 {
		id := input[idx+len("playlist/"):]
		if cut := strings.IndexAny(id, "?#/"); cut >= 0 {
			id = id[:cut]
		}
		if id == "" {
			return "", fmt.Errorf("%w: empty playlist ID in URL", shared.ErrInvalidArgument)
		}
		return id, nil
	}

	if bareIDPattern.MatchString(input) {
		return input, nil
	}

	return "", fmt.Errorf("%w: invalid Spotify playlist URL", shared.ErrInvalidArgument)
}

// PlaylistURL returns the public web URL for a playlist ID.
func PlaylistURL(playlistID string) string {
	return "https://open.spotify.com/playlist/" + playlistID
}
