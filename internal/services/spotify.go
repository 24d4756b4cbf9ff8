// Spotify Web API implementation of [Extractor]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/shared"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	playlistPageSize = 50
	featureBatchSize = 100
)

type spotifyFollowers struct {
	Total int `json:"total"`
}

type spotifyExternalURLs struct {
	Spotify string `json:"spotify"`
}

type spotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type spotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

type spotifyTrack struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Artists      []spotifyArtist     `json:"artists"`
	Album        spotifyAlbum        `json:"album"`
	DurationMS   int64               `json:"duration_ms"`
	Explicit     bool                `json:"explicit"`
	Popularity   int                 `json:"popularity"`
	TrackNumber  int                 `json:"track_number"`
	ExternalURLs spotifyExternalURLs `json:"external_urls"`
}

type spotifyPlaylistItem struct {
	AddedAt string        `json:"added_at"`
	Track   *spotifyTrack `json:"track"`
}

type spotifyTracksPage struct {
	Items []spotifyPlaylistItem `json:"items"`
	Total int                   `json:"total"`
	Next  *string               `json:"next"`
}

type spotifyPlaylist struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	Followers    spotifyFollowers    `json:"followers"`
	ExternalURLs spotifyExternalURLs `json:"external_urls"`
	Tracks       spotifyTracksPage   `json:"tracks"`
}

type spotifyAudioFeatures struct {
	ID               string  `json:"id"`
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Valence          float64 `json:"valence"`
	Tempo            float64 `json:"tempo"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
	Speechiness      float64 `json:"speechiness"`
	Loudness         float64 `json:"loudness"`
	Key              int     `json:"key"`
	Mode             int     `json:"mode"`
	TimeSignature    int     `json:"time_signature"`
}

// SpotifyService implements [Extractor] against the Spotify Web API using the
// OAuth2 client-credentials flow. Pagination and feature lookups are paced by
// a rate limiter to stay inside the API quota.
type SpotifyService struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewSpotifyService creates a Spotify extractor with the given API credentials.
//
// The client-credentials token is fetched lazily and refreshed by the
// underlying [clientcredentials.Config] client.
func NewSpotifyService(ctx context.Context, clientID, clientSecret string, logger *log.Logger) (*SpotifyService, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret must be set", shared.ErrMissingCredentials)
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyTokenURL,
	}

	return &SpotifyService{
		httpClient: conf.Client(ctx),
		baseURL:    spotifyBaseURL,
		limiter:    rate.NewLimiter(rate.Limit(10), 1),
		logger:     logger,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify API"
}

// doRequest performs a rate-limited GET against the Spotify API and decodes
// the JSON response into result.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, result any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter interrupted: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: status %d", shared.ErrPlaylistNotFound, resp.StatusCode)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", shared.ErrAuthFailed, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// ExtractPlaylist retrieves playlist metadata and every track, following
// pagination, then attaches audio features where available. Audio features are
// best-effort: a failed batch is logged and the tracks keep nil features.
func (s *SpotifyService) ExtractPlaylist(ctx context.Context, playlistID string) (*models.Playlist, []models.RawTrack, error) {
	var playlist spotifyPlaylist
	if err := s.doRequest(ctx, "/playlists/"+url.PathEscape(playlistID), &playlist); err != nil {
		return nil, nil, err
	}

	s.logger.Infof("extracted playlist metadata: %s", playlist.Name)

	items, err := s.playlistItems(ctx, playlistID)
	if err != nil {
		return nil, nil, err
	}

	features := s.audioFeatures(ctx, items)

	raws := make([]models.RawTrack, 0, len(items))
	for _, item := range items {
		raws = append(raws, mapRawTrack(item, features))
	}

	s.logger.Infof("extracted %d tracks from playlist", len(raws))

	summary := &models.Playlist{
		ID:          playlist.ID,
		Name:        playlist.Name,
		Description: playlist.Description,
		Followers:   playlist.Followers.Total,
		TotalTracks: playlist.Tracks.Total,
		ExternalURL: playlist.ExternalURLs.Spotify,
	}
	if summary.ExternalURL == "" {
		summary.ExternalURL = PlaylistURL(playlistID)
	}

	return summary, raws, nil
}

// playlistItems follows the tracks pagination, skipping null track entries
// (removed or unavailable tracks appear as null items).
func (s *SpotifyService) playlistItems(ctx context.Context, playlistID string) ([]spotifyPlaylistItem, error) {
	var items []spotifyPlaylistItem
	offset := 0

	for {
		endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", url.PathEscape(playlistID), playlistPageSize, offset)

		var page spotifyTracksPage
		if err := s.doRequest(ctx, endpoint, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.Track != nil && item.Track.ID != "" {
				items = append(items, item)
			}
		}

		if page.Next == nil {
			break
		}
		offset += playlistPageSize
	}

	return items, nil
}

// audioFeatures fetches audio features in batches and indexes them by track
// ID. Failures degrade to an empty map entry rather than aborting extraction.
func (s *SpotifyService) audioFeatures(ctx context.Context, items []spotifyPlaylistItem) map[string]spotifyAudioFeatures {
	features := make(map[string]spotifyAudioFeatures, len(items))

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.Track.ID)
	}

	for start := 0; start < len(ids); start += featureBatchSize {
		end := min(start+featureBatchSize, len(ids))
		endpoint := "/audio-features?ids=" + url.QueryEscape(strings.Join(ids[start:end], ","))

		var response struct {
			AudioFeatures []*spotifyAudioFeatures `json:"audio_features"`
		}
		if err := s.doRequest(ctx, endpoint, &response); err != nil {
			s.logger.Warnf("could not get audio features for batch %d-%d: %v", start, end, err)
			continue
		}

		for _, af := range response.AudioFeatures {
			if af != nil {
				features[af.ID] = *af
			}
		}
	}

	return features
}

func mapRawTrack(item spotifyPlaylistItem, features map[string]spotifyAudioFeatures) models.RawTrack {
	track := item.Track

	names := make([]string, 0, len(track.Artists))
	for _, artist := range track.Artists {
		names = append(names, artist.Name)
	}

	raw := models.RawTrack{
		ID:          track.ID,
		Name:        track.Name,
		Artists:     names,
		AlbumName:   track.Album.Name,
		DurationMS:  int64Ptr(track.DurationMS),
		AddedAt:     item.AddedAt,
		ReleaseDate: track.Album.ReleaseDate,
		Popularity:  intPtr(track.Popularity),
		Explicit:    boolPtr(track.Explicit),
		TrackNumber: intPtr(track.TrackNumber),
	}

	if af, ok := features[track.ID]; ok {
		raw.Features = models.RawFeatures{
			Danceability:     floatPtr(af.Danceability),
			Energy:           floatPtr(af.Energy),
			Valence:          floatPtr(af.Valence),
			Tempo:            floatPtr(af.Tempo),
			Acousticness:     floatPtr(af.Acousticness),
			Instrumentalness: floatPtr(af.Instrumentalness),
			Liveness:         floatPtr(af.Liveness),
			Speechiness:      floatPtr(af.Speechiness),
			Loudness:         floatPtr(af.Loudness),
			Key:              floatPtr(float64(af.Key)),
			Mode:             floatPtr(float64(af.Mode)),
			TimeSignature:    floatPtr(float64(af.TimeSignature)),
		}
	}

	return raw
}

func floatPtr(v float64) *float64 { return &v }
func int64Ptr(v int64) *int64     { return &v }
func intPtr(v int) *int           { return &v }
func boolPtr(v bool) *bool        { return &v }
