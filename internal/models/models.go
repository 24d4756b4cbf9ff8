// package models defines the data model for the playlist extraction service
package models

import "time"

// RawTrack is a source-specific, partially populated track record produced by an
// acquisition source (Spotify API or web scraper fallback).
//
// Optional scalar fields are pointers; nil means the source did not provide the
// field. Consumers must never assume a field is present.
type RawTrack struct {
	ID                string      `json:"id,omitempty"`
	Name              string      `json:"name,omitempty"`
	Artists           []string    `json:"artists,omitempty"`
	AlbumName         string      `json:"album_name,omitempty"`
	DurationMS        *int64      `json:"duration_ms,omitempty"`
	DurationFormatted string      `json:"duration_formatted,omitempty"`
	AddedAt           string      `json:"added_at,omitempty"`
	ReleaseDate       string      `json:"release_date,omitempty"`
	ReleaseYear       *int        `json:"release_year,omitempty"`
	Popularity        *int        `json:"popularity,omitempty"`
	Explicit          *bool       `json:"explicit,omitempty"`
	Streams           string      `json:"streams,omitempty"`
	TrackNumber       *int        `json:"track_number,omitempty"`
	Features          RawFeatures `json:"features,omitempty"`
}

// RawFeatures holds the optional audio analysis scalars for a raw track.
//
// All twelve are modeled as float pointers; integral features (key, mode, time
// signature) arrive as whole-number floats and render without a fraction.
type RawFeatures struct {
	Danceability     *float64 `json:"danceability,omitempty"`
	Energy           *float64 `json:"energy,omitempty"`
	Valence          *float64 `json:"valence,omitempty"`
	Tempo            *float64 `json:"tempo,omitempty"`
	Acousticness     *float64 `json:"acousticness,omitempty"`
	Instrumentalness *float64 `json:"instrumentalness,omitempty"`
	Liveness         *float64 `json:"liveness,omitempty"`
	Speechiness      *float64 `json:"speechiness,omitempty"`
	Loudness         *float64 `json:"loudness,omitempty"`
	Key              *float64 `json:"key,omitempty"`
	Mode             *float64 `json:"mode,omitempty"`
	TimeSignature    *float64 `json:"time_signature,omitempty"`
}

// Track is the canonical, fully defaulted track record consumed by both
// exporters. Every field is always populated; once produced a Track is treated
// as an immutable snapshot and never mutated by downstream stages.
type Track struct {
	TrackName   string        `json:"track_name"`
	Artists     string        `json:"artists"` // comma-joined artist names
	AlbumName   string        `json:"album_name"`
	Duration    string        `json:"duration"` // mm:ss text
	DurationMS  int64         `json:"duration_ms"`
	DateAdded   string        `json:"date_added"` // YYYY-MM-DD or "Unknown"
	ReleaseYear string        `json:"release_year"`
	Popularity  int           `json:"popularity"`
	Explicit    bool          `json:"explicit"`
	Streams     string        `json:"streams"`
	TrackNumber int           `json:"track_number"`
	Features    AudioFeatures `json:"audio_features"`
}

// AudioFeatures holds the canonical audio feature values: a number rounded to
// three decimal places rendered as text, or "N/A" when the source had none.
type AudioFeatures struct {
	Danceability     string `json:"danceability"`
	Energy           string `json:"energy"`
	Valence          string `json:"valence"`
	Tempo            string `json:"tempo"`
	Acousticness     string `json:"acousticness"`
	Instrumentalness string `json:"instrumentalness"`
	Liveness         string `json:"liveness"`
	Speechiness      string `json:"speechiness"`
	Loudness         string `json:"loudness"`
	Key              string `json:"key"`
	Mode             string `json:"mode"`
	TimeSignature    string `json:"time_signature"`
}

// Playlist is the summary record describing a playlist as a whole. Constructed
// once per extraction and read-only thereafter.
type Playlist struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Followers     int       `json:"followers"`
	TotalTracks   int       `json:"total_tracks"`
	TotalDuration string    `json:"total_duration"`
	ExternalURL   string    `json:"external_url"`
	ExtractedAt   time.Time `json:"extracted_at"`
}

// Stats holds aggregate values derived from a canonical track sequence.
// Computed fresh per request; not stored on any record.
type Stats struct {
	PlaylistName          string  `json:"playlist_name"`
	TotalTracksExtracted  int     `json:"total_tracks_extracted"`
	TotalDuration         string  `json:"total_duration"`
	AvgPopularity         float64 `json:"avg_popularity"`
	ExplicitTracks        int     `json:"explicit_tracks"`
	TracksWithReleaseYear int     `json:"tracks_with_release_year"`
	TracksWithFeatures    int     `json:"tracks_with_audio_features"`
	UniqueArtists         int     `json:"unique_artists"`
}
