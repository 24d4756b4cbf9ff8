package processor

import (
	"testing"

	"github.com/desertthunder/spx/internal/models"
	tu "github.com/desertthunder/spx/internal/testing"
)

func TestFormatTotalDuration(t *testing.T) {
	cases := []struct {
		name     string
		ms       int64
		expected string
	}{
		{"Zero", 0, "0s"},
		{"Seconds Only", 45000, "45s"},
		{"Minutes And Seconds", 65000, "1m 5s"},
		{"Exact Five Minutes", 300000, "5m 0s"},
		{"Hours Minutes Seconds", 3665000, "1h 1m 5s"},
		{"Hours With Zero Minutes", 3605000, "1h 0m 5s"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatTotalDuration(tc.ms); got != tc.expected {
				t.Errorf("FormatTotalDuration(%d) = %q, expected %q", tc.ms, got, tc.expected)
			}
		})
	}
}

func TestTotalDuration(t *testing.T) {
	t.Run("Sums Track Milliseconds", func(t *testing.T) {
		tracks := []models.Track{
			{DurationMS: 200000},
			{DurationMS: 100000},
		}

		if got := TotalDuration(tracks); got != "5m 0s" {
			t.Errorf("expected '5m 0s', got %q", got)
		}
	})

	t.Run("Empty Sequence", func(t *testing.T) {
		if got := TotalDuration(nil); got != "0s" {
			t.Errorf("expected '0s', got %q", got)
		}
	})

	t.Run("Raw Records Skip Absent Durations", func(t *testing.T) {
		raws := []models.RawTrack{
			{DurationMS: tu.I64(65000)},
			{},
		}

		if got := RawTotalDuration(raws); got != "1m 5s" {
			t.Errorf("expected '1m 5s', got %q", got)
		}
	})
}

func TestSummarize(t *testing.T) {
	t.Run("Computes Statistics", func(t *testing.T) {
		playlist := models.Playlist{Name: "Road Trip"}
		tracks := []models.Track{
			{
				Artists:     "Queen",
				DurationMS:  200000,
				Popularity:  80,
				Explicit:    false,
				ReleaseYear: "1975",
				Features:    models.AudioFeatures{Danceability: "0.414"},
			},
			{
				Artists:     "Queen",
				DurationMS:  100000,
				Popularity:  50,
				Explicit:    true,
				ReleaseYear: "Unknown",
				Features:    models.AudioFeatures{Danceability: NA},
			},
			{
				Artists:     "Daft Punk",
				DurationMS:  0,
				Popularity:  65,
				ReleaseYear: "2001",
				Features:    models.AudioFeatures{Danceability: "0.794"},
			},
		}

		stats := Summarize(playlist, tracks)

		if stats.PlaylistName != "Road Trip" {
			t.Errorf("unexpected playlist name %q", stats.PlaylistName)
		}
		if stats.TotalTracksExtracted != 3 {
			t.Errorf("expected 3 tracks, got %d", stats.TotalTracksExtracted)
		}
		if stats.TotalDuration != "5m 0s" {
			t.Errorf("expected total duration '5m 0s', got %q", stats.TotalDuration)
		}
		if stats.AvgPopularity != 65 {
			t.Errorf("expected average popularity 65, got %f", stats.AvgPopularity)
		}
		if stats.ExplicitTracks != 1 {
			t.Errorf("expected 1 explicit track, got %d", stats.ExplicitTracks)
		}
		if stats.TracksWithReleaseYear != 2 {
			t.Errorf("expected 2 tracks with release year, got %d", stats.TracksWithReleaseYear)
		}
		if stats.TracksWithFeatures != 2 {
			t.Errorf("expected 2 tracks with features, got %d", stats.TracksWithFeatures)
		}
		if stats.UniqueArtists != 2 {
			t.Errorf("expected 2 unique artists, got %d", stats.UniqueArtists)
		}
	})

	t.Run("Empty Track Sequence", func(t *testing.T) {
		stats := Summarize(models.Playlist{}, nil)

		if stats.AvgPopularity != 0 {
			t.Errorf("expected 0 average popularity, got %f", stats.AvgPopularity)
		}
		if stats.TotalDuration != "0s" {
			t.Errorf("expected '0s', got %q", stats.TotalDuration)
		}
		if stats.PlaylistName != "Unknown" {
			t.Errorf("expected defaulted playlist name, got %q", stats.PlaylistName)
		}
	})
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name     string
		raw      models.RawTrack
		expected bool
	}{
		{"Complete", models.RawTrack{Name: "Song", Artists: []string{"A"}, AlbumName: "Album"}, true},
		{"Missing Name", models.RawTrack{Artists: []string{"A"}, AlbumName: "Album"}, false},
		{"Missing Artists", models.RawTrack{Name: "Song", AlbumName: "Album"}, false},
		{"Missing Album", models.RawTrack{Name: "Song", Artists: []string{"A"}}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Validate(tc.raw); got != tc.expected {
				t.Errorf("Validate = %v, expected %v", got, tc.expected)
			}
		})
	}
}
