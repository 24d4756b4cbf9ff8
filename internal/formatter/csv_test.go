package formatter

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/processor"
	"github.com/desertthunder/spx/internal/shared"
	tu "github.com/desertthunder/spx/internal/testing"
)

func testPlaylist() models.Playlist {
	return models.Playlist{
		ID:            "37i9dQZF1DXcBWIGoYBM5M",
		Name:          "Road Trip",
		Description:   "Songs for the open road",
		Followers:     1200,
		TotalTracks:   2,
		TotalDuration: "5m 0s",
		ExternalURL:   "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M",
		ExtractedAt:   time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC),
	}
}

func testTracks() []models.Track {
	return []models.Track{
		{
			TrackName:   "Song One",
			Artists:     "Artist A",
			AlbumName:   "Album One",
			Duration:    "3:20",
			DurationMS:  200000,
			DateAdded:   "2024-01-10",
			ReleaseYear: "1975",
			Popularity:  80,
			Explicit:    false,
			Streams:     "N/A",
			TrackNumber: 1,
			Features: models.AudioFeatures{
				Danceability: "0.414", Energy: "0.398", Valence: "0.228", Tempo: "143.883",
				Acousticness: "0.271", Instrumentalness: "0", Liveness: "0.243", Speechiness: "0.0536",
				Loudness: "-9.961", Key: "0", Mode: "0", TimeSignature: "4",
			},
		},
		{
			TrackName:   "Song Two",
			Artists:     "Artist B",
			AlbumName:   "Album Two",
			Duration:    "1:40",
			DurationMS:  100000,
			DateAdded:   "2024-01-11",
			ReleaseYear: "2001",
			Popularity:  50,
			Explicit:    true,
			Streams:     "N/A",
			TrackNumber: 2,
			Features: models.AudioFeatures{
				Danceability: "N/A", Energy: "N/A", Valence: "N/A", Tempo: "N/A",
				Acousticness: "N/A", Instrumentalness: "N/A", Liveness: "N/A", Speechiness: "N/A",
				Loudness: "N/A", Key: "N/A", Mode: "N/A", TimeSignature: "N/A",
			},
		},
	}
}

func TestExportToCSV(t *testing.T) {
	t.Run("Document Structure", func(t *testing.T) {
		data, err := ExportToCSV(testPlaylist(), testTracks())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")

		// label + 7 metadata rows + blank + label + header + 2 tracks
		if len(lines) != 13 {
			t.Fatalf("expected 13 lines, got %d:\n%s", len(lines), string(data))
		}
		if lines[0] != "PLAYLIST METADATA" {
			t.Errorf("unexpected first line %q", lines[0])
		}
		if lines[8] != "" {
			t.Errorf("expected blank separator line, got %q", lines[8])
		}
		if lines[9] != "TRACKS DATA" {
			t.Errorf("unexpected tracks label %q", lines[9])
		}
	})

	t.Run("Metadata Rows", func(t *testing.T) {
		data, err := ExportToCSV(testPlaylist(), testTracks())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		content := string(data)
		for _, expected := range []string{
			"Name,Road Trip",
			`Description,"Songs for the open road"`,
			"Total Saves/Followers,1200",
			"Number of Songs,2",
			"Total Duration,5m 0s",
			"URL,https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M",
			"Extracted on,2024-03-15 12:30:00",
		} {
			if !strings.Contains(content, expected+"\n") {
				t.Errorf("expected metadata row %q in document", expected)
			}
		}
	})

	t.Run("Tracks Block", func(t *testing.T) {
		data, err := ExportToCSV(testPlaylist(), testTracks())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")

		header := lines[10]
		if got := len(strings.Split(header, ",")); got != 22 {
			t.Errorf("expected 22 header columns, got %d", got)
		}
		if !strings.HasPrefix(header, "Track Number,Track Name,Artist(s),Album Name,Duration (mm:ss)") {
			t.Errorf("unexpected header prefix %q", header)
		}

		if !strings.HasPrefix(lines[11], "1,Song One,Artist A,Album One,3:20,2024-01-10,1975,80,No,N/A") {
			t.Errorf("unexpected first track row %q", lines[11])
		}
		if !strings.HasPrefix(lines[12], "2,Song Two,Artist B,Album Two,1:40,2024-01-11,2001,50,Yes,N/A") {
			t.Errorf("unexpected second track row %q", lines[12])
		}
	})

	t.Run("Track Number Is Export Position", func(t *testing.T) {
		tracks := testTracks()
		tracks[0].TrackNumber = 9

		data, err := ExportToCSV(testPlaylist(), tracks)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		if !strings.HasPrefix(lines[11], "1,") {
			t.Errorf("expected 1-based export position, got row %q", lines[11])
		}
	})

	t.Run("Name With Comma Is Quoted", func(t *testing.T) {
		playlist := testPlaylist()
		playlist.Name = "Chill, But Loud"

		data, err := ExportToCSV(playlist, testTracks())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(string(data), `Name,"Chill, But Loud"`) {
			t.Error("expected quoted playlist name")
		}
	})

	t.Run("Empty Description Still Quoted", func(t *testing.T) {
		playlist := testPlaylist()
		playlist.Description = ""

		data, err := ExportToCSV(playlist, testTracks())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(string(data), `Description,""`+"\n") {
			t.Error("expected empty description to be quoted")
		}
	})

	t.Run("Defaults For Sparse Playlist", func(t *testing.T) {
		data, err := ExportToCSV(models.Playlist{}, testTracks())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		content := string(data)
		if !strings.Contains(content, "Name,Unknown Playlist\n") {
			t.Error("expected defaulted playlist name")
		}
		if !strings.Contains(content, "Number of Songs,2\n") {
			t.Error("expected track count fallback")
		}
		if !strings.Contains(content, "Total Duration,Unknown\n") {
			t.Error("expected duration fallback")
		}
	})

	t.Run("No Tracks", func(t *testing.T) {
		_, err := ExportToCSV(testPlaylist(), nil)
		if !errors.Is(err, shared.ErrNoTracks) {
			t.Errorf("expected ErrNoTracks, got %v", err)
		}
	})
}

// Covers the whole pipeline from raw records to the CSV artifact.
func TestRawToCSVPipeline(t *testing.T) {
	proc := processor.New(nil)

	raws := []models.RawTrack{
		{
			Name:       "Song One",
			Artists:    []string{"Artist A"},
			AlbumName:  "Album One",
			DurationMS: tu.I64(200000),
			AddedAt:    "2024-01-10T08:00:00Z",
			Popularity: tu.I(80),
		},
		{
			Name:       "Song Two",
			Artists:    []string{"Artist B"},
			AlbumName:  "Album Two",
			DurationMS: tu.I64(100000),
			AddedAt:    "2024-01-11T08:00:00Z",
			Popularity: tu.I(50),
		},
	}

	tracks := proc.ProcessTracks(raws)
	if len(tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(tracks))
	}

	playlist := models.Playlist{Name: "Road Trip", TotalTracks: 2}
	playlist.TotalDuration = processor.TotalDuration(tracks)

	stats := processor.Summarize(playlist, tracks)
	if stats.TotalDuration != "5m 0s" {
		t.Errorf("expected total duration '5m 0s', got %q", stats.TotalDuration)
	}
	if stats.AvgPopularity != 65 {
		t.Errorf("expected average popularity 65, got %f", stats.AvgPopularity)
	}

	data, err := ExportToCSV(playlist, tracks)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	content := string(data)
	if !strings.Contains(content, "1,Song One,Artist A,Album One,3:20,2024-01-10") {
		t.Error("expected derived mm:ss duration for first track")
	}
	if !strings.Contains(content, "2,Song Two,Artist B,Album Two,1:40,2024-01-11") {
		t.Error("expected derived mm:ss duration for second track")
	}
	if !strings.Contains(content, "Total Duration,5m 0s\n") {
		t.Error("expected aggregated total duration in metadata")
	}
}

func TestExportFilename(t *testing.T) {
	cases := []struct {
		name     string
		playlist string
		ext      string
		expected string
	}{
		{"Spaces Become Underscores", "My Awesome Playlist", ".csv", "spotify_My_Awesome_Playlist_tracks.csv"},
		{"Single Word", "Focus", ".xlsx", "spotify_Focus_tracks.xlsx"},
		{"Empty Name", "", ".csv", "spotify_playlist_tracks.csv"},
		{"Collapses Runs Of Whitespace", "Late  Night   Drive", ".csv", "spotify_Late_Night_Drive_tracks.csv"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExportFilename(tc.playlist, tc.ext); got != tc.expected {
				t.Errorf("ExportFilename(%q) = %q, expected %q", tc.playlist, got, tc.expected)
			}
		})
	}
}

func TestWriteCSVExport(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteCSVExport(testPlaylist(), testTracks(), dir)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !strings.HasSuffix(path, "spotify_Road_Trip_tracks.csv") {
		t.Errorf("unexpected path %q", path)
	}
}
