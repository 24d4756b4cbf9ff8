package formatter

import (
	"bytes"
	"errors"
	"testing"

	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/shared"
	"github.com/xuri/excelize/v2"
)

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	t.Cleanup(func() { f.Close() })

	return f
}

func TestExportToExcel(t *testing.T) {
	t.Run("Three Sheets In Order", func(t *testing.T) {
		data, err := ExportToExcel(testPlaylist(), testTracks())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		f := openWorkbook(t, data)

		sheets := f.GetSheetList()
		expected := []string{"Playlist Summary", "Track Details", "Audio Features"}
		if len(sheets) != len(expected) {
			t.Fatalf("expected %d sheets, got %v", len(expected), sheets)
		}
		for i, name := range expected {
			if sheets[i] != name {
				t.Errorf("expected sheet %d to be %q, got %q", i, name, sheets[i])
			}
		}
	})

	t.Run("Summary Sheet Contents", func(t *testing.T) {
		data, err := ExportToExcel(testPlaylist(), testTracks())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		f := openWorkbook(t, data)

		title, _ := f.GetCellValue("Playlist Summary", "A1")
		if title != "Spotify Playlist Summary" {
			t.Errorf("unexpected title %q", title)
		}

		name, _ := f.GetCellValue("Playlist Summary", "B3")
		if name != "Road Trip" {
			t.Errorf("expected playlist name in B3, got %q", name)
		}

		section, _ := f.GetCellValue("Playlist Summary", "A11")
		if section != "Statistics" {
			t.Errorf("expected Statistics section at A11, got %q", section)
		}

		avg, _ := f.GetCellValue("Playlist Summary", "B13")
		if avg != "65.0" {
			t.Errorf("expected average popularity '65.0' in B13, got %q", avg)
		}
	})

	t.Run("Track Details Rows", func(t *testing.T) {
		data, err := ExportToExcel(testPlaylist(), testTracks())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		f := openWorkbook(t, data)

		rows, err := f.GetRows("Track Details")
		if err != nil {
			t.Fatalf("failed to read rows: %v", err)
		}

		// header + one row per track
		if len(rows) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(rows))
		}
		if rows[0][0] != "Track #" || rows[0][4] != "Duration (mm:ss)" {
			t.Errorf("unexpected header row %v", rows[0])
		}
		if rows[1][1] != "Song One" || rows[1][4] != "3:20" {
			t.Errorf("unexpected first data row %v", rows[1])
		}
		if rows[2][8] != "Yes" {
			t.Errorf("expected explicit 'Yes' in second row, got %v", rows[2])
		}
	})

	t.Run("Features Sheet With Values", func(t *testing.T) {
		data, err := ExportToExcel(testPlaylist(), testTracks())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		f := openWorkbook(t, data)

		rows, err := f.GetRows("Audio Features")
		if err != nil {
			t.Fatalf("failed to read rows: %v", err)
		}

		if len(rows) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(rows))
		}
		if len(rows[0]) != 14 {
			t.Errorf("expected 14 header columns, got %d", len(rows[0]))
		}
		if rows[1][2] != "0.414" {
			t.Errorf("expected danceability 0.414, got %q", rows[1][2])
		}
		if rows[2][2] != "N/A" {
			t.Errorf("expected N/A sentinel for missing feature, got %q", rows[2][2])
		}
	})

	t.Run("Warning When No Features", func(t *testing.T) {
		tracks := testTracks()[1:2] // all features N/A

		data, err := ExportToExcel(testPlaylist(), tracks)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		f := openWorkbook(t, data)

		warning, _ := f.GetCellValue("Audio Features", "A1")
		if warning != "Audio Features Not Available" {
			t.Errorf("expected warning cell, got %q", warning)
		}

		note, _ := f.GetCellValue("Audio Features", "A3")
		if note == "" {
			t.Error("expected explanatory note in A3")
		}
	})

	t.Run("No Tracks", func(t *testing.T) {
		_, err := ExportToExcel(testPlaylist(), nil)
		if !errors.Is(err, shared.ErrNoTracks) {
			t.Errorf("expected ErrNoTracks, got %v", err)
		}
	})

	t.Run("Sparse Playlist Defaults", func(t *testing.T) {
		data, err := ExportToExcel(models.Playlist{}, testTracks())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		f := openWorkbook(t, data)

		name, _ := f.GetCellValue("Playlist Summary", "B3")
		if name != "Unknown" {
			t.Errorf("expected defaulted name, got %q", name)
		}

		description, _ := f.GetCellValue("Playlist Summary", "B4")
		if description != "No description" {
			t.Errorf("expected defaulted description, got %q", description)
		}
	})
}
