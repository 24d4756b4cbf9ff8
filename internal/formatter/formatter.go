// package formatter renders normalized playlist data into export artifacts (CSV, xlsx)
package formatter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/shared"
)

// Export artifact MIME types.
const (
	CSVContentType   = "text/csv"
	ExcelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Export artifact file extensions.
const (
	CSVExtension   = ".csv"
	ExcelExtension = ".xlsx"
)

// ExportFilename derives an artifact filename from the playlist name:
// whitespace becomes underscores, suffixed "_tracks" plus the extension.
func ExportFilename(playlistName, ext string) string {
	name := shared.SlugifyName(playlistName)
	if name == "" {
		name = "playlist"
	}
	return fmt.Sprintf("spotify_%s_tracks%s", name, ext)
}

// WriteCSVExport renders the CSV artifact and writes it into dir, returning
// the written file path.
func WriteCSVExport(playlist models.Playlist, tracks []models.Track, dir string) (string, error) {
	data, err := ExportToCSV(playlist, tracks)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, ExportFilename(playlist.Name, CSVExtension))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return path, nil
}

// WriteExcelExport renders the xlsx artifact and writes it into dir, returning
// the written file path.
func WriteExcelExport(playlist models.Playlist, tracks []models.Track, dir string) (string, error) {
	data, err := ExportToExcel(playlist, tracks)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, ExportFilename(playlist.Name, ExcelExtension))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write Excel file: %w", err)
	}

	return path, nil
}
