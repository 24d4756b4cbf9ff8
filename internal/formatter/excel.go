package formatter

import (
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/processor"
	"github.com/desertthunder/spx/internal/shared"
	"github.com/xuri/excelize/v2"
)

// Workbook sheet names, in order.
const (
	summarySheet  = "Playlist Summary"
	tracksSheet   = "Track Details"
	featuresSheet = "Audio Features"
)

const (
	brandColor  = "1DB954" // Spotify green
	stripeColor = "F8F9FA"
	warnColor   = "FF0000"

	colPadding  = 2
	maxColWidth = 50
)

var trackSheetHeaders = []string{
	"Track #", "Track Name", "Artist(s)", "Album Name", "Duration (mm:ss)",
	"Date Added", "Release Year", "Popularity", "Explicit", "Streams",
}

var featureSheetHeaders = []string{
	"Track #", "Track Name", "Danceability", "Energy", "Valence", "Tempo",
	"Acousticness", "Instrumentalness", "Liveness", "Speechiness",
	"Loudness", "Key", "Mode", "Time Signature",
}

// ExportToExcel renders a playlist and its canonical tracks as an xlsx
// workbook with exactly three sheets: Playlist Summary, Track Details, and
// Audio Features. The workbook's default sheet is reused for the summary so no
// empty sheet remains.
//
// Returns shared.ErrNoTracks for an empty sequence; any assembly fault yields
// a single wrapped error and no partial document.
func ExportToExcel(playlist models.Playlist, tracks []models.Track) ([]byte, error) {
	if len(tracks) == 0 {
		return nil, shared.ErrNoTracks
	}

	f := excelize.NewFile()
	defer f.Close()

	styles, err := newSheetStyles(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel file: %w", err)
	}

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel file: %w", err)
	}
	if err := writeSummarySheet(f, styles, playlist, tracks); err != nil {
		return nil, fmt.Errorf("failed to create Excel file: %w", err)
	}

	if _, err := f.NewSheet(tracksSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel file: %w", err)
	}
	if err := writeTracksSheet(f, styles, tracks); err != nil {
		return nil, fmt.Errorf("failed to create Excel file: %w", err)
	}

	if _, err := f.NewSheet(featuresSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel file: %w", err)
	}
	if err := writeFeaturesSheet(f, styles, tracks); err != nil {
		return nil, fmt.Errorf("failed to create Excel file: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel file: %w", err)
	}

	return buf.Bytes(), nil
}

// sheetStyles holds the style IDs shared across all three sheets.
type sheetStyles struct {
	title   int
	section int
	bold    int
	header  int
	cell    int
	stripe  int
	warn    int
}

func newSheetStyles(f *excelize.File) (*sheetStyles, error) {
	thin := []excelize.Border{
		{Type: "left", Style: 1, Color: "000000"},
		{Type: "right", Style: 1, Color: "000000"},
		{Type: "top", Style: 1, Color: "000000"},
		{Type: "bottom", Style: 1, Color: "000000"},
	}

	var s sheetStyles
	var err error

	if s.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 18, Color: brandColor},
	}); err != nil {
		return nil, err
	}

	if s.section, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14, Color: brandColor},
	}); err != nil {
		return nil, err
	}

	if s.bold, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	}); err != nil {
		return nil, err
	}

	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{brandColor}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thin,
	}); err != nil {
		return nil, err
	}

	if s.cell, err = f.NewStyle(&excelize.Style{Border: thin}); err != nil {
		return nil, err
	}

	if s.stripe, err = f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{stripeColor}},
		Border: thin,
	}); err != nil {
		return nil, err
	}

	if s.warn, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14, Color: warnColor},
	}); err != nil {
		return nil, err
	}

	return &s, nil
}

// writeSummarySheet lays out the title cell, the seven metadata rows, and the
// statistics section. No borders are applied on this sheet.
func writeSummarySheet(f *excelize.File, styles *sheetStyles, playlist models.Playlist, tracks []models.Track) error {
	widths := colWidths{}

	if err := setCell(f, summarySheet, 1, 1, "Spotify Playlist Summary", styles.title, widths); err != nil {
		return err
	}
	if err := f.MergeCell(summarySheet, "A1", "D1"); err != nil {
		return err
	}

	name := playlist.Name
	if name == "" {
		name = "Unknown"
	}
	description := playlist.Description
	if description == "" {
		description = "No description"
	}
	extracted := playlist.ExtractedAt
	if extracted.IsZero() {
		extracted = time.Now()
	}

	metadata := []struct {
		label string
		value any
	}{
		{"Playlist Name", name},
		{"Description", description},
		{"Total Saves/Followers", playlist.Followers},
		{"Number of Songs", playlist.TotalTracks},
		{"Total Duration", playlist.TotalDuration},
		{"Spotify URL", playlist.ExternalURL},
		{"Extracted on", extracted.Format("2006-01-02 15:04:05")},
	}

	row := 3
	for _, m := range metadata {
		if err := setCell(f, summarySheet, 1, row, m.label, styles.bold, widths); err != nil {
			return err
		}
		if err := setCell(f, summarySheet, 2, row, m.value, 0, widths); err != nil {
			return err
		}
		row++
	}

	if err := setCell(f, summarySheet, 1, row+1, "Statistics", styles.section, widths); err != nil {
		return err
	}
	row += 2

	stats := processor.Summarize(playlist, tracks)
	for _, s := range []struct {
		label string
		value any
	}{
		{"Total Tracks Extracted", stats.TotalTracksExtracted},
		{"Average Popularity", fmt.Sprintf("%.1f", stats.AvgPopularity)},
		{"Explicit Tracks", stats.ExplicitTracks},
		{"Tracks with Audio Features", stats.TracksWithFeatures},
		{"Unique Artists", stats.UniqueArtists},
	} {
		if err := setCell(f, summarySheet, 1, row, s.label, styles.bold, widths); err != nil {
			return err
		}
		if err := setCell(f, summarySheet, 2, row, s.value, 0, widths); err != nil {
			return err
		}
		row++
	}

	return widths.apply(f, summarySheet)
}

// writeTracksSheet lays out the 10-column track detail grid with a frozen,
// styled header row, thin borders, and alternate-row shading.
func writeTracksSheet(f *excelize.File, styles *sheetStyles, tracks []models.Track) error {
	widths := colWidths{}

	if err := writeHeaderRow(f, tracksSheet, trackSheetHeaders, styles.header, widths); err != nil {
		return err
	}

	for i, track := range tracks {
		row := i + 2
		values := []any{
			i + 1,
			track.TrackName,
			track.Artists,
			track.AlbumName,
			track.Duration,
			track.DateAdded,
			track.ReleaseYear,
			track.Popularity,
			yesNo(track.Explicit),
			track.Streams,
		}
		if err := writeDataRow(f, tracksSheet, row, values, dataStyle(styles, row), widths); err != nil {
			return err
		}
	}

	if err := freezeHeader(f, tracksSheet); err != nil {
		return err
	}
	return widths.apply(f, tracksSheet)
}

// writeFeaturesSheet lays out the 14-column audio feature grid, or a warning
// note when no track carries a real feature value.
func writeFeaturesSheet(f *excelize.File, styles *sheetStyles, tracks []models.Track) error {
	hasFeatures := false
	for _, track := range tracks {
		if track.Features.Danceability != processor.NA {
			hasFeatures = true
			break
		}
	}

	if !hasFeatures {
		widths := colWidths{}
		if err := setCell(f, featuresSheet, 1, 1, "Audio Features Not Available", styles.warn, widths); err != nil {
			return err
		}
		note := "Audio features require extended API permissions or may not be available for all tracks."
		return setCell(f, featuresSheet, 1, 3, note, 0, widths)
	}

	widths := colWidths{}

	if err := writeHeaderRow(f, featuresSheet, featureSheetHeaders, styles.header, widths); err != nil {
		return err
	}

	for i, track := range tracks {
		row := i + 2
		values := []any{
			i + 1,
			track.TrackName,
			featureCellValue(track.Features.Danceability),
			featureCellValue(track.Features.Energy),
			featureCellValue(track.Features.Valence),
			featureCellValue(track.Features.Tempo),
			featureCellValue(track.Features.Acousticness),
			featureCellValue(track.Features.Instrumentalness),
			featureCellValue(track.Features.Liveness),
			featureCellValue(track.Features.Speechiness),
			featureCellValue(track.Features.Loudness),
			featureCellValue(track.Features.Key),
			featureCellValue(track.Features.Mode),
			featureCellValue(track.Features.TimeSignature),
		}
		if err := writeDataRow(f, featuresSheet, row, values, dataStyle(styles, row), widths); err != nil {
			return err
		}
	}

	if err := freezeHeader(f, featuresSheet); err != nil {
		return err
	}
	return widths.apply(f, featuresSheet)
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string, style int, widths colWidths) error {
	for col, header := range headers {
		if err := setCell(f, sheet, col+1, 1, header, style, widths); err != nil {
			return err
		}
	}
	return nil
}

func writeDataRow(f *excelize.File, sheet string, row int, values []any, style int, widths colWidths) error {
	for col, value := range values {
		if err := setCell(f, sheet, col+1, row, value, style, widths); err != nil {
			return err
		}
	}
	return nil
}

// dataStyle shades every second data row for readability.
func dataStyle(styles *sheetStyles, row int) int {
	if row%2 == 1 {
		return styles.stripe
	}
	return styles.cell
}

func freezeHeader(f *excelize.File, sheet string) error {
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func setCell(f *excelize.File, sheet string, col, row int, value any, style int, widths colWidths) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return err
	}
	if style != 0 {
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}
	widths.note(col, value)
	return nil
}

// featureCellValue writes numeric feature values as numbers so spreadsheet
// consumers can aggregate them; the "N/A" sentinel stays text.
func featureCellValue(s string) any {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return s
}

// colWidths tracks the longest rendered value per column, in characters.
type colWidths map[int]float64

func (w colWidths) note(col int, value any) {
	if l := float64(len(fmt.Sprint(value))); l > w[col] {
		w[col] = l
	}
}

// apply sizes each column to its longest value plus padding, capped at the
// maximum width.
func (w colWidths) apply(f *excelize.File, sheet string) error {
	for col, width := range w {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, min(width+colPadding, maxColWidth)); err != nil {
			return err
		}
	}
	return nil
}
