package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spx/internal/formatter"
	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/processor"
	"github.com/desertthunder/spx/internal/shared"
	"github.com/desertthunder/spx/internal/tasks"
)

// previewTrackLimit caps the tracks echoed back by /extract; exports always
// cover the full sequence.
const previewTrackLimit = 20

// API bundles the handlers for the extraction and export endpoints.
type API struct {
	engine *tasks.ExtractEngine
	proc   *processor.Processor
	logger *log.Logger
}

// NewAPI creates the handler set. A nil processor gets a default instance.
func NewAPI(engine *tasks.ExtractEngine, proc *processor.Processor, logger *log.Logger) *API {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if proc == nil {
		proc = processor.New(logger)
	}
	return &API{engine: engine, proc: proc, logger: logger}
}

// Register wires the API's routes into a router.
func (a *API) Register(r Router) {
	r.Handle(http.MethodPost, "/extract", http.HandlerFunc(a.Extract))
	r.Handle(http.MethodPost, "/export/csv", http.HandlerFunc(a.ExportCSV))
	r.Handle(http.MethodPost, "/export/xlsx", http.HandlerFunc(a.ExportExcel))
	r.Handle(http.MethodGet, "/health", http.HandlerFunc(a.Health))
}

type extractRequest struct {
	URL string `json:"url"`
}

type extractResponse struct {
	Success     bool            `json:"success"`
	Method      string          `json:"method"`
	Playlist    models.Playlist `json:"playlist"`
	Tracks      []models.Track  `json:"tracks"`
	TotalTracks int             `json:"total_tracks"`
	Stats       models.Stats    `json:"stats"`
}

// Extract handles POST /extract: acquires a playlist by URL, normalizes it,
// and returns the summary with a track preview.
func (a *API) Extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}

	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "please provide a Spotify playlist URL")
		return
	}

	result, err := a.engine.Extract(r.Context(), nil, req.URL)
	if err != nil {
		a.logger.Errorf("extraction failed: %v", err)
		writeError(w, extractStatus(err), fmt.Sprintf("extraction failed: %v", err))
		return
	}

	preview := result.Tracks
	if len(preview) > previewTrackLimit {
		preview = preview[:previewTrackLimit]
	}

	writeJSON(w, http.StatusOK, extractResponse{
		Success:     true,
		Method:      result.Method,
		Playlist:    result.Playlist,
		Tracks:      preview,
		TotalTracks: len(result.Tracks),
		Stats:       result.Stats,
	})
}

// exportRequest carries a previously extracted playlist back for rendering.
// Either canonical tracks or raw tracks may be supplied; raw tracks are
// normalized before rendering.
type exportRequest struct {
	Playlist  models.Playlist   `json:"playlist"`
	Tracks    []models.Track    `json:"tracks"`
	RawTracks []models.RawTrack `json:"raw_tracks"`
}

// ExportCSV handles POST /export/csv and streams the CSV artifact.
func (a *API) ExportCSV(w http.ResponseWriter, r *http.Request) {
	a.export(w, r, formatter.ExportToCSV, formatter.CSVContentType, formatter.CSVExtension)
}

// ExportExcel handles POST /export/xlsx and streams the workbook artifact.
func (a *API) ExportExcel(w http.ResponseWriter, r *http.Request) {
	a.export(w, r, formatter.ExportToExcel, formatter.ExcelContentType, formatter.ExcelExtension)
}

func (a *API) export(w http.ResponseWriter, r *http.Request, render func(models.Playlist, []models.Track) ([]byte, error), contentType, ext string) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}

	tracks := req.Tracks
	if len(tracks) == 0 && len(req.RawTracks) > 0 {
		tracks = a.proc.ProcessTracks(req.RawTracks)
	}

	if len(tracks) == 0 {
		writeError(w, http.StatusBadRequest, "no tracks data to export")
		return
	}

	data, err := render(req.Playlist, tracks)
	if err != nil {
		a.logger.Errorf("export failed: %v", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to export: %v", err))
		return
	}

	filename := formatter.ExportFilename(req.Playlist.Name, ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Health handles GET /health.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "playlist extractor is running",
	})
}

func extractStatus(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidArgument), errors.Is(err, shared.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrPlaylistNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
