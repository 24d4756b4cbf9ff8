// Headless-browser implementation of [Extractor]
//
// Fallback used when API credentials are missing or the API request fails.
// Scrapes the public playlist page at open.spotify.com via chromedp.
package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/chromedp"
	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/shared"
)

// scrapedPlaylist mirrors the fields the page exposes for the playlist header.
type scrapedPlaylist struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Followers   string `json:"followers"`
}

// scrapedRow is one visible track row in the playlist grid.
type scrapedRow struct {
	Name     string `json:"name"`
	Artists  string `json:"artists"`
	Album    string `json:"album"`
	Duration string `json:"duration"`
}

// playlistMetaJS reads the playlist title, description, and saves count from
// the entity header. Selectors track Spotify's data-testid attributes.
const playlistMetaJS = `(() => {
	const text = (sel) => {
		const el = document.querySelector(sel);
		return el ? el.textContent.trim() : "";
	};
	const header = document.querySelector("h1[data-testid='entityTitle']") || document.querySelector("h1");
	let followers = "";
	for (const el of document.querySelectorAll("span")) {
		if (/\d[\d,.]*\s*saves?/i.test(el.textContent)) {
			followers = el.textContent.trim();
			break;
		}
	}
	return {
		name: header ? header.textContent.trim() : "",
		description: text("span[data-testid='playlist-description']"),
		followers: followers,
	};
})()`

// acceptCookiesJS clicks the consent banner when present.
const acceptCookiesJS = `(() => {
	for (const btn of document.querySelectorAll("button")) {
		if (/accept|agree/i.test(btn.textContent)) { btn.click(); return true; }
	}
	return false;
})()`

// scrollTracklistJS scrolls the virtualized track list so more rows render.
const scrollTracklistJS = `(() => {
	const grid = document.querySelector("div[data-testid='playlist-tracklist']") || document.scrollingElement;
	grid.scrollTop = grid.scrollHeight;
	window.scrollTo(0, document.body.scrollHeight);
	return true;
})()`

// trackRowsJS collects the rendered track rows from the playlist grid.
const trackRowsJS = `(() => {
	const rows = [];
	for (const row of document.querySelectorAll("div[data-testid='tracklist-row']")) {
		const cell = (sel) => {
			const el = row.querySelector(sel);
			return el ? el.textContent.trim() : "";
		};
		const links = row.querySelectorAll("a");
		rows.push({
			name: cell("div[data-testid='internal-track-link']") || cell("a div"),
			artists: Array.from(row.querySelectorAll("span a")).map(a => a.textContent.trim()).join(", "),
			album: links.length > 1 ? links[links.length - 1].textContent.trim() : "",
			duration: (row.textContent.match(/\b(\d+:\d{2})\s*$/) || ["",""])[1],
		});
	}
	return rows;
})()`

var followersDigits = regexp.MustCompile(`[\d,]+`)

// ScraperService implements [Extractor] by driving a headless browser.
//
// Each call constructs and tears down its own browser context; nothing is
// shared between calls, and every exit path releases the browser.
type ScraperService struct {
	timeout   time.Duration
	userAgent string
	logger    *log.Logger
}

// NewScraperService creates a scraper with the given settings.
func NewScraperService(cfg shared.ScraperConfig, logger *log.Logger) *ScraperService {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	return &ScraperService{
		timeout:   timeout,
		userAgent: cfg.UserAgent,
		logger:    logger,
	}
}

func (s *ScraperService) Name() string {
	return "Web Scraper"
}

// ExtractPlaylist scrapes the public playlist page. Only the fields visible in
// the web UI are available: no duration_ms, popularity, or audio features.
func (s *ScraperService) ExtractPlaylist(ctx context.Context, playlistID string) (*models.Playlist, []models.RawTrack, error) {
	pageURL := PlaylistURL(playlistID)
	s.logger.Infof("navigating to playlist URL: %s", pageURL)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.WindowSize(1920, 1080),
	)
	if s.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(s.userAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, s.timeout)
	defer cancelRun()

	var meta scrapedPlaylist
	var rows []scrapedRow

	err := chromedp.Run(runCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible("h1", chromedp.ByQuery),
		chromedp.Evaluate(acceptCookiesJS, nil),
		chromedp.Sleep(2*time.Second),
		chromedp.Evaluate(playlistMetaJS, &meta),
		chromedp.Evaluate(scrollTracklistJS, nil),
		chromedp.Sleep(3*time.Second),
		chromedp.Evaluate(trackRowsJS, &rows),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", shared.ErrScrapeFailed, err)
	}

	if meta.Name == "" && len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: page rendered no playlist content", shared.ErrScrapeFailed)
	}

	raws := make([]models.RawTrack, 0, len(rows))
	for i, row := range rows {
		if row.Name == "" {
			continue
		}
		num := i + 1
		raws = append(raws, models.RawTrack{
			Name:              row.Name,
			Artists:           splitArtists(row.Artists),
			AlbumName:         row.Album,
			DurationFormatted: row.Duration,
			TrackNumber:       &num,
		})
	}

	s.logger.Infof("successfully scraped playlist: %s (%d tracks)", meta.Name, len(raws))

	summary := &models.Playlist{
		ID:          playlistID,
		Name:        fallbackName(meta.Name),
		Description: meta.Description,
		Followers:   parseFollowers(meta.Followers),
		TotalTracks: len(raws),
		ExternalURL: pageURL,
	}

	return summary, raws, nil
}

func splitArtists(joined string) []string {
	if joined == "" {
		return nil
	}

	parts := strings.Split(joined, ", ")
	artists := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			artists = append(artists, p)
		}
	}
	return artists
}

// parseFollowers pulls the numeric saves count out of text like "1,234 saves".
func parseFollowers(text string) int {
	match := followersDigits.FindString(text)
	if match == "" {
		return 0
	}

	count, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return 0
	}
	return count
}

func fallbackName(name string) string {
	if name == "" {
		return "Unknown Playlist"
	}
	return name
}
