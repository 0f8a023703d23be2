// Letterboxd watchlist scraper implementing [WatchlistSource]
//
// The watchlist is only available as rendered HTML. The scraper depends
// on two stable class-marked elements per entry: the div.film-poster
// container and its img.image child, whose alt attribute carries the
// film's display title.
package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/gabrielcarfora/emby-letterboxd-sync/internal/shared"
	"golang.org/x/time/rate"
)

const defaultLetterboxdBaseURL = "https://letterboxd.com"

// LetterboxdClient scrapes watchlists from letterboxd.com with polite
// request pacing.
type LetterboxdClient struct {
	baseURL    string
	pageSize   int
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewLetterboxdClient creates a watchlist scraper from configuration.
// A nil httpClient falls back to [http.DefaultClient]; a nil logger logs
// to stderr.
func NewLetterboxdClient(cfg shared.LetterboxdConfig, httpClient *http.Client, logger *log.Logger) *LetterboxdClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultLetterboxdBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 28
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 2.0
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &LetterboxdClient{
		baseURL:    cfg.BaseURL,
		pageSize:   cfg.PageSize,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:     logger,
	}
}

// Watchlist fetches the user's watchlist in scrape order, paginating from
// page 1 until a page comes back empty or shorter than the page size.
//
// Any request-level failure stops the fetch and returns what was
// accumulated so far; this method never returns an error. Duplicate
// titles within the watchlist are preserved as-is.
func (c *LetterboxdClient) Watchlist(ctx context.Context, username string) []string {
	var titles []string

	for page := 1; ; page++ {
		pageTitles, posters, err := c.fetchPage(ctx, username, page)
		if err != nil {
			c.logger.Warn("watchlist page fetch failed, returning partial list",
				"username", username, "page", page, "error", err)
			return titles
		}

		if posters == 0 {
			break
		}

		titles = append(titles, pageTitles...)

		// A short page is the last page. Termination counts poster
		// containers, not extracted titles, so entries dropped for a
		// missing alt attribute cannot end pagination early.
		if posters < c.pageSize {
			break
		}
	}

	return titles
}

// fetchPage requests one watchlist page and extracts its poster titles.
// Returns the titles, the number of poster containers seen, and any
// request-level error.
func (c *LetterboxdClient) fetchPage(ctx context.Context, username string, page int) ([]string, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	pageURL := fmt.Sprintf("%s/%s/watchlist/page/%d/", c.baseURL, username, page)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, 0, fmt.Errorf("letterboxd returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse page: %w", err)
	}

	var titles []string
	posters := 0

	doc.Find("div.film-poster").Each(func(_ int, poster *goquery.Selection) {
		posters++

		alt, ok := poster.Find("img.image").First().Attr("alt")
		if !ok || strings.TrimSpace(alt) == "" {
			c.logger.Warn("film poster missing alt attribute, skipping entry",
				"username", username, "page", page)
			return
		}

		titles = append(titles, strings.TrimSpace(alt))
	})

	return titles, posters, nil
}
