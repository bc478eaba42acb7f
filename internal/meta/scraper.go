package meta

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// Scraper fetches a page and extracts its metadata, pacing outbound requests
type Scraper struct {
	fetcher Fetcher
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewScraper wraps fetcher. A nil limiter means no rate limit.
func NewScraper(fetcher Fetcher, limiter *rate.Limiter, logger *log.Logger) *Scraper {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Scraper{
		fetcher: fetcher,
		limiter: limiter,
		logger:  logger,
	}
}

// NewLimiter allows perSecond scrapes with the given burst. perSecond <= 0 disables limiting.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
}

// Scrape returns the title and description of the page at rawURL.
// A page with no title falls back to its URL.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (Metadata, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return Metadata{}, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	start := time.Now()
	html, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return Metadata{}, err
	}

	md, err := Extract(html)
	if err != nil {
		return Metadata{}, err
	}
	if md.Title == "" {
		md.Title = displayURL(rawURL)
	}

	s.logger.Debug("Scraped page",
		"url", rawURL,
		"title", md.Title,
		"bytes", len(html),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return md, nil
}

func displayURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host + u.EscapedPath()
}
