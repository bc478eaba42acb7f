package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/go-scripts/metascrape/internal/store"
	"github.com/go-scripts/metascrape/pkg/common"
)

// listData returns a handler for GET /api/data/
func listData(st store.Store, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := st.List(c.Request.Context())
		if err != nil {
			logger.Error("Failed to list items", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list items"})
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// submitURL returns a handler for POST /api/submit/.
// 201 with the new item after a scrape, 200 with the stored item when the URL is known.
func submitURL(st store.Store, sc Scraper, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req common.SubmitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		rawURL := strings.TrimSpace(req.URL)
		if rawURL == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
			return
		}
		if !validURL(rawURL) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "url must be an absolute http(s) url"})
			return
		}

		ctx := c.Request.Context()
		existing, err := st.FindByURL(ctx, rawURL)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, existing)
			return
		case !errors.Is(err, store.ErrNotFound):
			logger.Error("Failed to look up url", "url", rawURL, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up url"})
			return
		}

		md, err := sc.Scrape(ctx, rawURL)
		if err != nil {
			logger.Warn("Scrape failed", "url", rawURL, "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to scrape url"})
			return
		}

		item, err := st.Create(ctx, common.ScrapedItem{
			Title:       md.Title,
			Description: md.Description,
			URL:         rawURL,
		})
		if errors.Is(err, store.ErrDuplicateURL) {
			// lost a race with a concurrent submission of the same url
			if existing, err := st.FindByURL(ctx, rawURL); err == nil {
				c.JSON(http.StatusOK, existing)
				return
			}
		}
		if err != nil {
			logger.Error("Failed to store item", "url", rawURL, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store item"})
			return
		}

		logger.Info("Scraped url", "url", rawURL, "id", item.ID, "title", item.Title)
		c.JSON(http.StatusCreated, item)
	}
}

func validURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
