package meta

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Metadata is what gets pulled out of a page
type Metadata struct {
	Title       string
	Description string
}

// Extract reads the title and description from an HTML document.
//
// Title: og:title, then <title>, then the first <h1>.
// Description: meta description, then og:description, then twitter:description.
// Missing values are left empty.
func Extract(html string) (Metadata, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return Metadata{
		Title: firstNonEmpty(
			metaContent(doc, "meta[property='og:title']"),
			doc.Find("title").First().Text(),
			doc.Find("h1").First().Text(),
		),
		Description: firstNonEmpty(
			metaContent(doc, "meta[name='description']"),
			metaContent(doc, "meta[property='og:description']"),
			metaContent(doc, "meta[name='twitter:description']"),
		),
	}, nil
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return content
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = collapseSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// collapseSpace trims s and folds internal runs of whitespace to one space
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
