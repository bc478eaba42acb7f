package meta

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	testCases := []struct {
		name string
		html string
		want Metadata
	}{
		{
			name: "title and meta description",
			html: `<html><head><title>Example Domain</title>
				<meta name="description" content="This domain is for use in examples."></head></html>`,
			want: Metadata{Title: "Example Domain", Description: "This domain is for use in examples."},
		},
		{
			name: "open graph wins for title",
			html: `<html><head><title>Site | Page</title>
				<meta property="og:title" content="Page" />
				<meta property="og:description" content="OG description" /></head></html>`,
			want: Metadata{Title: "Page", Description: "OG description"},
		},
		{
			name: "twitter description fallback",
			html: `<html><head><title>T</title>
				<meta name="twitter:description" content="tweet-sized"></head></html>`,
			want: Metadata{Title: "T", Description: "tweet-sized"},
		},
		{
			name: "h1 fallback and whitespace folding",
			html: `<html><body><h1>
				Hello
				World </h1></body></html>`,
			want: Metadata{Title: "Hello World"},
		},
		{
			name: "blank og title falls through",
			html: `<html><head><meta property="og:title" content="  "><title>Real</title></head></html>`,
			want: Metadata{Title: "Real"},
		},
		{
			name: "nothing",
			html: `<html><body><p>no metadata</p></body></html>`,
			want: Metadata{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Extract(tc.html)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html><body>Hello</body></html>"))
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(time.Second, "metascrape-test")
	html, err := fetcher.Fetch(context.Background(), server.URL)

	assert.NoError(t, err)
	assert.Contains(t, html, "Hello")
	assert.Equal(t, "metascrape-test", gotUA)
}

func TestHTTPFetcher_Fetch_Status(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewHTTPFetcher(time.Second, "").Fetch(context.Background(), server.URL)
	assert.Error(t, err)
}

func TestHTTPFetcher_Fetch_Error(t *testing.T) {
	_, err := NewHTTPFetcher(time.Second, "").Fetch(context.Background(), "http://invalid-url-that-should-fail.invalid")
	assert.Error(t, err)
}

type stubFetcher struct {
	html  string
	err   error
	calls int
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	s.calls++
	return s.html, s.err
}

func TestScraper_Scrape(t *testing.T) {
	t.Run("metadata", func(t *testing.T) {
		f := &stubFetcher{html: `<title>A</title><meta name="description" content="d">`}
		md, err := NewScraper(f, nil, nil).Scrape(context.Background(), "http://a.com")
		require.NoError(t, err)
		assert.Equal(t, Metadata{Title: "A", Description: "d"}, md)
	})

	t.Run("untitled page uses url", func(t *testing.T) {
		f := &stubFetcher{html: `<p>nothing</p>`}
		md, err := NewScraper(f, nil, nil).Scrape(context.Background(), "https://a.com/docs/intro")
		require.NoError(t, err)
		assert.Equal(t, "a.com/docs/intro", md.Title)
	})

	t.Run("fetch error", func(t *testing.T) {
		f := &stubFetcher{err: errors.New("boom")}
		_, err := NewScraper(f, nil, nil).Scrape(context.Background(), "http://a.com")
		assert.Error(t, err)
	})

	t.Run("rate limited wait honors context", func(t *testing.T) {
		f := &stubFetcher{html: `<title>A</title>`}
		s := NewScraper(f, NewLimiter(0.001, 1), nil)

		_, err := s.Scrape(context.Background(), "http://a.com")
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err = s.Scrape(ctx, "http://a.com")
		assert.Error(t, err)
		assert.Equal(t, 1, f.calls)
	})
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, NewLimiter(0, 5))
	l := NewLimiter(2, 0)
	require.NotNil(t, l)
	assert.Equal(t, 1, l.Burst())
}
