package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/metascrape/pkg/common"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := Open(context.Background(), filepath.Join(t.TempDir(), "items.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	mem, err := Open(context.Background(), "")
	require.NoError(t, err)

	return map[string]Store{
		"memory": mem,
		"sqlite": sqlite,
	}
}

func TestStore_CreateAndList(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			items, err := s.List(ctx)
			require.NoError(t, err)
			assert.NotNil(t, items)
			assert.Empty(t, items)

			a, err := s.Create(ctx, common.ScrapedItem{Title: "A", Description: "d", URL: "http://a.com"})
			require.NoError(t, err)
			b, err := s.Create(ctx, common.ScrapedItem{Title: "B", URL: "http://b.com"})
			require.NoError(t, err)
			assert.NotEqual(t, a.ID, b.ID)
			assert.Greater(t, b.ID, a.ID)

			items, err = s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []common.ScrapedItem{a, b}, items)
		})
	}
}

func TestStore_DuplicateURL(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			first, err := s.Create(ctx, common.ScrapedItem{Title: "A", URL: "http://a.com"})
			require.NoError(t, err)

			_, err = s.Create(ctx, common.ScrapedItem{Title: "A again", URL: "http://a.com"})
			assert.ErrorIs(t, err, ErrDuplicateURL)

			found, err := s.FindByURL(ctx, "http://a.com")
			require.NoError(t, err)
			assert.Equal(t, first, found)

			_, err = s.FindByURL(ctx, "http://missing.com")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestMemoryStore_ConcurrentCreate(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Create(ctx, common.ScrapedItem{Title: "A", URL: "http://a.com"})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
		} else {
			assert.ErrorIs(t, err, ErrDuplicateURL)
		}
	}
	assert.Equal(t, 1, created)
}
