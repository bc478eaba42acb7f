package store

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/go-scripts/metascrape/pkg/common"
)

var (
	// ErrDuplicateURL is returned by Create when the URL is already stored
	ErrDuplicateURL = errors.New("url already stored")
	// ErrNotFound is returned by FindByURL when nothing matches
	ErrNotFound = errors.New("not found")
)

// Store persists scraped items. URLs are unique and IDs are assigned on Create.
type Store interface {
	List(ctx context.Context) ([]common.ScrapedItem, error)
	FindByURL(ctx context.Context, url string) (common.ScrapedItem, error)
	Create(ctx context.Context, item common.ScrapedItem) (common.ScrapedItem, error)
	Close() error
}

// Open returns a SQLite store for dsn, or an in-memory store when dsn is empty
func Open(ctx context.Context, dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return NewMemory(), nil
	}
	s, err := NewSQLite(dsn)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// MemoryStore keeps items in process memory
type MemoryStore struct {
	mu     sync.RWMutex
	items  []common.ScrapedItem
	byURL  map[string]int
	nextID int64
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		byURL:  make(map[string]int),
		nextID: 1,
	}
}

func (m *MemoryStore) List(ctx context.Context) ([]common.ScrapedItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]common.ScrapedItem{}, m.items...), nil
}

func (m *MemoryStore) FindByURL(ctx context.Context, url string) (common.ScrapedItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.byURL[url]
	if !ok {
		return common.ScrapedItem{}, ErrNotFound
	}
	return m.items[i], nil
}

func (m *MemoryStore) Create(ctx context.Context, item common.ScrapedItem) (common.ScrapedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byURL[item.URL]; ok {
		return common.ScrapedItem{}, ErrDuplicateURL
	}
	item.ID = m.nextID
	m.nextID++
	m.byURL[item.URL] = len(m.items)
	m.items = append(m.items, item)
	return item, nil
}

func (m *MemoryStore) Close() error {
	return nil
}
