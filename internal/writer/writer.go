package writer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-scripts/metascrape/pkg/common"
)

// Export is the document written by WriteItems
type Export struct {
	Source     string               `json:"source"`
	ExportedAt time.Time            `json:"exported_at"`
	Count      int                  `json:"count"`
	Items      []common.ScrapedItem `json:"items"`
}

// WriteItems writes items fetched from source to path as indented JSON,
// creating parent directories as needed. The file is replaced atomically.
func WriteItems(path, source string, items []common.ScrapedItem) error {
	if items == nil {
		items = []common.ScrapedItem{}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".export-*.json")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	err = encoder.Encode(Export{
		Source:     source,
		ExportedAt: time.Now().UTC(),
		Count:      len(items),
		Items:      items,
	})
	if err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode items: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
