package writer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/metascrape/pkg/common"
)

func TestWriteItems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "export.json")
	items := []common.ScrapedItem{{ID: 1, Title: "A", Description: "d", URL: "http://a.com"}}

	require.NoError(t, WriteItems(path, "http://localhost:8000", items))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Export
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "http://localhost:8000", got.Source)
	assert.Equal(t, 1, got.Count)
	assert.Equal(t, items, got.Items)
	assert.False(t, got.ExportedAt.IsZero())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestWriteItems_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, WriteItems(path, "src", nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"items": []`)
}
