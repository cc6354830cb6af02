package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trips.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFiltersAndPreservesOrder(t *testing.T) {
	path := writeCatalog(t, `[
		{"title": "Banias Falls", "area": "North", "place": "Banias"},
		{"title": "Masada", "area": "South", "place": "Masada"},
		{"title": "Mount Meron", "area": "North", "place": "Meron"}
	]`)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	north := c.ByArea(AreaNorth)
	require.Len(t, north, 2)
	assert.Equal(t, "Banias Falls", north[0].Title)
	assert.Equal(t, "Mount Meron", north[1].Title)

	assert.Empty(t, c.ByArea(AreaCentre))
}

func TestLoadRejectsMissingFields(t *testing.T) {
	path := writeCatalog(t, `[{"title": "", "area": "North"}]`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing title or area")
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := writeCatalog(t, `{"not": "an array"}`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestAreasPresentationOrder(t *testing.T) {
	path := writeCatalog(t, `[]`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"North", "Centre", "South"}, c.Areas())
}
