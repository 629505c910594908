package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"glowup/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalog(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "catalog.yaml")

	yamlContent := `
services:
  - id: "s1"
    name: "Bridal Makeup"
    price: 1500000
    duration_min: 120
  - id: "s2"
    name: "Party Glam"
    price: 500000
    duration_min: 60
artists:
  - id: "a1"
    name: "Minh Anh"
    level: "master"
    rating: 5.0
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o644))

	cat, err := Load(path)
	require.NoError(t, err)

	assert.Len(t, cat.Services(), 2)
	assert.Len(t, cat.Artists(), 1)
	assert.True(t, cat.HasService("s1"))
	assert.True(t, cat.HasArtist("a1"))
	assert.False(t, cat.HasService("s9"))

	s, ok := cat.ServiceByID("s2")
	require.True(t, ok)
	assert.Equal(t, "Party Glam", s.Name)
	assert.Equal(t, int64(500000), s.Price)
}

func TestNewCatalogValidation(t *testing.T) {
	t.Run("duplicate service id", func(t *testing.T) {
		_, err := New([]models.Service{{ID: "s1"}, {ID: "s1"}}, nil)
		assert.Error(t, err)
	})

	t.Run("empty service id", func(t *testing.T) {
		_, err := New([]models.Service{{Name: "no id"}}, nil)
		assert.Error(t, err)
	})

	t.Run("duplicate artist id", func(t *testing.T) {
		_, err := New(nil, []models.Artist{{ID: "a1"}, {ID: "a1"}})
		assert.Error(t, err)
	})
}
