package benchmark

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tax := DefaultTaxonomy()

	tests := []struct {
		name string
		code string
		want MainCategory
	}{
		{"main category id", "restaurant", CategoryRestaurant},
		{"main category other", "other", CategoryOther},
		{"sub industry id", "chicken", CategoryFastfood},
		{"hyphenated sub id", "beer-hall", CategoryPub},
		{"localized alias", "치킨", CategoryFastfood},
		{"alias with punctuation", "아이스크림/빙수", CategoryCafe},
		{"alias with space", "식품 제조", CategoryOther},
		{"unknown falls back to other", "spaceport", CategoryOther},
		{"empty falls back to other", "", CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tax.Resolve(tt.code))
		})
	}
}

func TestResolveCaseAndWidthInsensitive(t *testing.T) {
	tax := DefaultTaxonomy()
	assert.Equal(t, CategoryFastfood, tax.Resolve("Chicken"))
	assert.Equal(t, CategoryRestaurant, tax.Resolve("RESTAURANT"))
}

func TestLoadTaxonomy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taxonomy.yaml")
	data := `industries:
  restaurant:
    - id: diner
      aliases: ["greasy spoon"]
  retail:
    - id: bookshop
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	tax, err := LoadTaxonomy(path)
	require.NoError(t, err)

	assert.Equal(t, CategoryRestaurant, tax.Resolve("diner"))
	assert.Equal(t, CategoryRestaurant, tax.Resolve("greasy spoon"))
	assert.Equal(t, CategoryRetail, tax.Resolve("bookshop"))
	assert.Equal(t, CategoryOther, tax.Resolve("diner-x"))
}

func TestLoadTaxonomyErrors(t *testing.T) {
	_, err := LoadTaxonomy(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	_, err = LoadTaxonomy(path)
	assert.Error(t, err)
}
