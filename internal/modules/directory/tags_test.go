package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogEnsure(t *testing.T) {
	c := NewCatalog([]string{"Cuisine", " Salon ", "cuisine", ""})
	assert.Equal(t, Catalog{"Cuisine", "Salon"}, c)

	grown, added := c.Ensure("Garage")
	assert.True(t, added)
	assert.Equal(t, Catalog{"Cuisine", "Salon", "Garage"}, grown)
	assert.Equal(t, Catalog{"Cuisine", "Salon"}, c, "original catalog is left untouched")

	same, added := grown.Ensure("  GARAGE")
	assert.False(t, added)
	assert.Equal(t, grown, same)

	_, added = c.Ensure("   ")
	assert.False(t, added)
}

func TestCatalogRemove(t *testing.T) {
	c := NewCatalog([]string{"Cuisine", "Salon"})

	out, removed := c.Remove("salon")
	assert.True(t, removed)
	assert.Equal(t, Catalog{"Cuisine"}, out)

	_, removed = c.Remove("Garage")
	assert.False(t, removed)
}

func TestAttachTag(t *testing.T) {
	photo := &Photo{}
	assert.True(t, AttachTag(photo, TagZone, " Cuisine "))
	assert.False(t, AttachTag(photo, TagZone, "cuisine"))
	assert.True(t, AttachTag(photo, TagProduct, "CCT"))
	assert.False(t, AttachTag(photo, TagProduct, ""))

	assert.Equal(t, []string{"Cuisine"}, photo.Zones)
	assert.Equal(t, []string{"CCT"}, photo.Products)
}

func TestDefaultTags(t *testing.T) {
	assert.Len(t, DefaultTags(TagZone), 8)
	assert.True(t, DefaultTags(TagProduct).Contains("spot encastré"))
	assert.False(t, DefaultTags(TagZone).Contains("Spot encastré"))
}

func TestParseTagKind(t *testing.T) {
	kind, err := ParseTagKind("Zones")
	require.NoError(t, err)
	assert.Equal(t, TagZone, kind)

	kind, err = ParseTagKind("product")
	require.NoError(t, err)
	assert.Equal(t, TagProduct, kind)

	_, err = ParseTagKind("color")
	assert.ErrorIs(t, err, ErrInvalidTagKind)
}

func TestSortSelectedFirst(t *testing.T) {
	tags := []string{"Salon", "extérieur", "Cuisine", "Bureau", "Entrée"}
	got := SortSelectedFirst(tags, []string{"Salon", "Cuisine"})
	assert.Equal(t, []string{"Cuisine", "Salon", "Bureau", "Entrée", "extérieur"}, got)
	assert.Equal(t, []string{"Salon", "extérieur", "Cuisine", "Bureau", "Entrée"}, tags)
}

func TestAppendServiceZips(t *testing.T) {
	got := AppendServiceZips([]string{"31000"}, "31100, 31200;31000  3130 abcde\t31400")
	assert.Equal(t, []string{"31000", "31100", "31200", "31400"}, got)

	assert.Equal(t, []string{}, NormalizeServiceZips(nil))
}
