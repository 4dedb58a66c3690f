package directory

import (
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// TagKind selects one of the two tag catalogs.
type TagKind string

const (
	TagZone    TagKind = "zone"
	TagProduct TagKind = "product"
)

// ParseTagKind accepts "zone(s)" and "product(s)", in any case.
func ParseTagKind(s string) (TagKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "zone", "zones":
		return TagZone, nil
	case "product", "products":
		return TagProduct, nil
	default:
		return "", ErrInvalidTagKind
	}
}

var (
	defaultZoneTags    = []string{"Cuisine", "Salon", "Extérieur", "Couloir", "Salle de bain", "Chambre", "Bureau", "Commerce"}
	defaultProductTags = []string{"Bande LED", "Projecteur", "Guirlande", "Profilé", "Ruban RGB", "CCT", "Spot encastré", "Néon Flex"}
)

// DefaultTags returns the seed catalog for kind.
func DefaultTags(kind TagKind) Catalog {
	if kind == TagProduct {
		return NewCatalog(defaultProductTags)
	}
	return NewCatalog(defaultZoneTags)
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// Catalog is an ordered set of tags. Two tags are the same when they only
// differ by case or surrounding spaces; the first spelling is kept.
type Catalog []string

// NewCatalog trims tags and drops blanks and duplicates, keeping order.
func NewCatalog(tags []string) Catalog {
	c := Catalog{}
	for _, tag := range tags {
		c, _ = c.Ensure(tag)
	}
	return c
}

func (c Catalog) Contains(tag string) bool {
	key := normalizeTag(tag)
	return slices.ContainsFunc(c, func(t string) bool { return normalizeTag(t) == key })
}

// Ensure returns the catalog with tag appended when it is missing, and whether
// it grew. c itself is never modified.
func (c Catalog) Ensure(tag string) (Catalog, bool) {
	tag = strings.TrimSpace(tag)
	if tag == "" || c.Contains(tag) {
		return c, false
	}
	return append(slices.Clip(c), tag), true
}

// Remove returns the catalog without tag, and whether it was there.
func (c Catalog) Remove(tag string) (Catalog, bool) {
	key := normalizeTag(tag)
	out := make(Catalog, 0, len(c))
	for _, t := range c {
		if normalizeTag(t) != key {
			out = append(out, t)
		}
	}
	return out, len(out) != len(c)
}

// AttachTag adds tag to the photo's zones or products unless it is already
// there. It does not touch any catalog.
func AttachTag(photo *Photo, kind TagKind, tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false
	}
	target := &photo.Zones
	if kind == TagProduct {
		target = &photo.Products
	}
	if Catalog(*target).Contains(tag) {
		return false
	}
	*target = append(*target, tag)
	return true
}

// SortSelectedFirst orders tags for display: selected ones first, then
// alphabetically, ignoring case and accents the French way.
func SortSelectedFirst(tags, selected []string) []string {
	col := collate.New(language.French, collate.Loose)
	out := append([]string{}, tags...)
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := slices.Contains(selected, out[i]), slices.Contains(selected, out[j])
		if si != sj {
			return si
		}
		return col.CompareString(out[i], out[j]) < 0
	})
	return out
}
