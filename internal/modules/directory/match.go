package directory

// MatchTags reports whether itemTags satisfy one tag group of a filter. An
// empty selection always matches; otherwise a single shared tag is enough.
// Tags compare case-insensitively once trimmed.
func MatchTags(itemTags, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	have := make(map[string]struct{}, len(itemTags))
	for _, tag := range itemTags {
		have[normalizeTag(tag)] = struct{}{}
	}
	for _, tag := range selected {
		if _, ok := have[normalizeTag(tag)]; ok {
			return true
		}
	}
	return false
}

// PhotoMatches requires both tag groups to match.
func PhotoMatches(photo *Photo, zones, products []string) bool {
	return MatchTags(photo.Zones, zones) && MatchTags(photo.Products, products)
}

// ProviderMatches reports whether one of the provider's photos satisfies the
// tag filter on its own. A provider without photos never matches, even when
// no tag is selected.
func ProviderMatches(p *Provider, zones, products []string) bool {
	for _, photo := range p.Photos {
		if PhotoMatches(photo, zones, products) {
			return true
		}
	}
	return false
}
