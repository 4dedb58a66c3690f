package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchTags(t *testing.T) {
	cases := []struct {
		name     string
		item     []string
		selected []string
		want     bool
	}{
		{"empty selection matches", nil, nil, true},
		{"empty selection matches untagged photo", []string{}, []string{}, true},
		{"one of several selected", []string{"Cuisine"}, []string{"Cuisine", "Salon"}, true},
		{"case and spaces ignored", []string{"  cuisine "}, []string{"CUISINE"}, true},
		{"no overlap", []string{"Chambre"}, []string{"Cuisine", "Salon"}, false},
		{"untagged photo with selection", nil, []string{"Cuisine"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MatchTags(tc.item, tc.selected))
		})
	}
}

func TestPhotoMatchesAcrossGroups(t *testing.T) {
	photo := &Photo{Zones: []string{"Cuisine"}, Products: []string{"Bande LED"}}

	assert.True(t, PhotoMatches(photo, []string{"Cuisine", "Salon"}, nil))
	assert.True(t, PhotoMatches(photo, []string{"Cuisine"}, []string{"bande led"}))
	assert.False(t, PhotoMatches(photo, []string{"Cuisine", "Salon"}, []string{"Spot encastré"}))
	assert.False(t, PhotoMatches(photo, []string{"Salon"}, []string{"Bande LED"}))
}

func TestProviderMatches(t *testing.T) {
	p := &Provider{Photos: []*Photo{
		{ID: "a", Zones: []string{"Cuisine"}, Products: []string{"Projecteur"}},
		{ID: "b", Zones: []string{"Salon"}, Products: []string{"Bande LED"}},
	}}

	assert.True(t, ProviderMatches(p, nil, nil))
	assert.True(t, ProviderMatches(p, []string{"Salon"}, []string{"Bande LED"}))
	// each group is satisfied by a different photo, but no single photo has both
	assert.False(t, ProviderMatches(p, []string{"Cuisine"}, []string{"Bande LED"}))

	assert.False(t, ProviderMatches(&Provider{}, nil, nil))
	assert.False(t, ProviderMatches(&Provider{Photos: []*Photo{}}, nil, nil))
	assert.False(t, ProviderMatches(&Provider{}, []string{"Cuisine"}, nil))
	assert.True(t, ProviderMatches(&Provider{Photos: []*Photo{{ID: "untagged"}}}, nil, nil))
}
