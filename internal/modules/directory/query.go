package directory

import "github.com/georgemunganga/promoled-directory/internal/geo"

// Search filters providers for q and returns the provider and photo views.
// Both keep the order of providers and, within a provider, of its photos.
// Search does not modify its inputs and gives the same result for the same
// inputs.
func Search(providers []*Provider, idx geo.Index, q Query) Result {
	res := Result{
		Providers: []*Provider{},
		Photos:    []PhotoHit{},
	}

	for _, p := range providers {
		if !geo.Serves(q.Zip, p.Address.Zip, p.ServiceRadiusKm, idx, p.ServiceZips) {
			continue
		}

		if ProviderMatches(p, q.Zones, q.Products) && (!q.RequirePhotos || len(p.Photos) > 0) {
			res.Providers = append(res.Providers, p)
		}

		for _, photo := range p.Photos {
			if PhotoMatches(photo, q.Zones, q.Products) {
				res.Photos = append(res.Photos, PhotoHit{Provider: p, Photo: photo})
			}
		}
	}
	return res
}
