package directory

import (
	"errors"

	"github.com/georgemunganga/promoled-directory/internal/geo"
)

var (
	ErrProviderNotFound = errors.New("provider not found")
	ErrPhotoNotFound    = errors.New("photo not found")
	ErrInvalidZip       = errors.New("invalid postal code: expected 5 digits")
	ErrNameRequired     = errors.New("name or company is required")
	ErrTagRequired      = errors.New("tag is required")
	ErrInvalidTagKind   = errors.New("invalid tag kind: expected zone or product")
)

// Address is where a provider is based. Zip drives the geographic matching.
type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	Zip    string `json:"zip"`
}

// Provider is a listed electrician.
//
// ServiceZips, when non-empty, always cover the postal codes they list,
// whatever ServiceRadiusKm says. A radius of 0 means "not configured".
type Provider struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Company         string   `json:"company"`
	Email           string   `json:"email,omitempty"`
	Phone           string   `json:"phone,omitempty"`
	Bio             string   `json:"bio,omitempty"`
	BioHTML         string   `json:"bioHtml,omitempty"`
	Specialties     []string `json:"specialties"`
	Address         Address  `json:"address"`
	ServiceRadiusKm float64  `json:"serviceRadiusKm"`
	ServiceZips     []string `json:"serviceZips"`
	Photos          []*Photo `json:"photos"`
	UpdatedAt       int64    `json:"updatedAt,omitempty"` // Unix milliseconds
}

// DisplayName is the company name, or the person's name when there is none.
func (p *Provider) DisplayName() string {
	if p.Company != "" {
		return p.Company
	}
	return p.Name
}

func (p *Provider) photoIndex(photoID string) int {
	for i, photo := range p.Photos {
		if photo.ID == photoID {
			return i
		}
	}
	return -1
}

// clone copies p deeply enough that the copy can be edited without touching
// values other goroutines may be reading.
func (p *Provider) clone() *Provider {
	c := *p
	c.Specialties = append([]string{}, p.Specialties...)
	c.ServiceZips = append([]string{}, p.ServiceZips...)
	c.Photos = make([]*Photo, len(p.Photos))
	for i, photo := range p.Photos {
		c.Photos[i] = photo.clone()
	}
	return &c
}

// Photo is a picture of a realisation, tagged by room zone and product.
type Photo struct {
	ID       string   `json:"id"`
	ImageRef string   `json:"imageRef"`
	Caption  string   `json:"caption"`
	Zones    []string `json:"zones"`
	Products []string `json:"products"`
}

func (p *Photo) clone() *Photo {
	c := *p
	c.Zones = append([]string{}, p.Zones...)
	c.Products = append([]string{}, p.Products...)
	return &c
}

// PhotoHit is one entry of the photo view: a photo with the provider owning it.
type PhotoHit struct {
	Provider *Provider `json:"provider"`
	Photo    *Photo    `json:"photo"`
}

// Query holds the public search inputs. An empty Zip disables the geographic
// filter; empty tag selections disable the matching tag group.
type Query struct {
	Zip           string
	Zones         []string
	Products      []string
	RequirePhotos bool
}

// Result holds both projections of a search, in directory order.
type Result struct {
	Providers []*Provider `json:"providers"`
	Photos    []PhotoHit  `json:"photos"`
}

// Snapshot is the persisted shape of the whole directory.
type Snapshot struct {
	Data        []*Provider `json:"data"`
	ZoneTags    []string    `json:"zoneTags"`
	ProductTags []string    `json:"productTags"`
	CPIndex     geo.Index   `json:"cpIndex"`
}

// UpsertProviderRequest is the payload for creating or editing a provider.
// Photos are managed through the photo operations and kept on update.
type UpsertProviderRequest struct {
	ID              string   `json:"id,omitempty"`
	Name            string   `json:"name"`
	Company         string   `json:"company"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	Bio             string   `json:"bio"`
	BioHTML         string   `json:"bioHtml"`
	Specialties     []string `json:"specialties"`
	Address         Address  `json:"address"`
	ServiceRadiusKm float64  `json:"serviceRadiusKm"`
	ServiceZips     []string `json:"serviceZips"`
}

// PhotoRequest is the payload for adding a photo.
type PhotoRequest struct {
	ImageRef string   `json:"imageRef"`
	Caption  string   `json:"caption"`
	Zones    []string `json:"zones"`
	Products []string `json:"products"`
}

// PhotoPatch edits a photo; nil fields are left unchanged.
type PhotoPatch struct {
	Caption  *string   `json:"caption,omitempty"`
	Zones    *[]string `json:"zones,omitempty"`
	Products *[]string `json:"products,omitempty"`
}

// TagRequest names a tag of a given kind.
type TagRequest struct {
	Kind string `json:"kind"`
	Tag  string `json:"tag"`
}
