package directory

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/georgemunganga/promoled-directory/internal/geo"
)

// CoordinateStore holds the postal code coordinate table used by Search.
type CoordinateStore interface {
	Index() geo.Index
	Replace(ctx context.Context, idx geo.Index) error
}

// Service owns the directory state: providers in directory order and the two
// tag catalogs. Reads are served from memory; every mutation is written to the
// repository before it becomes visible.
type Service interface {
	Load(ctx context.Context) error

	Search(q Query) Result
	GetProvider(id string) (*Provider, error)
	ListProviders(filter string) []*Provider

	UpsertProvider(ctx context.Context, req UpsertProviderRequest) (*Provider, error)
	DeleteProvider(ctx context.Context, id string) error

	AddPhoto(ctx context.Context, providerID string, req PhotoRequest) (*Photo, error)
	UpdatePhoto(ctx context.Context, providerID, photoID string, patch PhotoPatch) (*Photo, error)
	DeletePhoto(ctx context.Context, providerID, photoID string) (*Photo, error)
	TagPhoto(ctx context.Context, providerID, photoID string, kind TagKind, tag string) (bool, error)

	Tags(kind TagKind) Catalog
	AddTag(ctx context.Context, kind TagKind, tag string) (Catalog, error)
	RemoveTag(ctx context.Context, kind TagKind, tag string) (Catalog, error)

	ExportSnapshot() Snapshot
	ImportSnapshot(ctx context.Context, snap Snapshot) error
}

type service struct {
	repo   Repository
	coords CoordinateStore
	log    *zap.SugaredLogger
	now    func() time.Time

	mu          sync.RWMutex
	providers   []*Provider
	zoneTags    Catalog
	productTags Catalog
}

// NewService creates the directory service. coords may be nil, in which case
// only the served-zip and department rules apply.
func NewService(repo Repository, coords CoordinateStore, log *zap.SugaredLogger) Service {
	return &service{
		repo:        repo,
		coords:      coords,
		log:         log,
		now:         time.Now,
		providers:   []*Provider{},
		zoneTags:    DefaultTags(TagZone),
		productTags: DefaultTags(TagProduct),
	}
}

func (s *service) Load(ctx context.Context) error {
	providers, err := s.repo.ListProviders(ctx)
	if err != nil {
		return fmt.Errorf("load providers: %w", err)
	}
	zones, err := s.loadCatalog(ctx, TagZone)
	if err != nil {
		return err
	}
	products, err := s.loadCatalog(ctx, TagProduct)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.providers = providers
	s.zoneTags = zones
	s.productTags = products
	s.mu.Unlock()

	s.log.Infow("directory loaded", "providers", len(providers), "zoneTags", len(zones), "productTags", len(products))
	return nil
}

// loadCatalog seeds and saves the default tags the first time.
func (s *service) loadCatalog(ctx context.Context, kind TagKind) (Catalog, error) {
	tags, err := s.repo.ListTags(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("load %s tags: %w", kind, err)
	}
	if tags != nil {
		return NewCatalog(tags), nil
	}
	seed := DefaultTags(kind)
	if err := s.repo.SaveTags(ctx, kind, seed); err != nil {
		return nil, fmt.Errorf("seed %s tags: %w", kind, err)
	}
	return seed, nil
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *service) Search(q Query) Result {
	var idx geo.Index
	if s.coords != nil {
		idx = s.coords.Index()
	}
	s.mu.RLock()
	providers := s.providers
	s.mu.RUnlock()
	return Search(providers, idx, q)
}

func (s *service) GetProvider(id string) (*Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.providers[i], nil
	}
	return nil, ErrProviderNotFound
}

// ListProviders returns providers whose company, name, city, email or phone
// contains filter, ignoring case. An empty filter returns all of them.
func (s *service) ListProviders(filter string) []*Provider {
	s.mu.RLock()
	providers := s.providers
	s.mu.RUnlock()

	filter = strings.ToLower(strings.TrimSpace(filter))
	out := []*Provider{}
	for _, p := range providers {
		if filter == "" || providerContains(p, filter) {
			out = append(out, p)
		}
	}
	return out
}

func providerContains(p *Provider, needle string) bool {
	for _, field := range []string{p.Company, p.Name, p.Address.City, p.Email, p.Phone} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// ── Providers ────────────────────────────────────────────────────────────────

// UpsertProvider updates the provider with req.ID, keeping its photos and its
// place in the directory, or creates a new provider at the top.
func (s *service) UpsertProvider(ctx context.Context, req UpsertProviderRequest) (*Provider, error) {
	p, err := s.providerFromRequest(req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(p.ID); i >= 0 {
		p.Photos = s.providers[i].Photos
		if err := s.repo.UpdateProvider(ctx, p); err != nil {
			return nil, fmt.Errorf("update provider %s: %w", p.ID, err)
		}
		s.providers = replaceAt(s.providers, i, p)
		s.log.Infow("provider updated", "id", p.ID, "name", p.DisplayName())
		return p, nil
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := s.repo.InsertProvider(ctx, p); err != nil {
		return nil, fmt.Errorf("insert provider: %w", err)
	}
	s.providers = append([]*Provider{p}, s.providers...)
	s.log.Infow("provider created", "id", p.ID, "name", p.DisplayName())
	return p, nil
}

func (s *service) providerFromRequest(req UpsertProviderRequest) (*Provider, error) {
	p := &Provider{
		ID:      strings.TrimSpace(req.ID),
		Name:    strings.TrimSpace(req.Name),
		Company: strings.TrimSpace(req.Company),
		Email:   strings.TrimSpace(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Bio:     req.Bio,
		BioHTML: req.BioHTML,
		Address: Address{
			Street: strings.TrimSpace(req.Address.Street),
			City:   strings.TrimSpace(req.Address.City),
			Zip:    strings.TrimSpace(req.Address.Zip),
		},
		Specialties:     []string(NewCatalog(req.Specialties)),
		ServiceRadiusKm: clampRadius(req.ServiceRadiusKm),
		ServiceZips:     NormalizeServiceZips(req.ServiceZips),
		Photos:          []*Photo{},
		UpdatedAt:       s.now().UnixMilli(),
	}
	if p.Name == "" && p.Company == "" {
		return nil, ErrNameRequired
	}
	if p.Address.Zip != "" && !geo.ValidZip(p.Address.Zip) {
		return nil, ErrInvalidZip
	}
	return p, nil
}

func clampRadius(r float64) float64 {
	if math.IsNaN(r) || r < 0 || math.IsInf(r, 0) {
		return 0
	}
	return r
}

func (s *service) DeleteProvider(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrProviderNotFound
	}
	if err := s.repo.DeleteProvider(ctx, id); err != nil {
		return fmt.Errorf("delete provider %s: %w", id, err)
	}
	s.providers = slices.Delete(slices.Clone(s.providers), i, i+1)
	s.log.Infow("provider deleted", "id", id)
	return nil
}

// ── Photos ───────────────────────────────────────────────────────────────────

// AddPhoto puts a new photo first in the provider's gallery. Unknown tags are
// added to the catalogs once the photo is stored.
func (s *service) AddPhoto(ctx context.Context, providerID string, req PhotoRequest) (*Photo, error) {
	photo := &Photo{
		ID:       uuid.NewString(),
		ImageRef: strings.TrimSpace(req.ImageRef),
		Caption:  strings.TrimSpace(req.Caption),
		Zones:    []string(NewCatalog(req.Zones)),
		Products: []string(NewCatalog(req.Products)),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(providerID)
	if i < 0 {
		return nil, ErrProviderNotFound
	}
	if err := s.repo.InsertPhoto(ctx, providerID, photo); err != nil {
		return nil, fmt.Errorf("insert photo: %w", err)
	}

	p := s.providers[i].clone()
	p.Photos = append([]*Photo{photo}, p.Photos...)
	s.providers = replaceAt(s.providers, i, p)
	s.growCatalogs(ctx, providerID, photo)
	s.log.Infow("photo added", "provider", providerID, "photo", photo.ID)
	return photo, nil
}

func (s *service) UpdatePhoto(ctx context.Context, providerID, photoID string, patch PhotoPatch) (*Photo, error) {
	photo, _, err := s.editPhoto(ctx, providerID, photoID, func(photo *Photo) bool {
		if patch.Caption != nil {
			photo.Caption = strings.TrimSpace(*patch.Caption)
		}
		if patch.Zones != nil {
			photo.Zones = []string(NewCatalog(*patch.Zones))
		}
		if patch.Products != nil {
			photo.Products = []string(NewCatalog(*patch.Products))
		}
		return true
	})
	return photo, err
}

// TagPhoto attaches one tag to a photo, adding it to the catalog first when
// it is new. It reports whether the catalog grew.
func (s *service) TagPhoto(ctx context.Context, providerID, photoID string, kind TagKind, tag string) (bool, error) {
	if strings.TrimSpace(tag) == "" {
		return false, ErrTagRequired
	}
	_, grew, err := s.editPhoto(ctx, providerID, photoID, func(photo *Photo) bool {
		return AttachTag(photo, kind, tag) || !s.catalog(kind).Contains(tag)
	})
	return grew, err
}

// editPhoto applies edit to a copy of the photo and commits it when edit
// reports a change. Catalogs then grow with the photo's tags; grew reports
// whether they did.
func (s *service) editPhoto(ctx context.Context, providerID, photoID string, edit func(*Photo) bool) (photo *Photo, grew bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(providerID)
	if i < 0 {
		return nil, false, ErrProviderNotFound
	}
	p := s.providers[i].clone()
	j := p.photoIndex(photoID)
	if j < 0 {
		return nil, false, ErrPhotoNotFound
	}
	photo = p.Photos[j]
	if !edit(photo) {
		return s.providers[i].Photos[j], false, nil
	}

	if err := s.repo.UpdatePhoto(ctx, providerID, photo); err != nil {
		return nil, false, fmt.Errorf("update photo %s: %w", photoID, err)
	}
	s.providers = replaceAt(s.providers, i, p)
	return photo, s.growCatalogs(ctx, providerID, photo), nil
}

// DeletePhoto removes the photo and returns it so callers can release its
// image.
func (s *service) DeletePhoto(ctx context.Context, providerID, photoID string) (*Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(providerID)
	if i < 0 {
		return nil, ErrProviderNotFound
	}
	j := s.providers[i].photoIndex(photoID)
	if j < 0 {
		return nil, ErrPhotoNotFound
	}
	if err := s.repo.DeletePhoto(ctx, providerID, photoID); err != nil {
		return nil, fmt.Errorf("delete photo %s: %w", photoID, err)
	}

	removed := s.providers[i].Photos[j]
	p := s.providers[i].clone()
	p.Photos = slices.Delete(p.Photos, j, j+1)
	s.providers = replaceAt(s.providers, i, p)
	s.log.Infow("photo deleted", "provider", providerID, "photo", photoID)
	return removed, nil
}

// ── Tags ─────────────────────────────────────────────────────────────────────

func (s *service) Tags(kind TagKind) Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog(kind)
}

func (s *service) AddTag(ctx context.Context, kind TagKind, tag string) (Catalog, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, ErrTagRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, added := s.catalog(kind).Ensure(tag)
	if added {
		if err := s.saveCatalog(ctx, kind, c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RemoveTag drops tag from the catalog. Photos keep it.
func (s *service) RemoveTag(ctx context.Context, kind TagKind, tag string) (Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, removed := s.catalog(kind).Remove(tag)
	if removed {
		if err := s.saveCatalog(ctx, kind, c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (s *service) catalog(kind TagKind) Catalog {
	if kind == TagProduct {
		return s.productTags
	}
	return s.zoneTags
}

// saveCatalog must be called with mu held.
func (s *service) saveCatalog(ctx context.Context, kind TagKind, c Catalog) error {
	if err := s.repo.SaveTags(ctx, kind, c); err != nil {
		return fmt.Errorf("save %s tags: %w", kind, err)
	}
	if kind == TagProduct {
		s.productTags = c
	} else {
		s.zoneTags = c
	}
	s.log.Infow("tag catalog saved", "kind", kind, "size", len(c))
	return nil
}

// growCatalogs adds the tags of a stored photo to both catalogs and reports
// whether one grew. The photo is already saved, so a failed catalog write is
// logged and the photo keeps its tags. mu must be held.
func (s *service) growCatalogs(ctx context.Context, providerID string, photo *Photo) bool {
	grew, err := s.ensureTags(ctx, photo)
	if err != nil {
		s.log.Warnw("photo saved without updating tag catalogs",
			"provider", providerID, "photo", photo.ID, "error", err)
	}
	return grew
}

// ensureTags grows both catalogs with the photo's tags. mu must be held.
func (s *service) ensureTags(ctx context.Context, photo *Photo) (bool, error) {
	var changed bool
	for _, kind := range []TagKind{TagZone, TagProduct} {
		tags := photo.Zones
		if kind == TagProduct {
			tags = photo.Products
		}
		c, grew := s.catalog(kind), false
		for _, tag := range tags {
			var added bool
			c, added = c.Ensure(tag)
			grew = grew || added
		}
		if grew {
			if err := s.saveCatalog(ctx, kind, c); err != nil {
				return changed, err
			}
			changed = true
		}
	}
	return changed, nil
}

// ── Snapshot ─────────────────────────────────────────────────────────────────

func (s *service) ExportSnapshot() Snapshot {
	s.mu.RLock()
	snap := Snapshot{
		Data:        slices.Clone(s.providers),
		ZoneTags:    slices.Clone([]string(s.zoneTags)),
		ProductTags: slices.Clone([]string(s.productTags)),
	}
	s.mu.RUnlock()

	snap.CPIndex = geo.Index{}
	if s.coords != nil {
		if idx := s.coords.Index(); idx != nil {
			snap.CPIndex = idx
		}
	}
	return snap
}

// ImportSnapshot replaces the whole directory. Missing tag lists fall back to
// the defaults; an empty cpIndex leaves the coordinate table as it is.
func (s *service) ImportSnapshot(ctx context.Context, snap Snapshot) error {
	var idx geo.Index
	if len(snap.CPIndex) > 0 {
		idx = snap.CPIndex.Sanitized()
		if idx.Len() == 0 {
			return fmt.Errorf("snapshot cpIndex: %w", geo.ErrInvalidImport)
		}
		if s.coords == nil {
			return fmt.Errorf("snapshot cpIndex: no coordinate store configured")
		}
	}

	providers := make([]*Provider, 0, len(snap.Data))
	seen := map[string]bool{}
	for _, in := range snap.Data {
		if in == nil {
			continue
		}
		p := importedProvider(in)
		if seen[p.ID] {
			p.ID = uuid.NewString()
		}
		seen[p.ID] = true
		providers = append(providers, p)
	}

	zones, products := DefaultTags(TagZone), DefaultTags(TagProduct)
	if snap.ZoneTags != nil {
		zones = NewCatalog(snap.ZoneTags)
	}
	if snap.ProductTags != nil {
		products = NewCatalog(snap.ProductTags)
	}
	for _, p := range providers {
		for _, photo := range p.Photos {
			for _, tag := range photo.Zones {
				zones, _ = zones.Ensure(tag)
			}
			for _, tag := range photo.Products {
				products, _ = products.Ensure(tag)
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.ReplaceAll(ctx, providers, zones, products); err != nil {
		return fmt.Errorf("replace directory: %w", err)
	}
	s.providers = providers
	s.zoneTags = zones
	s.productTags = products

	if idx != nil {
		if err := s.coords.Replace(ctx, idx); err != nil {
			return fmt.Errorf("replace coordinates: %w", err)
		}
	}
	s.log.Infow("snapshot imported", "providers", len(providers), "postalCodes", idx.Len())
	return nil
}

// importedProvider copies in, filling missing IDs and bringing service zips
// and radius to their valid form. Other fields are kept as they are.
func importedProvider(in *Provider) *Provider {
	src := *in
	src.Photos = slices.DeleteFunc(slices.Clone(in.Photos), func(photo *Photo) bool { return photo == nil })
	p := src.clone()
	if strings.TrimSpace(p.ID) == "" {
		p.ID = uuid.NewString()
	}
	p.Address.Zip = strings.TrimSpace(p.Address.Zip)
	p.ServiceRadiusKm = clampRadius(p.ServiceRadiusKm)
	p.ServiceZips = NormalizeServiceZips(p.ServiceZips)
	photoIDs := map[string]bool{}
	for _, photo := range p.Photos {
		if photo.ID == "" || photoIDs[photo.ID] {
			photo.ID = uuid.NewString()
		}
		photoIDs[photo.ID] = true
	}
	return p
}

// ── helpers ──────────────────────────────────────────────────────────────────

// indexOf must be called with mu held.
func (s *service) indexOf(id string) int {
	for i, p := range s.providers {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// replaceAt returns a copy of providers with position i set to p, so slices
// handed out to readers are never written.
func replaceAt(providers []*Provider, i int, p *Provider) []*Provider {
	out := slices.Clone(providers)
	out[i] = p
	return out
}
