package directory

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/georgemunganga/promoled-directory/internal/geo"
)

var errStorage = errors.New("storage unavailable")

// memoryRepo keeps the directory in memory and can be told to fail, either
// everywhere or only on photo or tag writes.
type memoryRepo struct {
	mu         sync.Mutex
	providers  []*Provider
	tags       map[TagKind][]string
	saves      map[TagKind]int
	fail       bool
	failPhotos bool
	failTags   bool
}

func newMemoryRepo(providers ...*Provider) *memoryRepo {
	return &memoryRepo{
		providers: providers,
		tags:      map[TagKind][]string{},
		saves:     map[TagKind]int{},
	}
}

func (m *memoryRepo) ListProviders(ctx context.Context) ([]*Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errStorage
	}
	out := []*Provider{}
	for _, p := range m.providers {
		out = append(out, p.clone())
	}
	return out, nil
}

func (m *memoryRepo) find(id string) int {
	return slices.IndexFunc(m.providers, func(p *Provider) bool { return p.ID == id })
}

func (m *memoryRepo) InsertProvider(ctx context.Context, p *Provider) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errStorage
	}
	m.providers = append([]*Provider{p.clone()}, m.providers...)
	return nil
}

func (m *memoryRepo) UpdateProvider(ctx context.Context, p *Provider) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errStorage
	}
	i := m.find(p.ID)
	if i < 0 {
		return ErrProviderNotFound
	}
	m.providers[i] = p.clone()
	return nil
}

func (m *memoryRepo) DeleteProvider(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errStorage
	}
	i := m.find(id)
	if i < 0 {
		return ErrProviderNotFound
	}
	m.providers = slices.Delete(m.providers, i, i+1)
	return nil
}

func (m *memoryRepo) InsertPhoto(ctx context.Context, providerID string, photo *Photo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail || m.failPhotos {
		return errStorage
	}
	i := m.find(providerID)
	if i < 0 {
		return ErrProviderNotFound
	}
	m.providers[i].Photos = append([]*Photo{photo.clone()}, m.providers[i].Photos...)
	return nil
}

func (m *memoryRepo) UpdatePhoto(ctx context.Context, providerID string, photo *Photo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail || m.failPhotos {
		return errStorage
	}
	i := m.find(providerID)
	if i < 0 {
		return ErrPhotoNotFound
	}
	j := m.providers[i].photoIndex(photo.ID)
	if j < 0 {
		return ErrPhotoNotFound
	}
	m.providers[i].Photos[j] = photo.clone()
	return nil
}

func (m *memoryRepo) DeletePhoto(ctx context.Context, providerID, photoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errStorage
	}
	i := m.find(providerID)
	if i < 0 {
		return ErrPhotoNotFound
	}
	j := m.providers[i].photoIndex(photoID)
	if j < 0 {
		return ErrPhotoNotFound
	}
	m.providers[i].Photos = slices.Delete(m.providers[i].Photos, j, j+1)
	return nil
}

func (m *memoryRepo) ListTags(ctx context.Context, kind TagKind) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errStorage
	}
	return slices.Clone(m.tags[kind]), nil
}

func (m *memoryRepo) SaveTags(ctx context.Context, kind TagKind, tags []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail || m.failTags {
		return errStorage
	}
	m.tags[kind] = append([]string{}, tags...)
	m.saves[kind]++
	return nil
}

func (m *memoryRepo) ReplaceAll(ctx context.Context, providers []*Provider, zoneTags, productTags []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errStorage
	}
	m.providers = nil
	for _, p := range providers {
		m.providers = append(m.providers, p.clone())
	}
	m.tags[TagZone] = append([]string{}, zoneTags...)
	m.tags[TagProduct] = append([]string{}, productTags...)
	return nil
}

func (m *memoryRepo) setFail(fail bool) {
	m.mu.Lock()
	m.fail = fail
	m.mu.Unlock()
}

// memoryCoords is a CoordinateStore over a plain index.
type memoryCoords struct {
	mu  sync.Mutex
	idx geo.Index
}

func (c *memoryCoords) Index() geo.Index {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.idx
}

func (c *memoryCoords) Replace(ctx context.Context, idx geo.Index) error {
	c.mu.Lock()
	c.idx = idx
	c.mu.Unlock()
	return nil
}
