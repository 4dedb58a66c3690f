package postalcode

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/georgemunganga/promoled-directory/internal/geo"
)

// Service holds the coordinate table used for distance matching. The table
// is replaced as a whole: readers see either the old or the new one.
type Service interface {
	Load(ctx context.Context) error
	Import(ctx context.Context, r io.Reader, format geo.Format) (*ImportResult, error)
	Replace(ctx context.Context, idx geo.Index) error
	Index() geo.Index
	Nearby(zip string, radiusKm float64) ([]geo.Nearby, error)
	Stats() Stats
}

type state struct {
	index      geo.Index
	spatial    *geo.SpatialIndex
	importedAt *time.Time
}

type service struct {
	repo Repository
	log  *zap.SugaredLogger
	now  func() time.Time

	mu      sync.RWMutex
	current state
}

func NewService(repo Repository, log *zap.SugaredLogger) Service {
	return &service{
		repo:    repo,
		log:     log,
		now:     time.Now,
		current: state{index: geo.Index{}, spatial: geo.NewSpatialIndex(geo.Index{})},
	}
}

func (s *service) Load(ctx context.Context) error {
	idx, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	idx = idx.Sanitized()

	s.mu.Lock()
	s.current = state{index: idx, spatial: geo.NewSpatialIndex(idx)}
	s.mu.Unlock()

	s.log.Infow("postal codes loaded", "postalCodes", idx.Len())
	return nil
}

// Import parses r and, when at least one postal code is valid, replaces the
// table with it. On failure the table is left unchanged.
func (s *service) Import(ctx context.Context, r io.Reader, format geo.Format) (*ImportResult, error) {
	idx, err := geo.ParseIndex(r, format)
	if err != nil {
		s.log.Warnw("postal code import rejected", "format", format, "error", err)
		return nil, fmt.Errorf("import %s: %w", format, err)
	}
	if err := s.Replace(ctx, idx); err != nil {
		return nil, err
	}
	return &ImportResult{PostalCodes: idx.Len(), Format: string(format)}, nil
}

func (s *service) Replace(ctx context.Context, idx geo.Index) error {
	idx = idx.Sanitized()
	if idx.Len() == 0 {
		return geo.ErrInvalidImport
	}
	if err := s.repo.Replace(ctx, idx); err != nil {
		return fmt.Errorf("store postal codes: %w", err)
	}

	now := s.now()
	next := state{index: idx, spatial: geo.NewSpatialIndex(idx), importedAt: &now}
	s.mu.Lock()
	s.current = next
	s.mu.Unlock()

	s.log.Infow("postal codes replaced", "postalCodes", idx.Len())
	return nil
}

func (s *service) Index() geo.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.index
}

// Nearby lists the postal codes within radiusKm of zip, closest first.
func (s *service) Nearby(zip string, radiusKm float64) ([]geo.Nearby, error) {
	s.mu.RLock()
	spatial := s.current.spatial
	s.mu.RUnlock()

	found, ok := spatial.Within(zip, radiusKm)
	if !ok {
		return nil, ErrUnknownPostalCode
	}
	return found, nil
}

func (s *service) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{PostalCodes: s.current.index.Len(), ImportedAt: s.current.importedAt}
}
