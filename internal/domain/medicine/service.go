package medicine

import (
	"context"
	"fmt"

	"github.com/clinicdesk/clinicdesk/internal/platform/cache"
)

// CacheKey is the snapshot registry key for the medicine catalog.
const CacheKey = "medicines"

type Service struct {
	repo  Repository
	cache *cache.Registry
}

// NewService wires the catalog loader into the snapshot registry.
func NewService(repo Repository, reg *cache.Registry) *Service {
	s := &Service{repo: repo, cache: reg}
	reg.Register(CacheKey, func(ctx context.Context) (interface{}, error) {
		return repo.List(ctx)
	})
	return s
}

// List returns the cached catalog snapshot, fetching it if stale.
func (s *Service) List(ctx context.Context) ([]*Medicine, error) {
	v, err := s.cache.Get(ctx, CacheKey)
	if err != nil {
		return nil, err
	}
	return v.([]*Medicine), nil
}

// Catalog returns the cached catalog keyed by medicine id, the shape the
// bill composer's total computation wants.
func (s *Service) Catalog(ctx context.Context) (map[int64]*Medicine, error) {
	meds, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	catalog := make(map[int64]*Medicine, len(meds))
	for _, m := range meds {
		catalog[m.ID] = m
	}
	return catalog, nil
}

func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Medicine, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if req.PricePerUnit < 0 {
		return nil, fmt.Errorf("price_per_unit must not be negative")
	}
	m, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(CacheKey)
	return m, nil
}

func (s *Service) Update(ctx context.Context, id int64, req *UpdateRequest) (*Medicine, error) {
	if req.PricePerUnit != nil && *req.PricePerUnit < 0 {
		return nil, fmt.Errorf("price_per_unit must not be negative")
	}
	m, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(CacheKey)
	return m, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(CacheKey)
	return nil
}
