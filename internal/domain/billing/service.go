package billing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/medicine"
	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
	"github.com/clinicdesk/clinicdesk/internal/platform/cache"
)

// CacheKey is the committed-bill list's slot in the snapshot registry.
const CacheKey = "bills"

var ErrDraftNotFound = errors.New("bill draft not found")

// CatalogSource supplies the medicine price catalog for totals and
// validation. Satisfied by the medicine service.
type CatalogSource interface {
	Catalog(ctx context.Context) (map[int64]*medicine.Medicine, error)
}

// RosterSource resolves a selected patient id at submission time.
// Satisfied by the patient service.
type RosterSource interface {
	Find(ctx context.Context, id string) (*patient.Patient, error)
}

type draftSession struct {
	draft     *Draft
	touchedAt time.Time
}

// Service owns the open bill drafts and the committed-bill snapshot.
type Service struct {
	repo    Repository
	cache   *cache.Registry
	catalog CatalogSource
	roster  RosterSource

	mu     sync.Mutex
	drafts map[uuid.UUID]*draftSession
	ttl    time.Duration
}

func NewService(repo Repository, reg *cache.Registry, catalog CatalogSource, roster RosterSource, ttl time.Duration) *Service {
	s := &Service{
		repo:    repo,
		cache:   reg,
		catalog: catalog,
		roster:  roster,
		drafts:  make(map[uuid.UUID]*draftSession),
		ttl:     ttl,
	}
	reg.Register(CacheKey, func(ctx context.Context) (any, error) {
		return repo.List(ctx)
	})
	return s
}

// Bills returns the cached committed-bill list.
func (s *Service) Bills(ctx context.Context) ([]*Bill, error) {
	v, err := s.cache.Get(ctx, CacheKey)
	if err != nil {
		return nil, err
	}
	return v.([]*Bill), nil
}

// OpenDraft starts an empty bill draft and returns its session id.
func (s *Service) OpenDraft() uuid.UUID {
	id := uuid.New()
	s.mu.Lock()
	s.purgeExpiredLocked()
	s.drafts[id] = &draftSession{draft: NewDraft(), touchedAt: time.Now()}
	s.mu.Unlock()
	return id
}

// Draft returns the live draft for a session id.
func (s *Service) Draft(id uuid.UUID) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeExpiredLocked()
	sess, ok := s.drafts[id]
	if !ok {
		return nil, ErrDraftNotFound
	}
	sess.touchedAt = time.Now()
	return sess.draft, nil
}

// Total prices a draft against the current catalog.
func (s *Service) Total(ctx context.Context, id uuid.UUID) (float64, error) {
	d, err := s.Draft(id)
	if err != nil {
		return 0, err
	}
	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return 0, err
	}
	return d.ComputeTotal(catalog), nil
}

// Submit validates the draft, resolves the selected patient, and sends the
// bill to the records service. The draft survives any failure with its line
// items intact; only an acknowledged bill tears it down.
func (s *Service) Submit(ctx context.Context, id uuid.UUID) (*Bill, error) {
	d, err := s.Draft(id)
	if err != nil {
		return nil, err
	}

	// Lock out mutations before validating, so the payload that goes
	// upstream is exactly the draft that passed validation.
	if err := d.beginSubmit(); err != nil {
		return nil, err
	}

	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		d.finishSubmit(false)
		return nil, err
	}
	if verr := d.Validate(catalog); verr != nil {
		d.finishSubmit(false)
		return nil, verr
	}

	p, err := s.roster.Find(ctx, d.PatientID())
	if err != nil {
		d.finishSubmit(false)
		if errors.Is(err, patient.ErrPatientNotFound) {
			return nil, &ValidationError{Kind: PatientNotFound, Position: -1}
		}
		return nil, err
	}
	req := d.buildRequest(p.DisplayName(), p.Age)

	bill, err := s.repo.Create(ctx, req)
	if err != nil {
		d.finishSubmit(false)
		return nil, err
	}
	d.finishSubmit(true)

	s.mu.Lock()
	delete(s.drafts, id)
	s.mu.Unlock()
	s.cache.Invalidate(CacheKey)
	return bill, nil
}

// CloseDraft discards a draft without submitting.
func (s *Service) CloseDraft(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drafts[id]; !ok {
		return ErrDraftNotFound
	}
	delete(s.drafts, id)
	return nil
}

func (s *Service) purgeExpiredLocked() {
	if s.ttl <= 0 {
		return
	}
	cutoff := time.Now().Add(-s.ttl)
	for id, sess := range s.drafts {
		if sess.touchedAt.Before(cutoff) {
			delete(s.drafts, id)
		}
	}
}
