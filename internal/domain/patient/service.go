package patient

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/platform/cache"
)

// CacheKey is the roster's slot in the snapshot registry.
const CacheKey = "patients"

var (
	ErrSessionNotFound = errors.New("editor session not found")
	ErrPatientNotFound = errors.New("patient not found")
	ErrSubmitInFlight  = errors.New("editor submission already in progress")
)

type editorSession struct {
	mu         sync.Mutex
	editor     *Editor
	submitting bool
	touchedAt  time.Time
}

// Service owns the patient roster snapshot and the open editor sessions.
type Service struct {
	repo  Repository
	cache *cache.Registry

	mu       sync.Mutex
	sessions map[uuid.UUID]*editorSession
	ttl      time.Duration
}

func NewService(repo Repository, reg *cache.Registry, ttl time.Duration) *Service {
	s := &Service{
		repo:     repo,
		cache:    reg,
		sessions: make(map[uuid.UUID]*editorSession),
		ttl:      ttl,
	}
	reg.Register(CacheKey, func(ctx context.Context) (any, error) {
		return repo.List(ctx)
	})
	return s
}

// Roster returns the cached patient list, fetching from the records service
// only when the snapshot is missing or has been invalidated.
func (s *Service) Roster(ctx context.Context) ([]*Patient, error) {
	v, err := s.cache.Get(ctx, CacheKey)
	if err != nil {
		return nil, err
	}
	return v.([]*Patient), nil
}

// Find returns the roster entry with the given id, or ErrPatientNotFound.
func (s *Service) Find(ctx context.Context, id string) (*Patient, error) {
	roster, err := s.Roster(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range roster {
		if p.PatientID == id {
			return p, nil
		}
	}
	return nil, ErrPatientNotFound
}

// Delete removes a patient from the records service and marks the roster
// snapshot stale.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(CacheKey)
	return nil
}

// OpenEditor starts an editor session. An empty patientID opens a blank
// registration editor; otherwise the form is seeded from the roster entry.
func (s *Service) OpenEditor(ctx context.Context, patientID string) (uuid.UUID, *Editor, error) {
	var ed *Editor
	if patientID == "" {
		ed = NewEditor()
	} else {
		p, err := s.Find(ctx, patientID)
		if err != nil {
			return uuid.Nil, nil, err
		}
		ed = NewEditorFor(p)
	}

	id := uuid.New()
	s.mu.Lock()
	s.purgeExpiredLocked()
	s.sessions[id] = &editorSession{editor: ed, touchedAt: time.Now()}
	s.mu.Unlock()
	return id, ed, nil
}

func (s *Service) session(id uuid.UUID) (*editorSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeExpiredLocked()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.touchedAt = time.Now()
	return sess, nil
}

// Editor returns a snapshot of the session's current form state.
func (s *Service) Editor(id uuid.UUID) (Mode, string, Form, error) {
	sess, err := s.session(id)
	if err != nil {
		return "", "", Form{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.editor.Mode(), sess.editor.PatientID(), sess.editor.Form(), nil
}

// SetForm replaces the session's working copy.
func (s *Service) SetForm(id uuid.UUID, f Form) error {
	sess, err := s.session(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.submitting {
		return ErrSubmitInFlight
	}
	sess.editor.SetForm(f)
	return nil
}

// ResetForm blanks the session's form and drops it back to create mode.
func (s *Service) ResetForm(id uuid.UUID) error {
	sess, err := s.session(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.submitting {
		return ErrSubmitInFlight
	}
	sess.editor.Reset()
	return nil
}

// Submit validates the form, builds the create or update payload according
// to the editor's mode, and sends it to the records service. On success the
// session is closed and the roster snapshot invalidated; on failure the
// session stays open with the form intact so the user can correct and retry.
func (s *Service) Submit(ctx context.Context, id uuid.UUID) (*Patient, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.submitting {
		sess.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if verr := sess.editor.Validate(); verr != nil {
		sess.mu.Unlock()
		return nil, verr
	}
	mode := sess.editor.Mode()
	patientID := sess.editor.PatientID()
	var createReq *CreateRequest
	var updateReq *UpdateRequest
	if mode == ModeCreate {
		createReq = sess.editor.BuildCreateRequest()
	} else {
		updateReq = sess.editor.BuildUpdateRequest()
	}
	sess.submitting = true
	sess.mu.Unlock()

	var saved *Patient
	if mode == ModeCreate {
		saved, err = s.repo.Create(ctx, createReq)
	} else {
		saved, err = s.repo.Update(ctx, patientID, updateReq)
	}

	sess.mu.Lock()
	sess.submitting = false
	sess.mu.Unlock()

	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	s.cache.Invalidate(CacheKey)
	return saved, nil
}

// CloseEditor discards a session without submitting.
func (s *Service) CloseEditor(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// purgeExpiredLocked drops sessions idle past the TTL. Called with s.mu held
// on every store access, so abandoned dialogs are reaped lazily instead of
// by a background goroutine.
func (s *Service) purgeExpiredLocked() {
	if s.ttl <= 0 {
		return
	}
	cutoff := time.Now().Add(-s.ttl)
	for id, sess := range s.sessions {
		if sess.touchedAt.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
