package billing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/cache"
	"github.com/clinicdesk/clinicdesk/internal/platform/rest"
)

type failingRepo struct {
	*mockRepo
	createErr error
}

func (f *failingRepo) Create(ctx context.Context, req *CreateRequest) (*Bill, error) {
	return nil, f.createErr
}

func submitContext(id uuid.UUID) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id.String())
	return c
}

func TestSubmitDraft_UpstreamMessageSurfaces(t *testing.T) {
	repo := &failingRepo{
		mockRepo:  &mockRepo{},
		createErr: &rest.Error{StatusCode: http.StatusInternalServerError, Message: "database connection lost"},
	}
	svc := NewService(repo, cache.NewRegistry(), stubCatalog{}, stubRoster{}, time.Hour)
	did, _ := composeValidDraft(t, svc)

	h := NewHandler(svc)
	err := h.SubmitDraft(submitContext(did))
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if he.Code != http.StatusBadGateway {
		t.Errorf("expected 502 for upstream failure, got %d", he.Code)
	}
	if msg, _ := he.Message.(string); !strings.Contains(msg, "database connection lost") {
		t.Errorf("upstream message should surface to the user, got %v", he.Message)
	}
}

func TestSubmitDraft_ValidationMaps422(t *testing.T) {
	svc := newTestService(&mockRepo{})
	did := svc.OpenDraft()

	h := NewHandler(svc)
	err := h.SubmitDraft(submitContext(did))
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if he.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for validation failure, got %d", he.Code)
	}
}

func TestSubmitDraft_VanishedPatientMaps409(t *testing.T) {
	svc := newTestService(&mockRepo{})
	did := svc.OpenDraft()
	d, err := svc.Draft(did)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.SelectPatient("p-gone"); err != nil {
		t.Fatal(err)
	}
	if err := d.AddItem(); err != nil {
		t.Fatal(err)
	}
	if err := d.UpdateItem(0, ItemPatch{MedicineID: int64Ptr(1)}); err != nil {
		t.Fatal(err)
	}

	h := NewHandler(svc)
	herr := h.SubmitDraft(submitContext(did))
	he, ok := herr.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", herr)
	}
	if he.Code != http.StatusConflict {
		t.Errorf("expected 409 for vanished patient, got %d", he.Code)
	}
}

func TestGetDraft_UnknownSession(t *testing.T) {
	svc := newTestService(&mockRepo{})
	h := NewHandler(svc)

	err := h.GetDraft(submitContext(uuid.New()))
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if he.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown session, got %d", he.Code)
	}

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")
	err = h.GetDraft(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed session id, got %v", err)
	}
}

func TestRemoveItem_OutOfRangeMaps400(t *testing.T) {
	svc := newTestService(&mockRepo{})
	did := svc.OpenDraft()

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id", "pos")
	c.SetParamValues(did.String(), "7")

	h := NewHandler(svc)
	err := h.RemoveItem(c)
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if he.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for out-of-range position, got %d", he.Code)
	}
}
