package medicine

import (
	"context"
	"fmt"
	"testing"

	"github.com/clinicdesk/clinicdesk/internal/platform/cache"
)

// -- Mock Repository --

type mockRepo struct {
	medicines []*Medicine
	listCalls int
	nextID    int64
	failList  bool
}

func newMockRepo(meds ...*Medicine) *mockRepo {
	return &mockRepo{medicines: meds, nextID: 100}
}

func (m *mockRepo) List(_ context.Context) ([]*Medicine, error) {
	m.listCalls++
	if m.failList {
		return nil, fmt.Errorf("upstream down")
	}
	return m.medicines, nil
}

func (m *mockRepo) Create(_ context.Context, req *CreateRequest) (*Medicine, error) {
	m.nextID++
	med := &Medicine{ID: m.nextID, Name: req.Name, PricePerUnit: req.PricePerUnit, Stock: req.Stock}
	m.medicines = append(m.medicines, med)
	return med, nil
}

func (m *mockRepo) Update(_ context.Context, id int64, req *UpdateRequest) (*Medicine, error) {
	for _, med := range m.medicines {
		if med.ID == id {
			if req.Name != nil {
				med.Name = *req.Name
			}
			if req.PricePerUnit != nil {
				med.PricePerUnit = *req.PricePerUnit
			}
			if req.Stock != nil {
				med.Stock = *req.Stock
			}
			return med, nil
		}
	}
	return nil, fmt.Errorf("medicine %d not found", id)
}

func (m *mockRepo) Delete(_ context.Context, id int64) error {
	for i, med := range m.medicines {
		if med.ID == id {
			m.medicines = append(m.medicines[:i], m.medicines[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("medicine %d not found", id)
}

func TestService_ListUsesSnapshot(t *testing.T) {
	repo := newMockRepo(&Medicine{ID: 1, Name: "Paracetamol", PricePerUnit: 2.50, Stock: 40})
	svc := NewService(repo, cache.NewRegistry())

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		meds, err := svc.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(meds) != 1 {
			t.Fatalf("expected 1 medicine, got %d", len(meds))
		}
	}

	if repo.listCalls != 1 {
		t.Errorf("expected one upstream fetch for repeated reads, got %d", repo.listCalls)
	}
}

func TestService_CreateInvalidatesSnapshot(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, cache.NewRegistry())
	ctx := context.Background()

	if _, err := svc.List(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Create(ctx, &CreateRequest{Name: "Ibuprofen", PricePerUnit: 5, Stock: 10}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	meds, err := svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(meds) != 1 || meds[0].Name != "Ibuprofen" {
		t.Errorf("expected refreshed snapshot with new medicine, got %+v", meds)
	}
	if repo.listCalls != 2 {
		t.Errorf("expected exactly one refetch after create, got %d list calls", repo.listCalls)
	}
}

func TestService_CreateRejectsBadInput(t *testing.T) {
	svc := NewService(newMockRepo(), cache.NewRegistry())
	ctx := context.Background()

	if _, err := svc.Create(ctx, &CreateRequest{Name: ""}); err == nil {
		t.Error("expected empty name to be rejected")
	}
	if _, err := svc.Create(ctx, &CreateRequest{Name: "X", PricePerUnit: -1}); err == nil {
		t.Error("expected negative price to be rejected")
	}
}

func TestService_Catalog(t *testing.T) {
	repo := newMockRepo(
		&Medicine{ID: 1, Name: "Paracetamol", PricePerUnit: 2.50},
		&Medicine{ID: 2, Name: "Ibuprofen", PricePerUnit: 5.00},
	)
	svc := NewService(repo, cache.NewRegistry())

	catalog, err := svc.Catalog(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(catalog) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(catalog))
	}
	if catalog[1].Name != "Paracetamol" || catalog[2].Name != "Ibuprofen" {
		t.Errorf("catalog not keyed by id: %+v", catalog)
	}
}

func TestService_DeleteInvalidatesSnapshot(t *testing.T) {
	repo := newMockRepo(&Medicine{ID: 1, Name: "Paracetamol"})
	svc := NewService(repo, cache.NewRegistry())
	ctx := context.Background()

	if _, err := svc.List(ctx); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, 1); err != nil {
		t.Fatal(err)
	}

	meds, err := svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(meds) != 0 {
		t.Errorf("expected empty snapshot after delete, got %+v", meds)
	}
}
