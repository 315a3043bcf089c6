package patient

import (
	"context"
	"fmt"

	"github.com/clinicdesk/clinicdesk/internal/platform/rest"
)

// RestRepository talks to the clinic records service. Note the singular
// /patient path on mutations; the upstream API is asymmetric that way.
type RestRepository struct {
	client *rest.Client
}

func NewRestRepository(client *rest.Client) *RestRepository {
	return &RestRepository{client: client}
}

func (r *RestRepository) List(ctx context.Context) ([]*Patient, error) {
	var out []*Patient
	if err := r.client.Get(ctx, "/patients", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *RestRepository) Create(ctx context.Context, req *CreateRequest) (*Patient, error) {
	var out Patient
	if err := r.client.Post(ctx, "/patient", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *RestRepository) Update(ctx context.Context, id string, req *UpdateRequest) (*Patient, error) {
	var out Patient
	if err := r.client.Put(ctx, fmt.Sprintf("/patient/%s", id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *RestRepository) Delete(ctx context.Context, id string) error {
	return r.client.Delete(ctx, fmt.Sprintf("/patient/%s", id))
}
