package billing

import (
	"context"

	"github.com/clinicdesk/clinicdesk/internal/platform/rest"
)

// RestRepository talks to the clinic records service.
type RestRepository struct {
	client *rest.Client
}

func NewRestRepository(client *rest.Client) *RestRepository {
	return &RestRepository{client: client}
}

func (r *RestRepository) List(ctx context.Context) ([]*Bill, error) {
	var out []*Bill
	if err := r.client.Get(ctx, "/bills", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *RestRepository) Create(ctx context.Context, req *CreateRequest) (*Bill, error) {
	var out Bill
	if err := r.client.Post(ctx, "/bills", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
