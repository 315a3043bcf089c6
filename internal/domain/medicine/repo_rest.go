package medicine

import (
	"context"
	"fmt"

	"github.com/clinicdesk/clinicdesk/internal/platform/rest"
)

// RestRepository implements Repository against the records API.
type RestRepository struct {
	client *rest.Client
}

func NewRestRepository(client *rest.Client) *RestRepository {
	return &RestRepository{client: client}
}

func (r *RestRepository) List(ctx context.Context) ([]*Medicine, error) {
	var out []*Medicine
	if err := r.client.Get(ctx, "/medicines", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *RestRepository) Create(ctx context.Context, req *CreateRequest) (*Medicine, error) {
	var out Medicine
	if err := r.client.Post(ctx, "/medicines", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *RestRepository) Update(ctx context.Context, id int64, req *UpdateRequest) (*Medicine, error) {
	var out Medicine
	if err := r.client.Patch(ctx, fmt.Sprintf("/medicines/%d", id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *RestRepository) Delete(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, fmt.Sprintf("/medicines/%d", id))
}
