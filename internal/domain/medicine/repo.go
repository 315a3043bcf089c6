package medicine

import "context"

// Repository is the records-service boundary for the medicine catalog.
type Repository interface {
	List(ctx context.Context) ([]*Medicine, error)
	Create(ctx context.Context, req *CreateRequest) (*Medicine, error)
	Update(ctx context.Context, id int64, req *UpdateRequest) (*Medicine, error)
	Delete(ctx context.Context, id int64) error
}
