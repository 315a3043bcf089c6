package patient

import "context"

// Repository is the patient surface of the clinic records service.
type Repository interface {
	List(ctx context.Context) ([]*Patient, error)
	Create(ctx context.Context, req *CreateRequest) (*Patient, error)
	Update(ctx context.Context, id string, req *UpdateRequest) (*Patient, error)
	Delete(ctx context.Context, id string) error
}
