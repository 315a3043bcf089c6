package billing

import "context"

// Repository is the billing surface of the clinic records service.
type Repository interface {
	List(ctx context.Context) ([]*Bill, error)
	Create(ctx context.Context, req *CreateRequest) (*Bill, error)
}
