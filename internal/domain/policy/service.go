package policy

import (
	"context"
)

type Service interface {
	Create(ctx context.Context, req CreatePolicyRequest) (PolicyResponse, error)
	GetByID(ctx context.Context, id string) (PolicyResponse, error)
	List(ctx context.Context) ([]PolicyResponse, error)
	Update(ctx context.Context, req UpdatePolicyRequest) (PolicyResponse, error)
	Delete(ctx context.Context, id string) error
}
