package policy

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, p Policy) (Policy, error)
	GetByID(ctx context.Context, id string) (Policy, error)
	List(ctx context.Context) ([]Policy, error)
	Update(ctx context.Context, req UpdatePolicyRequest) (Policy, error)
	Delete(ctx context.Context, id string) error
}
