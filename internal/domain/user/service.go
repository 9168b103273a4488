package user

import (
	"context"
)

type Service interface {
	List(ctx context.Context, req ListUsersRequest) ([]UserResponse, error)
	GetByID(ctx context.Context, id string) (UserResponse, error)
	Update(ctx context.Context, actorID string, req UpdateUserRequest) (UserResponse, error)
	Delete(ctx context.Context, actorID, id string) error
}
