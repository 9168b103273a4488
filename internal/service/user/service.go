package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/geoattend/attendance-backend-go/internal/domain/user"
)

type UserServiceImpl struct {
	repo user.UserRepository
}

func NewUserService(repo user.UserRepository) user.Service {
	return &UserServiceImpl{repo: repo}
}

// List implements user.Service.
func (s *UserServiceImpl) List(ctx context.Context, req user.ListUsersRequest) ([]user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	users, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]user.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, users[i].ToResponse())
	}
	return responses, nil
}

// GetByID implements user.Service.
func (s *UserServiceImpl) GetByID(ctx context.Context, id string) (user.UserResponse, error) {
	found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.UserResponse{}, user.ErrUserNotFound
		}
		return user.UserResponse{}, fmt.Errorf("failed to get user: %w", err)
	}
	return found.ToResponse(), nil
}

// Update implements user.Service.
func (s *UserServiceImpl) Update(ctx context.Context, actorID string, req user.UpdateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	// Admins cannot lock themselves out
	if req.ID == actorID {
		if req.Role != nil && *req.Role != string(user.RoleAdmin) {
			return user.UserResponse{}, user.ErrCannotDemoteSelf
		}
		if req.IsBlocked != nil && *req.IsBlocked {
			return user.UserResponse{}, user.ErrCannotBlockSelf
		}
	}

	updated, err := s.repo.Update(ctx, req)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.UserResponse{}, user.ErrUserNotFound
		}
		return user.UserResponse{}, fmt.Errorf("failed to update user: %w", err)
	}

	return updated.ToResponse(), nil
}

// Delete implements user.Service.
func (s *UserServiceImpl) Delete(ctx context.Context, actorID, id string) error {
	if id == actorID {
		return user.ErrCannotDeleteSelf
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
