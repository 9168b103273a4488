package policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/geoattend/attendance-backend-go/internal/domain/policy"
)

type PolicyServiceImpl struct {
	repo policy.Repository
}

func NewPolicyService(repo policy.Repository) policy.Service {
	return &PolicyServiceImpl{repo: repo}
}

// Create implements policy.Service.
func (s *PolicyServiceImpl) Create(ctx context.Context, req policy.CreatePolicyRequest) (policy.PolicyResponse, error) {
	if err := req.Validate(); err != nil {
		return policy.PolicyResponse{}, err
	}

	created, err := s.repo.Create(ctx, policy.Policy{
		Title:     req.Title,
		Content:   req.Content,
		Category:  req.Category,
		CreatedBy: req.CreatedBy,
	})
	if err != nil {
		return policy.PolicyResponse{}, fmt.Errorf("failed to create policy: %w", err)
	}

	return created.ToResponse(), nil
}

// GetByID implements policy.Service.
func (s *PolicyServiceImpl) GetByID(ctx context.Context, id string) (policy.PolicyResponse, error) {
	found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, policy.ErrPolicyNotFound) {
			return policy.PolicyResponse{}, policy.ErrPolicyNotFound
		}
		return policy.PolicyResponse{}, fmt.Errorf("failed to get policy: %w", err)
	}
	return found.ToResponse(), nil
}

// List implements policy.Service.
func (s *PolicyServiceImpl) List(ctx context.Context) ([]policy.PolicyResponse, error) {
	policies, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}

	responses := make([]policy.PolicyResponse, 0, len(policies))
	for i := range policies {
		responses = append(responses, policies[i].ToResponse())
	}
	return responses, nil
}

// Update implements policy.Service.
func (s *PolicyServiceImpl) Update(ctx context.Context, req policy.UpdatePolicyRequest) (policy.PolicyResponse, error) {
	if err := req.Validate(); err != nil {
		return policy.PolicyResponse{}, err
	}

	updated, err := s.repo.Update(ctx, req)
	if err != nil {
		if errors.Is(err, policy.ErrPolicyNotFound) {
			return policy.PolicyResponse{}, policy.ErrPolicyNotFound
		}
		return policy.PolicyResponse{}, fmt.Errorf("failed to update policy: %w", err)
	}

	return updated.ToResponse(), nil
}

// Delete implements policy.Service.
func (s *PolicyServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, policy.ErrPolicyNotFound) {
			return policy.ErrPolicyNotFound
		}
		return fmt.Errorf("failed to delete policy: %w", err)
	}
	return nil
}
