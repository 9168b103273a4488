package policy

import (
	"time"

	"github.com/geoattend/attendance-backend-go/internal/pkg/validator"
)

// CreatePolicyRequest creates a new policy (admin only)
type CreatePolicyRequest struct {
	CreatedBy string `json:"-"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Category  string `json:"category"`
}

func (r *CreatePolicyRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Title) {
		errs = append(errs, validator.ValidationError{
			Field:   "title",
			Message: "title is required",
		})
	} else if len(r.Title) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "title",
			Message: "title must not exceed 255 characters",
		})
	}

	if validator.IsEmpty(r.Content) {
		errs = append(errs, validator.ValidationError{
			Field:   "content",
			Message: "content is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UpdatePolicyRequest updates an existing policy (admin only)
type UpdatePolicyRequest struct {
	ID       string  `json:"-"`
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	Category *string `json:"category,omitempty"`
}

func (r *UpdatePolicyRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	} else if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id must be a valid UUID",
		})
	}

	if r.Title != nil {
		if validator.IsEmpty(*r.Title) {
			errs = append(errs, validator.ValidationError{
				Field:   "title",
				Message: "title must not be empty",
			})
		} else if len(*r.Title) > 255 {
			errs = append(errs, validator.ValidationError{
				Field:   "title",
				Message: "title must not exceed 255 characters",
			})
		}
	}

	if r.Content != nil && validator.IsEmpty(*r.Content) {
		errs = append(errs, validator.ValidationError{
			Field:   "content",
			Message: "content must not be empty",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// PolicyResponse represents a policy in API responses
type PolicyResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Category  string `json:"category,omitempty"`
	CreatedBy string `json:"created_by"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ToResponse converts a Policy to its API representation
func (p *Policy) ToResponse() PolicyResponse {
	return PolicyResponse{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Category:  p.Category,
		CreatedBy: p.CreatedBy,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
}
