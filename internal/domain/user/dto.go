package user

import (
	"time"

	"github.com/geoattend/attendance-backend-go/internal/pkg/validator"
)

// UserResponse represents user data in API responses
type UserResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Designation string `json:"designation,omitempty"`
	IsBlocked   bool   `json:"is_blocked"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// ToResponse converts a User entity to its API representation
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        string(u.Role),
		Designation: u.Designation,
		IsBlocked:   u.IsBlocked,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   u.UpdatedAt.Format(time.RFC3339),
	}
}

// UpdateUserRequest represents an admin update of another user's account
type UpdateUserRequest struct {
	ID          string  `json:"-"`
	Name        *string `json:"name,omitempty"`
	Role        *string `json:"role,omitempty"`
	Designation *string `json:"designation,omitempty"`
	IsBlocked   *bool   `json:"is_blocked,omitempty"`
}

func (r *UpdateUserRequest) Validate() error {
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

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not be empty",
		})
	}

	if r.Role != nil {
		validRoles := []string{string(RoleUser), string(RoleAdmin)}
		if !validator.IsInSlice(*r.Role, validRoles) {
			errs = append(errs, validator.ValidationError{
				Field:   "role",
				Message: "role must be one of: user, admin",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ListUsersRequest represents filters for the admin user listing
type ListUsersRequest struct {
	Role    string `json:"role,omitempty"`
	Blocked *bool  `json:"blocked,omitempty"`
	Search  string `json:"search,omitempty"`
}

func (r *ListUsersRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Role != "" && !validator.IsInSlice(r.Role, []string{string(RoleUser), string(RoleAdmin)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of: user, admin",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
