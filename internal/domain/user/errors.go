package user

import "errors"

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrUserEmailExists        = errors.New("email already registered")
	ErrInvalidEmailFormat     = errors.New("invalid email format")
	ErrInvalidPasswordLength  = errors.New("password must be at least 6 characters")
	ErrInvalidRole            = errors.New("invalid role")
	ErrAccountBlocked         = errors.New("account is blocked")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
	ErrCannotDemoteSelf       = errors.New("cannot change your own role")
	ErrCannotBlockSelf        = errors.New("cannot block your own account")
	ErrCannotDeleteSelf       = errors.New("cannot delete your own account")
)
