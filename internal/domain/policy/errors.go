package policy

import "errors"

var (
	ErrPolicyNotFound = errors.New("policy not found")
)
