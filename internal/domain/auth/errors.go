package auth

import "errors"

var (
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrEmployeeIDRequired    = errors.New("employee ID not found in token")
	ErrManagerAccessRequired = errors.New("manager access required")
)
