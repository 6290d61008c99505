package auth

import "errors"

var (
	ErrLoginPasswordRequired = errors.New("Login and password are required")
	ErrInvalidLogin          = errors.New("Invalid Login")
	ErrIncorrectPassword     = errors.New("Incorrect Password")
	ErrNotAuthenticated      = errors.New("Not authenticated")
	ErrUserInactive          = errors.New("User is deactivated")
)
