package auth

import "errors"

var (
	ErrEmailPasswordRequired = errors.New("Email and password are required")
	ErrInvalidEmail          = errors.New("Invalid Email")
	ErrIncorrectPassword     = errors.New("Incorrect Password")
	ErrEmailTaken            = errors.New("Email already registered")
	ErrWeakPassword          = errors.New("Password does not meet requirements")
	ErrInvalidFullname       = errors.New("Invalid fullname")
	ErrNotAuthenticated      = errors.New("Not authenticated")
	ErrPushTokenRequired     = errors.New("Push token is required")
)
