package shop

import "errors"

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountPending     = errors.New("account pending approval")
	ErrAccountRejected    = errors.New("account rejected")
	ErrInvalidToken       = errors.New("invalid credential token")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrNotFound           = errors.New("not found")
)
