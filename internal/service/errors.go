package service

import "errors"

// Sentinel errors handlers translate to HTTP statuses. Validation and
// duplicate errors map to 400, credential errors to 401, missing or
// not-owned resources to 404.
var (
	ErrInvalidPhoneNumber     = errors.New("invalid phone number format")
	ErrPhoneAlreadyRegistered = errors.New("phone number already registered")
	ErrNameTooShort           = errors.New("name must be at least 2 characters")
	ErrPasswordTooShort       = errors.New("password must be at least 6 characters")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrAdminNotFound          = errors.New("admin not found")
	ErrCustomerNotFound       = errors.New("customer not found")
	ErrCustomerNameRequired   = errors.New("customer name cannot be empty")
	ErrCustomerPhoneExists    = errors.New("customer with this phone number already exists for this admin")
)
