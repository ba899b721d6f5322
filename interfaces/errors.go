package interfaces

import "errors"

// Registry errors. Implementations wrap these with context; callers test them with errors.Is.
var (
	// ErrNotAuthorized is returned when the caller is not the administrator.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrAlreadyExists is returned when a certificate ID has already been issued.
	ErrAlreadyExists = errors.New("certificate already exists")

	// ErrNotFound is returned when a certificate has no current owner or record.
	ErrNotFound = errors.New("certificate not found")

	// ErrBindingFailed is returned when the account factory did not report success.
	ErrBindingFailed = errors.New("account binding failed")
)

// Storage errors.
var (
	// ErrRecordNotFound is returned by metadata stores for missing keys.
	ErrRecordNotFound = errors.New("record not found")

	// ErrInvalidLocationURI is returned when a store location URI is malformed.
	ErrInvalidLocationURI = errors.New("invalid location URI")

	// ErrStoreUnavailable is returned when a write cannot reach every replica.
	ErrStoreUnavailable = errors.New("store unavailable")
)
