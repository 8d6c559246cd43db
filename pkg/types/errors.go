package types

import "errors"

// Engine lifecycle errors.
var (
	// ErrEngineClosed is returned by any repository operation issued before
	// Open completes or after Close.
	ErrEngineClosed = errors.New("store engine is closed")

	// ErrAlreadyOpen is returned by Open when the store is already open.
	ErrAlreadyOpen = errors.New("store engine is already open")

	// ErrSchemaNewer is returned when a snapshot was written by a newer
	// schema version than this build supports.
	ErrSchemaNewer = errors.New("snapshot schema is newer than supported")
)

// Data errors.
var (
	ErrNotFound          = errors.New("record not found")
	ErrInvalidID         = errors.New("invalid id")
	ErrInvalidName       = errors.New("name must not be empty")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidPlan       = errors.New("invalid subscription plan")
)

// Auth errors. ErrInvalidCredentials deliberately covers both "user not
// found" and "wrong password" so callers cannot be used as an account
// enumeration oracle.
var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoSession          = errors.New("no active session")
)
