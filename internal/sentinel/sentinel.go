package sentinel

import "errors"

// Sentinel dependency errors. Stores and provider adapters return these
// (optionally wrapped) so services can translate them into domain errors
// exactly once.
var (
	ErrNotFound    = errors.New("not found")
	ErrNoSession   = errors.New("no active session")
	ErrExpired     = errors.New("expired")
	ErrInvalidData = errors.New("invalid data")
	ErrUnavailable = errors.New("unavailable")
)
