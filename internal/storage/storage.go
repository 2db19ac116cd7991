package storage

import "errors"

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
)

// Absence and foreign ownership are collapsed into the same not-found error
// on purpose: callers must not learn whether a resource they don't own exists.
var (
	ErrAlbumNotFound = errors.New("album not found")
	ErrMediaNotFound = errors.New("media not found")
)

var (
	ErrObjectNotFound = errors.New("object not found in storage")
)

// Gallery access outcomes. Expiry beats the PIN gate: an expired album
// reports expired even to a visitor holding the right PIN.
var (
	ErrAlbumExpired      = errors.New("album expired")
	ErrPinRequired       = errors.New("pin required")
	ErrInvalidPin        = errors.New("invalid pin")
	ErrDownloadsDisabled = errors.New("downloads disabled")
)
