package service

import "errors"

// Client-facing failures of the quota, file and share subsystems. All
// map to 4xx responses and are matched with errors.Is at the API
// boundary. Transient store failures are returned as-is and must never
// be collapsed into ErrNotFound.
var (
	ErrQuotaExceeded        = errors.New("quota exceeded")
	ErrNotOwner             = errors.New("not the file owner")
	ErrNotAuthorized        = errors.New("not authorized")
	ErrInvalidExpiry        = errors.New("expiry must be in the future")
	ErrNotFound             = errors.New("not found")
	ErrShareExpired         = errors.New("share expired")
	ErrDownloadLimitReached = errors.New("download limit reached")
	ErrWrongPassword        = errors.New("wrong password")
	ErrShareDisabled        = errors.New("share disabled")
)
