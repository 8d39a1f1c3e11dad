package tracking

import "errors"

// Sentinel errors for the tracking subsystem.
var (
	ErrBannerNotFound  = errors.New("banner not found")
	ErrSessionNotFound = errors.New("tracking session not found")
	ErrNoRedirect      = errors.New("no redirect target")
)
