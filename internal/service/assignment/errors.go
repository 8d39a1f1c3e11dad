package assignment

import "errors"

// Sentinel errors for the assignment resolver.
var (
	ErrProfileNotFound   = errors.New("profile not found")
	ErrSignatureNotFound = errors.New("signature not found")
	ErrBannerNotFound    = errors.New("banner not found")
)
