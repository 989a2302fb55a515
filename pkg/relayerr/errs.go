package relayerr

import (
	"errors"
)

var (
	ErrValidation            = errors.New("invalid input")
	ErrProtectedSource       = errors.New("source is protected")
	ErrNotFound              = errors.New("content not found")
	ErrAccessDenied          = errors.New("access denied")
	ErrRateLimited           = errors.New("rate limited")
	ErrCapabilityUnavailable = errors.New("capability unavailable")
	ErrFilesystem            = errors.New("filesystem error")
)

type Kind int

const (
	Unclassified Kind = iota
	Validation
	ProtectedSource
	NotFound
	AccessDenied
	RateLimited
	CapabilityUnavailable
	Filesystem
)

var kindNames = map[Kind]string{
	Unclassified:          "unclassified",
	Validation:            "validation",
	ProtectedSource:       "protected_source",
	NotFound:              "not_found",
	AccessDenied:          "access_denied",
	RateLimited:           "rate_limited",
	CapabilityUnavailable: "capability_unavailable",
	Filesystem:            "filesystem",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[Unclassified]
}

// KindOf reports the class of err. Sentinels are checked in declaration
// order, so an error wrapping several of them takes the first match.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return Unclassified
	case errors.Is(err, ErrValidation):
		return Validation
	case errors.Is(err, ErrProtectedSource):
		return ProtectedSource
	case errors.Is(err, ErrNotFound):
		return NotFound
	case errors.Is(err, ErrAccessDenied):
		return AccessDenied
	case errors.Is(err, ErrRateLimited):
		return RateLimited
	case errors.Is(err, ErrCapabilityUnavailable):
		return CapabilityUnavailable
	case errors.Is(err, ErrFilesystem):
		return Filesystem
	}
	return Unclassified
}

// Notify reports whether the requesting user should see a notice for err.
func (k Kind) Notify() bool {
	switch k {
	case Validation, ProtectedSource, AccessDenied, RateLimited, CapabilityUnavailable:
		return true
	}
	return false
}

// Silent reports whether err ends a transfer without any report.
func (k Kind) Silent() bool {
	return k == NotFound
}
