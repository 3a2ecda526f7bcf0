package ai

import "errors"

var (
	// ErrMissingCredential is returned when a provider's credential is not configured.
	ErrMissingCredential = errors.New("missing credential")

	// ErrProviderUnavailable is returned when a provider fails to reach its backend or load its model.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrEmptyResponse is returned when a provider returns no usable vectors.
	ErrEmptyResponse = errors.New("empty response")
)

// IsProviderError reports whether err is one of the declared provider failures.
func IsProviderError(err error) bool {
	return errors.Is(err, ErrMissingCredential) ||
		errors.Is(err, ErrProviderUnavailable) ||
		errors.Is(err, ErrEmptyResponse)
}
