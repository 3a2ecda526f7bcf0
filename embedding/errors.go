package embedding

import "errors"

var (
	// ErrNoProviders is returned when a pipeline has no providers to try.
	ErrNoProviders = errors.New("no embedding providers configured")

	// ErrAllProvidersFailed is returned when every provider in the cascade failed.
	ErrAllProvidersFailed = errors.New("all embedding providers failed")
)
