package inference

import (
	"errors"
	"fmt"

	"panelsmith/pkg/provider"
	"panelsmith/pkg/utils"
)

var (
	// ErrMissingCredential is returned when an adapter is invoked for a
	// provider without a configured key.
	ErrMissingCredential = errors.New("provider credential is not configured")
	// ErrProviderRequestFailed matches every RequestError.
	ErrProviderRequestFailed = errors.New("provider request failed")
	ErrEmptyResponse         = errors.New("empty completion content")
	ErrSafetyBlocked         = errors.New("generation blocked by provider safety policy")
	ErrNoImageReturned       = errors.New("provider returned no image data")
)

// RequestError is a transport failure or non-2xx reply from a provider.
// StatusCode is zero when the request never got a response.
type RequestError struct {
	Provider   provider.ID
	StatusCode int
	Body       string
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed with status %d: %s", e.Provider, e.StatusCode, utils.LimitStr(e.Body, 200))
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *RequestError) Is(target error) bool { return target == ErrProviderRequestFailed }

func (e *RequestError) Unwrap() error { return e.Err }

func missingCredential(id provider.ID) error {
	return fmt.Errorf("%s: %w", id, ErrMissingCredential)
}
