package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput is returned for empty, oversized or wrongly typed caller input
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedExtraction is returned when the provider output does not match the record shape
	ErrMalformedExtraction = errors.New("malformed extraction output")

	// ErrValidationFailed is returned when a product record fails validation
	ErrValidationFailed = errors.New("validation failed")

	// ErrPersistence is returned when the record store fails
	ErrPersistence = errors.New("persistence failure")

	// ErrProvider is returned when the extraction provider answers with a non-success status
	ErrProvider = errors.New("extraction provider error")

	// ErrProductNotFound is returned by stores when no record exists for a URL
	ErrProductNotFound = errors.New("product not found")

	// ErrUserNotFound is returned when no profile exists for an authenticated id
	ErrUserNotFound = errors.New("user not found")

	// ErrAccountSuspended is returned for flagged profiles
	ErrAccountSuspended = errors.New("account suspended")

	// ErrNoScansRemaining is returned when the caller has used up their scans
	ErrNoScansRemaining = errors.New("no scans remaining")

	// ErrDailyLimitExceeded is returned when the caller crossed the daily abuse threshold
	ErrDailyLimitExceeded = errors.New("daily scan limit exceeded")

	// ErrScanTracking is returned when scan usage could not be recorded
	ErrScanTracking = errors.New("failed to track scan usage")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)

// ValidationError carries every problem found in a record, in check order
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return ErrValidationFailed.Error() + ": " + strings.Join(e.Problems, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// ProviderError is a non-success answer from the extraction provider
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", ErrProvider.Error(), e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", ErrProvider.Error(), e.StatusCode, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return ErrProvider
}
