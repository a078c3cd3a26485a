package domain

import "errors"

var (
	// ErrCatalogUnavailable is returned when the product catalog cannot be
	// loaded or is empty. There is no fallback below an empty catalog.
	ErrCatalogUnavailable = errors.New("product catalog unavailable")

	// ErrGeneratorFailure is returned when a text generator call fails
	ErrGeneratorFailure = errors.New("text generator request failed")

	// ErrQuotaExceeded is returned when the remote generation provider
	// reports exhausted credits (HTTP 402)
	ErrQuotaExceeded = errors.New("generation provider quota exceeded")

	// ErrInvalidGeneration is returned when generated text fails the
	// language/shape validation
	ErrInvalidGeneration = errors.New("generated text failed validation")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")
)
