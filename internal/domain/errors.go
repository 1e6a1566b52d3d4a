package domain

import "errors"

var (
	// ErrStoreUnavailable is returned when the product store cannot be reached
	ErrStoreUnavailable = errors.New("product store unavailable")

	// ErrProductNotFound is returned when a replace targets an id that does not exist
	ErrProductNotFound = errors.New("product not found in store")

	// ErrDuplicateProduct is returned when a create collides with an existing product name
	ErrDuplicateProduct = errors.New("product name already exists")

	// ErrClassifierFailure is returned when the completion service request fails
	ErrClassifierFailure = errors.New("classifier request failed")

	// ErrFeedFailure is returned when a social feed request fails
	ErrFeedFailure = errors.New("feed request failed")

	// ErrRunInProgress is returned when another pipeline run holds the run lock
	ErrRunInProgress = errors.New("trend run already in progress")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")
)
