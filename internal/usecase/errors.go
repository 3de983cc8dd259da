package usecase

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrReferenceData    = errors.New("reference data unavailable")
	ErrStoreUnavailable = errors.New("document store unavailable")
)
