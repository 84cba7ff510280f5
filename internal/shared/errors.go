package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Collection and track errors
	ErrTrackNotFound     = fmt.Errorf("track not found")
	ErrCollectionExists  = fmt.Errorf("collection already exists")
	ErrCollectionInvalid = fmt.Errorf("not a valid collection")
	ErrNoCollection      = fmt.Errorf("no active collection")

	// Discovery provider errors
	ErrProviderRequest     = fmt.Errorf("provider request failed")
	ErrProviderUnavailable = fmt.Errorf("provider unavailable")
	ErrNoMatch             = fmt.Errorf("no match found")

	// Import errors
	ErrImportSource = fmt.Errorf("invalid import source")

	// Session errors
	ErrSessionClosed = fmt.Errorf("session closed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
