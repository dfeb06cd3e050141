package influxline

import "errors"

// Sentinel errors for client operations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, influxline.ErrWriteFailed) {
//	    // Handle failed write
//	}
var (
	// ErrInvalidConfig indicates a configuration value or argument is invalid.
	ErrInvalidConfig = errors.New("influxline: invalid configuration")

	// ErrConnectionFailed indicates the initial connection attempt failed.
	ErrConnectionFailed = errors.New("influxline: connection failed")

	// ErrWriteFailed indicates a write operation failed.
	// Batched writes surface this on the goroutine that triggered the flush.
	ErrWriteFailed = errors.New("influxline: write failed")

	// ErrQueryFailed indicates a query operation failed.
	ErrQueryFailed = errors.New("influxline: query failed")
)
