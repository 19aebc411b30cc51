package fetch

import "errors"

// Common errors returned by the fetch package.
var (
	// ErrNoHost is returned when no Gerrit host is configured.
	ErrNoHost = errors.New("no Gerrit host configured")

	// ErrQueryFailed is returned when the ssh command fails.
	ErrQueryFailed = errors.New("gerrit query failed")
)
