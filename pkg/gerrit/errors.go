package gerrit

import (
	"errors"
	"fmt"
)

// Common errors returned by the gerrit package.
var (
	// ErrMalformedEntry is returned when an export line is not valid
	// JSON.
	ErrMalformedEntry = errors.New("malformed query result entry")

	// ErrUnknownAccount is returned when an account in the export
	// carries neither a username nor an e-mail address.
	ErrUnknownAccount = errors.New("account has no username or email")

	// ErrNoSubmitApproval is returned when a merged change does not
	// carry exactly one submit approval on its last patch set.
	ErrNoSubmitApproval = errors.New("merged change without a single submit approval")
)

func errNoSubmit(c *Change) error {
	return fmt.Errorf("%w: change %d", ErrNoSubmitApproval, c.Number)
}
