package report

import "errors"

// ErrUnknownReport is returned when a report identifier does not match
// any built-in report.
var ErrUnknownReport = errors.New("unknown report")
