package stats

import "errors"

// Common errors returned by the stats package.
var (
	// ErrNoGroupColumns is returned when an aggregator is created
	// without any group-key columns.
	ErrNoGroupColumns = errors.New("at least one group column is required")

	// ErrDuplicateColumn is returned when a column name collides with
	// an already registered column.
	ErrDuplicateColumn = errors.New("duplicate column name")

	// ErrUnknownColumn is returned when a sort key does not match any
	// registered column name.
	ErrUnknownColumn = errors.New("unknown column name")

	// ErrRecordType is returned when a record's dynamic type does not
	// match the type a column was constructed for.
	ErrRecordType = errors.New("record type mismatch")
)
