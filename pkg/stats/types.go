// Package stats provides a small grouping and aggregation engine for
// building multi-column text reports from flat record streams.
//
// Records are grouped by a composite key computed by a set of group-key
// columns. Each accumulated column owns its own accumulator algebra
// (integer counts, distinct sets), so different statistics share one
// grouping pass. Columns can be registered incrementally: each Process
// call may introduce new columns and draw from a different record
// stream, and all passes contribute to the same group rows.
//
// Example usage:
//
//	st, err := stats.New(stats.NewNameColumn("Name", func(r Authored) string {
//	    return r.AuthorName()
//	}))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = st.Process(changes, []stats.Column{
//	    stats.NewCountColumn("Created", func(r *Change) bool {
//	        return !r.CreatedOn.IsZero()
//	    }),
//	})
//	err = st.Render(os.Stdout, "Created")
package stats

// Record is a single element of a record stream. Concrete record types
// are asserted inside the typed column constructors; feeding a column a
// record of the wrong dynamic type is a contract violation surfaced as
// an error from Process.
type Record = any

// Value is a raw extracted value or a per-group accumulator state.
// The concrete type is owned by the column that produced it.
type Value = any

// Column is a named extraction and accumulation strategy.
//
// A column computes a raw value from one record, folds raw values into
// a per-group accumulator state, and renders the final state both as a
// sort key and as display text. Accumulation must be order-insensitive
// across records within a group.
type Column interface {
	// Name returns the column title, also used to resolve sort keys.
	Name() string

	// Zero returns the accumulator identity state. It is called once
	// per group row, so mutable states (sets) must be fresh instances.
	Zero() Value

	// Extract computes the raw value one record contributes.
	//
	// Returns an error if the record does not satisfy the column's
	// contract (wrong dynamic type); such errors propagate out of
	// Process rather than being skipped.
	Extract(rec Record) (Value, error)

	// Accumulate folds one raw value into the current state and
	// returns the updated state. Calling it zero or more times
	// starting from Zero must be valid.
	Accumulate(state, raw Value) Value

	// Less reports whether state a orders before state b under the
	// column's sortable projection.
	Less(a, b Value) bool

	// Format renders a final state for display.
	Format(state Value) string

	// IsZero reports whether a state still equals the identity state.
	// Rows whose accumulated states are all zero are suppressed from
	// rendered output.
	IsZero(state Value) bool
}
