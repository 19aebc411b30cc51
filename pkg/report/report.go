// Package report declares the built-in statistics reports.
//
// A report is a named, ordered list of (record stream, column set)
// passes executed against one aggregator and rendered as a sorted,
// column-aligned table. New reports are built by composing the stats
// package's column variants with different predicates.
package report

import (
	"fmt"
	"io"

	"github.com/0xfelis/gerrit-stats/pkg/records"
	"github.com/0xfelis/gerrit-stats/pkg/stats"
)

// Report computes and renders one statistics table.
type Report interface {
	// Name is the report's flag-style identifier.
	Name() string

	// Title is the heading printed above the table.
	Title() string

	// Run executes the report's passes over the record set and writes
	// the rendered table to w.
	Run(w io.Writer, set *records.Set) error
}

// All returns the built-in reports in their default print order.
func All() []Report {
	return []Report{
		OpenChanges(),
		OpenActivity(),
		ChangeActivity(),
		Activity(),
	}
}

// ByName resolves a report by its identifier.
func ByName(name string) (Report, error) {
	for _, r := range All() {
		if r.Name() == name {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownReport, name)
}

// authorColumn is the group-key column shared by every report: all
// record types expose the author display name.
func authorColumn() stats.Column {
	return stats.NewNameColumn("Name", func(r records.Authored) string {
		return r.AuthorName()
	})
}

// toRecords widens a typed record slice for the aggregation engine.
func toRecords[T any](in []T) []stats.Record {
	out := make([]stats.Record, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
