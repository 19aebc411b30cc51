package stats

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Statistics groups records by a composite key and accumulates one
// state per registered column for every group row.
//
// Statistics has two logical phases: any number of Process calls,
// followed by Render. It is not safe for concurrent use; callers
// processing batches in parallel must merge separately built
// aggregators or serialize access externally.
type Statistics struct {
	groupCols []Column
	cols      []Column
	names     map[string]struct{}
	groups    map[string]*group
}

// group is one report row: the group-key values plus one accumulator
// state per accumulated column, in registration order.
type group struct {
	key    []Value
	states []Value
}

// New creates an aggregator grouping by the given key columns.
//
// Returns ErrNoGroupColumns when no group columns are given and
// ErrDuplicateColumn when two group columns share a name.
func New(groupCols ...Column) (*Statistics, error) {
	if len(groupCols) == 0 {
		return nil, ErrNoGroupColumns
	}

	names := make(map[string]struct{}, len(groupCols))
	for _, col := range groupCols {
		if _, exists := names[col.Name()]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, col.Name())
		}
		names[col.Name()] = struct{}{}
	}

	return &Statistics{
		groupCols: groupCols,
		names:     names,
		groups:    make(map[string]*group),
	}, nil
}

// Process registers the given columns and accumulates one batch of
// records into them.
//
// Every existing group row is first extended with the new columns'
// zero states, so all rows always carry exactly one slot per column
// ever registered. Rows created later start as a full copy of all zero
// states registered so far, across every pass.
//
// Parameters:
//   - records: Record batch; all records must satisfy the contracts of
//     both the group-key columns and the columns of this pass
//   - cols: Columns accumulated during this pass only
//
// Returns ErrDuplicateColumn if a column name is already registered,
// or the first extraction error encountered. Extraction errors abort
// the pass; the aggregator should not be used afterwards.
func (s *Statistics) Process(records []Record, cols []Column) error {
	start := len(s.cols)
	for _, col := range cols {
		if _, exists := s.names[col.Name()]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateColumn, col.Name())
		}
		s.names[col.Name()] = struct{}{}
		s.cols = append(s.cols, col)
	}

	for _, g := range s.groups {
		for _, col := range cols {
			g.states = append(g.states, col.Zero())
		}
	}

	for _, rec := range records {
		g, err := s.groupFor(rec)
		if err != nil {
			return err
		}
		for i, col := range cols {
			raw, err := col.Extract(rec)
			if err != nil {
				return err
			}
			slot := start + i
			g.states[slot] = col.Accumulate(g.states[slot], raw)
		}
	}

	return nil
}

// groupFor looks up or lazily creates the group row for one record.
func (s *Statistics) groupFor(rec Record) (*group, error) {
	key := make([]Value, len(s.groupCols))
	parts := make([]string, len(s.groupCols))
	for i, col := range s.groupCols {
		value, err := col.Extract(rec)
		if err != nil {
			return nil, err
		}
		key[i] = value
		parts[i] = col.Format(value)
	}

	// Length-prefix each part so composite keys stay distinct even
	// when a value contains another part's text.
	var sb strings.Builder
	for _, p := range parts {
		fmt.Fprintf(&sb, "%d\x00%s", len(p), p)
	}

	mapKey := sb.String()
	g, exists := s.groups[mapKey]
	if !exists {
		states := make([]Value, len(s.cols))
		for i, col := range s.cols {
			states[i] = col.Zero()
		}
		g = &group{key: key, states: states}
		s.groups[mapKey] = g
	}
	return g, nil
}

// findColumn resolves a column name to its index in the full column
// list (group-key columns first, then accumulated columns).
func (s *Statistics) findColumn(name string) (int, Column, error) {
	for i, col := range s.groupCols {
		if col.Name() == name {
			return i, col, nil
		}
	}
	for i, col := range s.cols {
		if col.Name() == name {
			return len(s.groupCols) + i, col, nil
		}
	}
	return 0, nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
}

// cell returns the value at a full-column-list index for one row.
func (s *Statistics) cell(g *group, index int) Value {
	if index < len(s.groupCols) {
		return g.key[index]
	}
	return g.states[index-len(s.groupCols)]
}

// Render writes the accumulated table to w.
//
// Rows whose accumulated states are all zero are suppressed. When
// sortBy names a column, rows are sorted descending by that column's
// sortable projection, with original relative order kept among ties;
// an unknown name returns ErrUnknownColumn. When sortBy is empty, rows
// are sorted ascending by group key so output stays deterministic.
//
// Rendering does not mutate the aggregator; rendering twice produces
// identical output.
func (s *Statistics) Render(w io.Writer, sortBy string) error {
	all := make([]Column, 0, len(s.groupCols)+len(s.cols))
	all = append(all, s.groupCols...)
	all = append(all, s.cols...)

	rows := make([]*group, 0, len(s.groups))
	for _, g := range s.groups {
		active := false
		for i, col := range s.cols {
			if !col.IsZero(g.states[i]) {
				active = true
				break
			}
		}
		if active {
			rows = append(rows, g)
		}
	}

	// Pre-sort by group key so the sort below resolves ties the same
	// way on every call regardless of map iteration order.
	sort.Slice(rows, func(i, j int) bool {
		return s.keyLess(rows[i], rows[j])
	})

	if sortBy != "" {
		index, col, err := s.findColumn(sortBy)
		if err != nil {
			return err
		}
		sort.SliceStable(rows, func(i, j int) bool {
			return col.Less(s.cell(rows[j], index), s.cell(rows[i], index))
		})
	}

	widths := make([]int, len(all))
	for i, col := range all {
		widths[i] = len(col.Name())
		for _, g := range rows {
			if n := len(col.Format(s.cell(g, i))); n > widths[i] {
				widths[i] = n
			}
		}
	}

	titles := make([]string, len(all))
	for i, col := range all {
		titles[i] = col.Name()
	}
	if err := writeRow(w, titles, widths); err != nil {
		return err
	}

	separators := make([]string, len(all))
	for i, width := range widths {
		separators[i] = strings.Repeat("=", width)
	}
	if err := writeRow(w, separators, widths); err != nil {
		return err
	}

	for _, g := range rows {
		cells := make([]string, len(all))
		for i, col := range all {
			cells[i] = col.Format(s.cell(g, i))
		}
		if err := writeRow(w, cells, widths); err != nil {
			return err
		}
	}

	return nil
}

// keyLess orders two rows by their group-key tuples.
func (s *Statistics) keyLess(a, b *group) bool {
	for i, col := range s.groupCols {
		if col.Less(a.key[i], b.key[i]) {
			return true
		}
		if col.Less(b.key[i], a.key[i]) {
			return false
		}
	}
	return false
}

// writeRow writes one table line with each cell left-justified and
// padded to its column width, separated by a single space.
func writeRow(w io.Writer, cells []string, widths []int) error {
	for i, cell := range cells {
		if i > 0 {
			if _, err := fmt.Fprint(w, " "); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%-*s", widths[i], cell); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
