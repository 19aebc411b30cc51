package stats

import (
	"fmt"
	"strconv"
)

// assertRecord narrows an untyped record to the type a column was
// constructed for.
func assertRecord[R any](rec Record) (R, error) {
	r, ok := rec.(R)
	if !ok {
		var want R
		return want, fmt.Errorf("%w: got %T, want %T", ErrRecordType, rec, want)
	}
	return r, nil
}

// nameColumn is a group-key column: its state is the key value itself,
// carried through unchanged and never accumulated.
type nameColumn[R any] struct {
	name string
	get  func(R) string
}

// NewNameColumn creates a group-key column extracting an identifying
// value off each record (for example an author display name).
//
// Parameters:
//   - name: Column title
//   - get: Key extractor, applied to every record of every pass
//
// The returned column is only meaningful as a group-key column.
func NewNameColumn[R any](name string, get func(R) string) Column {
	return &nameColumn[R]{name: name, get: get}
}

func (c *nameColumn[R]) Name() string { return c.name }

func (c *nameColumn[R]) Zero() Value { return "" }

func (c *nameColumn[R]) Extract(rec Record) (Value, error) {
	r, err := assertRecord[R](rec)
	if err != nil {
		return nil, err
	}
	return c.get(r), nil
}

func (c *nameColumn[R]) Accumulate(_, raw Value) Value { return raw }

func (c *nameColumn[R]) Less(a, b Value) bool { return a.(string) < b.(string) }

func (c *nameColumn[R]) Format(state Value) string { return state.(string) }

func (c *nameColumn[R]) IsZero(state Value) bool { return state.(string) == "" }

// countColumn counts records matching a predicate.
type countColumn[R any] struct {
	name string
	pred func(R) bool
}

// NewCountColumn creates a column counting the records for which the
// predicate holds. The accumulator is integer addition starting from 0.
//
// Parameters:
//   - name: Column title
//   - pred: Predicate evaluated against each record
func NewCountColumn[R any](name string, pred func(R) bool) Column {
	return &countColumn[R]{name: name, pred: pred}
}

func (c *countColumn[R]) Name() string { return c.name }

func (c *countColumn[R]) Zero() Value { return 0 }

func (c *countColumn[R]) Extract(rec Record) (Value, error) {
	r, err := assertRecord[R](rec)
	if err != nil {
		return nil, err
	}
	if c.pred(r) {
		return 1, nil
	}
	return 0, nil
}

func (c *countColumn[R]) Accumulate(state, raw Value) Value {
	return state.(int) + raw.(int)
}

func (c *countColumn[R]) Less(a, b Value) bool { return a.(int) < b.(int) }

func (c *countColumn[R]) Format(state Value) string {
	return strconv.Itoa(state.(int))
}

func (c *countColumn[R]) IsZero(state Value) bool { return state.(int) == 0 }

// distinctColumn counts distinct identifying values per group.
type distinctColumn[R any] struct {
	name  string
	ident func(R) string
}

// NewDistinctCountColumn creates a column counting unique identifying
// values contributed to a group. The accumulator is a set, so the same
// identifier contributed multiple times counts once. An empty string
// from ident means the record contributes nothing.
//
// Parameters:
//   - name: Column title
//   - ident: Identifier extractor; "" is the no-contribution sentinel
func NewDistinctCountColumn[R any](name string, ident func(R) string) Column {
	return &distinctColumn[R]{name: name, ident: ident}
}

func (c *distinctColumn[R]) Name() string { return c.name }

func (c *distinctColumn[R]) Zero() Value { return make(map[string]struct{}) }

func (c *distinctColumn[R]) Extract(rec Record) (Value, error) {
	r, err := assertRecord[R](rec)
	if err != nil {
		return nil, err
	}
	return c.ident(r), nil
}

func (c *distinctColumn[R]) Accumulate(state, raw Value) Value {
	set := state.(map[string]struct{})
	if id := raw.(string); id != "" {
		set[id] = struct{}{}
	}
	return set
}

func (c *distinctColumn[R]) Less(a, b Value) bool {
	return len(a.(map[string]struct{})) < len(b.(map[string]struct{}))
}

func (c *distinctColumn[R]) Format(state Value) string {
	return strconv.Itoa(len(state.(map[string]struct{})))
}

func (c *distinctColumn[R]) IsZero(state Value) bool {
	return len(state.(map[string]struct{})) == 0
}
