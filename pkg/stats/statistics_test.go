package stats

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// authored is the contract shared by the test record types, mirroring
// how real record streams expose a common group key.
type authored interface {
	authorName() string
}

// changeEvent is a change-style test record.
type changeEvent struct {
	author  string
	created bool
}

func (e changeEvent) authorName() string { return e.author }

// voteEvent is a vote-style test record from a second stream.
type voteEvent struct {
	author string
	change string
}

func (e voteEvent) authorName() string { return e.author }

func nameColumnForTest() Column {
	return NewNameColumn("Name", func(r authored) string {
		return r.authorName()
	})
}

func createdColumn() Column {
	return NewCountColumn("Created", func(r changeEvent) bool {
		return r.created
	})
}

func votedColumn() Column {
	return NewDistinctCountColumn("Voted", func(r voteEvent) string {
		return r.change
	})
}

func toRecords[T any](in []T) []Record {
	out := make([]Record, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func TestNew_NoGroupColumns(t *testing.T) {
	t.Parallel()

	_, err := New()
	if !errors.Is(err, ErrNoGroupColumns) {
		t.Fatalf("New() error = %v, want ErrNoGroupColumns", err)
	}
}

func TestNew_DuplicateGroupColumns(t *testing.T) {
	t.Parallel()

	_, err := New(nameColumnForTest(), nameColumnForTest())
	if !errors.Is(err, ErrDuplicateColumn) {
		t.Fatalf("New() error = %v, want ErrDuplicateColumn", err)
	}
}

func TestProcess_DuplicateColumnAcrossPasses(t *testing.T) {
	t.Parallel()

	st, err := New(nameColumnForTest())
	if err != nil {
		t.Fatal(err)
	}

	if err := st.Process(nil, []Column{createdColumn()}); err != nil {
		t.Fatalf("first Process() error = %v", err)
	}
	err = st.Process(nil, []Column{createdColumn()})
	if !errors.Is(err, ErrDuplicateColumn) {
		t.Fatalf("second Process() error = %v, want ErrDuplicateColumn", err)
	}
}

func TestProcess_DuplicateOfGroupColumn(t *testing.T) {
	t.Parallel()

	st, err := New(nameColumnForTest())
	if err != nil {
		t.Fatal(err)
	}

	shadow := NewCountColumn("Name", func(r changeEvent) bool { return true })
	err = st.Process(nil, []Column{shadow})
	if !errors.Is(err, ErrDuplicateColumn) {
		t.Fatalf("Process() error = %v, want ErrDuplicateColumn", err)
	}
}

func TestProcess_RecordTypeMismatch(t *testing.T) {
	t.Parallel()

	st, err := New(nameColumnForTest())
	if err != nil {
		t.Fatal(err)
	}

	// A vote column fed a change record violates the column contract.
	records := toRecords([]changeEvent{{author: "Alice", created: true}})
	err = st.Process(records, []Column{votedColumn()})
	if !errors.Is(err, ErrRecordType) {
		t.Fatalf("Process() error = %v, want ErrRecordType", err)
	}
}

func TestRender_CountAndSuppression(t *testing.T) {
	t.Parallel()

	st, err := New(nameColumnForTest())
	if err != nil {
		t.Fatal(err)
	}

	records := toRecords([]changeEvent{
		{author: "Alice", created: true},
		{author: "Bob", created: false},
		{author: "Alice", created: true},
	})
	if err := st.Process(records, []Column{createdColumn()}); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	var buf bytes.Buffer
	if err := st.Render(&buf, "Created"); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := "Name  Created\n" +
		"===== =======\n" +
		"Alice 2      \n"
	if got := buf.String(); got != want {
		t.Errorf("Render() output:\n%q\nwant:\n%q", got, want)
	}
}

func TestProcess_ExtensionInvariant(t *testing.T) {
	t.Parallel()

	st, err := New(nameColumnForTest())
	if err != nil {
		t.Fatal(err)
	}

	// First pass: only Alice appears.
	changes := toRecords([]changeEvent{{author: "Alice", created: true}})
	if err := st.Process(changes, []Column{createdColumn()}); err != nil {
		t.Fatalf("Process(changes) error = %v", err)
	}

	// Second pass introduces a new column and a new group; existing
	// rows must gain the new column's zero state, and the new row must
	// backfill the earlier column's zero state.
	votes := toRecords([]voteEvent{{author: "Carol", change: "I1"}})
	if err := st.Process(votes, []Column{votedColumn()}); err != nil {
		t.Fatalf("Process(votes) error = %v", err)
	}

	var buf bytes.Buffer
	if err := st.Render(&buf, "Created"); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := "Name  Created Voted\n" +
		"===== ======= =====\n" +
		"Alice 1       0    \n" +
		"Carol 0       1    \n"
	if got := buf.String(); got != want {
		t.Errorf("Render() output:\n%q\nwant:\n%q", got, want)
	}
}

func TestRender_DistinctDedupe(t *testing.T) {
	t.Parallel()

	st, err := New(nameColumnForTest())
	if err != nil {
		t.Fatal(err)
	}

	// Two votes from Alice on the same change count once; the empty
	// identifier contributes nothing for Bob.
	votes := toRecords([]voteEvent{
		{author: "Alice", change: "I1"},
		{author: "Alice", change: "I1"},
		{author: "Alice", change: "I2"},
		{author: "Bob", change: ""},
	})
	if err := st.Process(votes, []Column{votedColumn()}); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	var buf bytes.Buffer
	if err := st.Render(&buf, "Voted"); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "Alice 2") {
		t.Errorf("Render() output %q does not contain deduplicated count for Alice", got)
	}
	if strings.Contains(got, "Bob") {
		t.Errorf("Render() output %q contains suppressed group Bob", got)
	}
}

func TestRender_SortDescending(t *testing.T) {
	t.Parallel()

	st, err := New(nameColumnForTest())
	if err != nil {
		t.Fatal(err)
	}

	votes := toRecords([]voteEvent{
		{author: "Alice", change: "I1"},
		{author: "Bob", change: "I1"},
		{author: "Bob", change: "I2"},
		{author: "Bob", change: "I3"},
		{author: "Carol", change: "I1"},
		{author: "Carol", change: "I2"},
	})
	if err := st.Process(votes, []Column{votedColumn()}); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	var buf bytes.Buffer
	if err := st.Render(&buf, "Voted"); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	wantOrder := []string{"Bob", "Carol", "Alice"}
	if len(lines) != len(wantOrder)+2 {
		t.Fatalf("Render() produced %d lines, want %d", len(lines), len(wantOrder)+2)
	}
	for i, name := range wantOrder {
		if !strings.HasPrefix(lines[i+2], name) {
			t.Errorf("row %d = %q, want prefix %q", i, lines[i+2], name)
		}
	}
}

func TestRender_StableTies(t *testing.T) {
	t.Parallel()

	st, err := New(nameColumnForTest())
	if err != nil {
		t.Fatal(err)
	}

	// Bob and Alice tie on the sort column; ties keep the key order.
	changes := toRecords([]changeEvent{
		{author: "Bob", created: true},
		{author: "Alice", created: true},
	})
	if err := st.Process(changes, []Column{createdColumn()}); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	var buf bytes.Buffer
	if err := st.Render(&buf, "Created"); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if !strings.HasPrefix(lines[2], "Alice") || !strings.HasPrefix(lines[3], "Bob") {
		t.Errorf("tie order = %q, %q; want Alice before Bob", lines[2], lines[3])
	}
}

func TestRender_SortByGroupColumn(t *testing.T) {
	t.Parallel()

	st, err := New(nameColumnForTest())
	if err != nil {
		t.Fatal(err)
	}

	changes := toRecords([]changeEvent{
		{author: "Alice", created: true},
		{author: "Bob", created: true},
	})
	if err := st.Process(changes, []Column{createdColumn()}); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	var buf bytes.Buffer
	if err := st.Render(&buf, "Name"); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if !strings.HasPrefix(lines[2], "Bob") || !strings.HasPrefix(lines[3], "Alice") {
		t.Errorf("sort by Name = %q, %q; want descending (Bob first)", lines[2], lines[3])
	}
}

func TestRender_UnknownSortColumn(t *testing.T) {
	t.Parallel()

	st, err := New(nameColumnForTest())
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Process(nil, []Column{createdColumn()}); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	err = st.Render(&bytes.Buffer{}, "Bogus")
	if !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("Render() error = %v, want ErrUnknownColumn", err)
	}
}

func TestRender_Idempotent(t *testing.T) {
	t.Parallel()

	st, err := New(nameColumnForTest())
	if err != nil {
		t.Fatal(err)
	}

	changes := toRecords([]changeEvent{
		{author: "Alice", created: true},
		{author: "Bob", created: true},
		{author: "Carol", created: false},
	})
	if err := st.Process(changes, []Column{createdColumn()}); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	var first, second bytes.Buffer
	if err := st.Render(&first, "Created"); err != nil {
		t.Fatalf("first Render() error = %v", err)
	}
	if err := st.Render(&second, "Created"); err != nil {
		t.Fatalf("second Render() error = %v", err)
	}

	if first.String() != second.String() {
		t.Errorf("Render() not idempotent:\nfirst:  %q\nsecond: %q",
			first.String(), second.String())
	}
}

func TestRender_EmptyTable(t *testing.T) {
	t.Parallel()

	st, err := New(nameColumnForTest())
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Process(nil, []Column{createdColumn()}); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	var buf bytes.Buffer
	if err := st.Render(&buf, "Created"); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := "Name Created\n==== =======\n"
	if got := buf.String(); got != want {
		t.Errorf("Render() output %q, want %q", got, want)
	}
}

func TestProcess_CompositeKeysStayDistinct(t *testing.T) {
	t.Parallel()

	type pairEvent struct {
		left  string
		right string
	}

	leftColumn := NewNameColumn("Left", func(r pairEvent) string { return r.left })
	rightColumn := NewNameColumn("Right", func(r pairEvent) string { return r.right })
	countColumn := NewCountColumn("Seen", func(pairEvent) bool { return true })

	st, err := New(leftColumn, rightColumn)
	if err != nil {
		t.Fatal(err)
	}

	// Key tuples whose concatenated text is identical must still land
	// in separate rows.
	events := []pairEvent{
		{left: "a|b", right: "c"},
		{left: "a", right: "b|c"},
		{left: "ab", right: "c"},
		{left: "a", right: "bc"},
	}
	if err := st.Process(toRecords(events), []Column{countColumn}); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	var buf bytes.Buffer
	if err := st.Render(&buf, "Seen"); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if got, want := len(lines)-2, len(events); got != want {
		t.Errorf("got %d rows, want %d:\n%s", got, want, buf.String())
	}
}
