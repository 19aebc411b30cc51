package report

import (
	"io"

	"github.com/0xfelis/gerrit-stats/pkg/records"
	"github.com/0xfelis/gerrit-stats/pkg/stats"
)

// changeActivity counts change lifecycle events and distinct
// commented/voted changes per author.
type changeActivity struct{}

// ChangeActivity returns the per-author change activity report.
func ChangeActivity() Report { return changeActivity{} }

func (changeActivity) Name() string { return "change-activity" }

func (changeActivity) Title() string { return "Number of changes during past N days" }

func (changeActivity) Run(w io.Writer, set *records.Set) error {
	st, err := stats.New(authorColumn())
	if err != nil {
		return err
	}

	changes, err := set.ChangeActivity()
	if err != nil {
		return err
	}
	err = st.Process(toRecords(changes), []stats.Column{
		stats.NewCountColumn("Created", func(r *records.Change) bool {
			return !r.CreatedOn.IsZero()
		}),
		stats.NewCountColumn("Merged", func(r *records.Change) bool {
			return !r.MergedOn.IsZero()
		}),
		stats.NewCountColumn("Abandoned", func(r *records.Change) bool {
			return !r.AbandonedOn.IsZero()
		}),
	})
	if err != nil {
		return err
	}

	err = st.Process(toRecords(set.Comments()), []stats.Column{
		stats.NewDistinctCountColumn("Commented", func(r *records.Comment) string {
			if r.Timestamp.IsZero() {
				return ""
			}
			return r.ChangeID
		}),
	})
	if err != nil {
		return err
	}

	err = st.Process(toRecords(set.Votes()), []stats.Column{
		stats.NewDistinctCountColumn("Voted", func(r *records.Vote) string {
			if r.Timestamp.IsZero() {
				return ""
			}
			return r.ChangeID
		}),
	})
	if err != nil {
		return err
	}

	return st.Render(w, "Voted")
}

// openChanges breaks down each author's open changes by review state.
type openChanges struct{}

// OpenChanges returns the open-change status breakdown report.
func OpenChanges() Report { return openChanges{} }

func (openChanges) Name() string { return "open-by-author" }

func (openChanges) Title() string { return "Number of open changes" }

func (openChanges) Run(w io.Writer, set *records.Set) error {
	st, err := stats.New(authorColumn())
	if err != nil {
		return err
	}

	changes, err := set.OpenChanges()
	if err != nil {
		return err
	}

	// The status columns form a ladder: each change falls into exactly
	// one of the columns after RFC/WIP.
	err = st.Process(toRecords(changes), []stats.Column{
		stats.NewCountColumn("Open", func(r *records.Change) bool {
			return true
		}),
		stats.NewCountColumn("RFC/WIP", func(r *records.Change) bool {
			return r.IsRFCWIP()
		}),
		stats.NewCountColumn("-Verified", func(r *records.Change) bool {
			return !r.IsRFCWIP() && !r.IsVerified()
		}),
		stats.NewCountColumn("-Review", func(r *records.Change) bool {
			return !r.IsRFCWIP() && r.IsVerified() && r.IsDownvoted()
		}),
		stats.NewCountColumn("Approved", func(r *records.Change) bool {
			return !r.IsRFCWIP() && r.IsVerified() && r.IsApproved()
		}),
		stats.NewCountColumn("+Review", func(r *records.Change) bool {
			return !r.IsRFCWIP() && r.IsVerified() && !r.IsApproved() && r.IsUpvoted()
		}),
		stats.NewCountColumn("Comments", func(r *records.Change) bool {
			return !r.IsRFCWIP() && r.IsVerified() && !r.IsUpvoted() &&
				!r.IsDownvoted() && r.HasComments()
		}),
		stats.NewCountColumn("Nothing", func(r *records.Change) bool {
			return !r.IsRFCWIP() && r.IsVerified() && !r.HasComments()
		}),
	})
	if err != nil {
		return err
	}

	return st.Render(w, "Open")
}

// openActivity counts distinct open changes each author has commented
// or voted on, regardless of when.
type openActivity struct{}

// OpenActivity returns the open-change activity report.
func OpenActivity() Report { return openActivity{} }

func (openActivity) Name() string { return "open-activity" }

func (openActivity) Title() string { return "Activity on open changes" }

func (openActivity) Run(w io.Writer, set *records.Set) error {
	st, err := stats.New(authorColumn())
	if err != nil {
		return err
	}

	err = st.Process(toRecords(set.OpenComments()), []stats.Column{
		stats.NewDistinctCountColumn("Commented", func(r *records.Comment) string {
			return r.ChangeID
		}),
	})
	if err != nil {
		return err
	}

	err = st.Process(toRecords(set.OpenVotes()), []stats.Column{
		stats.NewDistinctCountColumn("Voted", func(r *records.Vote) string {
			return r.ChangeID
		}),
	})
	if err != nil {
		return err
	}

	return st.Render(w, "Commented")
}

// activity counts individual review actions per author within the
// activity window.
type activity struct{}

// Activity returns the per-author action count report.
func Activity() Report { return activity{} }

func (activity) Name() string { return "activity" }

func (activity) Title() string { return "Activity (number of actions) during past N days" }

func (activity) Run(w io.Writer, set *records.Set) error {
	st, err := stats.New(authorColumn())
	if err != nil {
		return err
	}

	err = st.Process(toRecords(set.Comments()), []stats.Column{
		stats.NewCountColumn("Comments", func(r *records.Comment) bool {
			return !r.Timestamp.IsZero()
		}),
	})
	if err != nil {
		return err
	}

	err = st.Process(toRecords(set.TechnicalComments()), []stats.Column{
		stats.NewCountColumn("Technical", func(r *records.Comment) bool {
			return !r.Timestamp.IsZero()
		}),
	})
	if err != nil {
		return err
	}

	err = st.Process(toRecords(set.Votes()), []stats.Column{
		stats.NewCountColumn("Votes", func(r *records.Vote) bool {
			return !r.Timestamp.IsZero()
		}),
	})
	if err != nil {
		return err
	}

	return st.Render(w, "Comments")
}
