// Package records flattens the hierarchical change/patch-set/comment
// structure of parsed query results into homogeneous record streams
// for the aggregation engine.
//
// Each stream is materialized once and memoized, so report passes can
// consume the same stream any number of times. Timestamps older than
// the activity window are cleared to the zero time, which the report
// columns treat as "no contribution".
package records

import (
	"strings"
	"time"

	"github.com/0xfelis/gerrit-stats/pkg/gerrit"
)

// rfcWipPrefixes marks changes posted for comment rather than review.
var rfcWipPrefixes = []string{"RFC", "[RFC]", "WIP", "[WIP]"}

// Authored is the contract shared by all record types: every record
// identifies the author it should be grouped under.
type Authored interface {
	// AuthorName returns the author's display name.
	AuthorName() string
}

// Change records the creation/submission state of one change.
type Change struct {
	change *gerrit.Change

	// CreatedOn, MergedOn, and AbandonedOn are the change's lifecycle
	// timestamps, cleared to zero when outside the activity window.
	CreatedOn   time.Time
	MergedOn    time.Time
	AbandonedOn time.Time
}

// AuthorName implements Authored using the change owner.
func (r *Change) AuthorName() string { return r.change.Owner.FullName }

// IsOpen reports whether the change is still under review.
func (r *Change) IsOpen() bool { return r.change.IsOpen() }

// IsVerified reports whether the last patch set passed verification.
func (r *Change) IsVerified() bool { return r.change.IsVerified() }

// IsApproved reports whether the last patch set is approved.
func (r *Change) IsApproved() bool { return r.change.IsApproved() }

// IsUpvoted reports whether the last patch set has only positive
// review votes.
func (r *Change) IsUpvoted() bool { return r.change.IsUpvoted() }

// IsDownvoted reports whether the last patch set has a negative
// review vote.
func (r *Change) IsDownvoted() bool { return r.change.IsDownvoted() }

// HasComments reports whether any human reviewer commented.
func (r *Change) HasComments() bool { return len(r.change.ReviewComments) > 0 }

// IsRFCWIP reports whether the change is marked as a request for
// comments or work in progress.
func (r *Change) IsRFCWIP() bool {
	for _, prefix := range rfcWipPrefixes {
		if strings.HasPrefix(r.change.CommitMessage, prefix) {
			return true
		}
	}
	return false
}

// Comment records one review comment on a change.
type Comment struct {
	// ChangeID identifies the commented change.
	ChangeID string

	// Author is the commenting reviewer.
	Author *gerrit.Author

	// Timestamp is the comment time, cleared to zero when outside the
	// activity window.
	Timestamp time.Time
}

// AuthorName implements Authored.
func (r *Comment) AuthorName() string { return r.Author.FullName }

// Vote records one review vote on a change.
type Vote struct {
	// ChangeID identifies the voted change.
	ChangeID string

	// Author is the voting reviewer.
	Author *gerrit.Author

	// Timestamp is the vote time, cleared to zero when outside the
	// activity window.
	Timestamp time.Time
}

// AuthorName implements Authored.
func (r *Vote) AuthorName() string { return r.Author.FullName }
