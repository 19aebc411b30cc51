// Package gerrit parses and interprets the output of `gerrit query
// --format=JSON --all-approvals --comments`.
//
// The export is one JSON object per line, with a trailing statistics
// line. Parsing builds an object model of changes, patch sets, votes,
// and comments, and derives the per-change predicates (verified,
// approved, up/downvoted, RFC/WIP) that the report layer consumes.
package gerrit

import (
	"regexp"
	"strings"
	"time"
)

// Status is a Gerrit change status.
type Status string

// Change statuses as emitted by the query export.
const (
	StatusAbandoned Status = "ABANDONED"
	StatusDraft     Status = "DRAFT"
	StatusMerged    Status = "MERGED"
	StatusSubmitted Status = "SUBMITTED"
	StatusNew       Status = "NEW"
)

// ApprovalKind is a vote category.
type ApprovalKind string

// Approval kinds as emitted by the query export.
const (
	ApprovalCodeReview ApprovalKind = "Code-Review"
	ApprovalSubmit     ApprovalKind = "SUBM"
	ApprovalVerified   ApprovalKind = "Verified"
)

// Author is a Gerrit account. Authors are interned per Results, so
// pointer equality identifies the same account across changes.
type Author struct {
	// Username is the account identifier, falling back to the e-mail
	// address when the export carries no username.
	Username string

	// FullName is the display name.
	FullName string

	// Technical marks automated accounts (CI, the internal Gerrit
	// user) whose comments and votes are excluded from review
	// activity.
	Technical bool
}

// Approval is one vote on a patch set.
type Approval struct {
	Kind      ApprovalKind
	Value     int
	GrantedOn time.Time
	By        *Author
}

// Comment is one top-level comment on a change.
type Comment struct {
	Timestamp time.Time
	Reviewer  *Author
	Message   string
}

// technicalCommentRe matches messages Gerrit generates itself (rebase
// notices, patch set uploads) rather than human review feedback.
var technicalCommentRe = regexp.MustCompile(
	`^(Change has been successfully|Patch Set \d+: (Patch Set \d+ was rebased|Commit message was updated)$|Uploaded patch set)`)

// Technical reports whether the comment is machine-generated.
func (c *Comment) Technical() bool {
	return technicalCommentRe.MatchString(c.Message)
}

// PatchSet is one revision of a change.
type PatchSet struct {
	Number     int
	Uploader   *Author
	CreatedOn  time.Time
	Author     *Author
	Draft      bool
	Insertions int
	Deletions  int

	approvals []Approval
}

// Approvals returns the patch set's votes of one kind.
func (p *PatchSet) Approvals(kind ApprovalKind) []Approval {
	var out []Approval
	for _, a := range p.approvals {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

// Change is a single Gerrit change with its patch sets and comments.
type Change struct {
	Project       string
	Branch        string
	ID            string
	Number        int
	Owner         *Author
	CommitMessage string
	CreatedOn     time.Time
	LastUpdated   time.Time
	Status        Status
	Comments      []Comment
	PatchSets     []PatchSet

	// ReviewComments are comments from human reviewers other than the
	// owner; TechnicalComments are machine-generated ones from the
	// same set of accounts.
	ReviewComments    []Comment
	TechnicalComments []Comment
}

// LastPatchSet returns the newest patch set, or nil when the export
// carried none.
func (c *Change) LastPatchSet() *PatchSet {
	if len(c.PatchSets) == 0 {
		return nil
	}
	return &c.PatchSets[len(c.PatchSets)-1]
}

// MergedOn returns the submission time of a merged change.
//
// Returns the zero time for changes that are not merged, and
// ErrNoSubmitApproval when a merged change does not carry exactly one
// submit approval on its last patch set.
func (c *Change) MergedOn() (time.Time, error) {
	if c.Status != StatusMerged {
		return time.Time{}, nil
	}
	last := c.LastPatchSet()
	if last == nil {
		return time.Time{}, errNoSubmit(c)
	}
	submissions := last.Approvals(ApprovalSubmit)
	if len(submissions) != 1 {
		return time.Time{}, errNoSubmit(c)
	}
	return submissions[0].GrantedOn, nil
}

// AbandonedOn returns the timestamp of the latest "Abandoned" comment
// on an abandoned change, or the zero time.
func (c *Change) AbandonedOn() time.Time {
	if c.Status != StatusAbandoned {
		return time.Time{}
	}
	for i := len(c.Comments) - 1; i >= 0; i-- {
		if strings.HasPrefix(c.Comments[i].Message, "Abandoned") {
			return c.Comments[i].Timestamp
		}
	}
	return time.Time{}
}

// IsDraft reports whether the change is a draft.
func (c *Change) IsDraft() bool {
	return c.Status == StatusDraft
}

// IsOpen reports whether the change is still under review.
func (c *Change) IsOpen() bool {
	return c.Status == StatusNew || c.Status == StatusSubmitted
}

// IsVerified reports whether the last patch set has a Verified +2 and
// no negative Verified vote.
func (c *Change) IsVerified() bool {
	votes := c.lastApprovals(ApprovalVerified)
	return hasValue(votes, 2) && !hasNegative(votes)
}

// IsApproved reports whether the last patch set has a Code-Review +2
// and no negative Code-Review vote.
func (c *Change) IsApproved() bool {
	votes := c.lastApprovals(ApprovalCodeReview)
	return hasValue(votes, 2) && !hasNegative(votes)
}

// IsDownvoted reports whether the last patch set has any negative
// Code-Review vote.
func (c *Change) IsDownvoted() bool {
	return hasNegative(c.lastApprovals(ApprovalCodeReview))
}

// IsUpvoted reports whether the last patch set has a positive
// Code-Review vote and no negative one.
func (c *Change) IsUpvoted() bool {
	votes := c.lastApprovals(ApprovalCodeReview)
	return hasPositive(votes) && !hasNegative(votes)
}

func (c *Change) lastApprovals(kind ApprovalKind) []Approval {
	last := c.LastPatchSet()
	if last == nil {
		return nil
	}
	return last.Approvals(kind)
}

func hasValue(votes []Approval, value int) bool {
	for _, v := range votes {
		if v.Value == value {
			return true
		}
	}
	return false
}

func hasNegative(votes []Approval) bool {
	for _, v := range votes {
		if v.Value < 0 {
			return true
		}
	}
	return false
}

func hasPositive(votes []Approval) bool {
	for _, v := range votes {
		if v.Value > 0 {
			return true
		}
	}
	return false
}
