package records

import (
	"time"

	"github.com/0xfelis/gerrit-stats/pkg/gerrit"
)

// Set exposes the flat record streams derived from one query run.
// Streams are built lazily and cached; a Set is not safe for
// concurrent use.
type Set struct {
	data   *gerrit.Results
	cutoff time.Time

	changeActivity []*Change
	openChanges    []*Change
	comments       []*Comment
	technical      []*Comment
	openComments   []*Comment
	votes          []*Vote
	openVotes      []*Vote
}

// NewSet creates a record set over parsed query results.
//
// Parameters:
//   - data: Parsed query results
//   - days: Activity window; timestamps older than days before now
//     are treated as outside the window
//   - now: Reference time for the window, normally time.Now()
func NewSet(data *gerrit.Results, days int, now time.Time) *Set {
	year, month, day := now.AddDate(0, 0, -days).Date()
	return &Set{
		data:   data,
		cutoff: time.Date(year, month, day, 0, 0, 0, 0, now.Location()),
	}
}

// withinWindow clears timestamps that fall before the cutoff.
func (s *Set) withinWindow(t time.Time) time.Time {
	if !t.IsZero() && t.Before(s.cutoff) {
		return time.Time{}
	}
	return t
}

// ChangeActivity returns one record per public change, with lifecycle
// timestamps restricted to the activity window.
func (s *Set) ChangeActivity() ([]*Change, error) {
	if s.changeActivity == nil {
		changes, err := s.changeRecords(s.data.PublicChanges())
		if err != nil {
			return nil, err
		}
		s.changeActivity = changes
	}
	return s.changeActivity, nil
}

// OpenChanges returns one record per open change.
func (s *Set) OpenChanges() ([]*Change, error) {
	if s.openChanges == nil {
		changes, err := s.changeRecords(s.data.OpenChanges())
		if err != nil {
			return nil, err
		}
		s.openChanges = changes
	}
	return s.openChanges, nil
}

// Comments returns one record per review comment on public changes.
func (s *Set) Comments() []*Comment {
	if s.comments == nil {
		s.comments = s.commentRecords(s.data.PublicChanges(), reviewComments)
	}
	return s.comments
}

// TechnicalComments returns one record per machine-generated comment
// on public changes.
func (s *Set) TechnicalComments() []*Comment {
	if s.technical == nil {
		s.technical = s.commentRecords(s.data.PublicChanges(), technicalComments)
	}
	return s.technical
}

// OpenComments returns one record per review comment on open changes.
func (s *Set) OpenComments() []*Comment {
	if s.openComments == nil {
		s.openComments = s.commentRecords(s.data.OpenChanges(), reviewComments)
	}
	return s.openComments
}

// Votes returns one record per Code-Review vote on public changes,
// across all patch sets.
func (s *Set) Votes() []*Vote {
	if s.votes == nil {
		s.votes = s.voteRecords(s.data.PublicChanges())
	}
	return s.votes
}

// OpenVotes returns one record per Code-Review vote on open changes.
func (s *Set) OpenVotes() []*Vote {
	if s.openVotes == nil {
		s.openVotes = s.voteRecords(s.data.OpenChanges())
	}
	return s.openVotes
}

func (s *Set) changeRecords(changes []*gerrit.Change) ([]*Change, error) {
	out := make([]*Change, 0, len(changes))
	for _, change := range changes {
		mergedOn, err := change.MergedOn()
		if err != nil {
			return nil, err
		}
		out = append(out, &Change{
			change:      change,
			CreatedOn:   s.withinWindow(change.CreatedOn),
			MergedOn:    s.withinWindow(mergedOn),
			AbandonedOn: s.withinWindow(change.AbandonedOn()),
		})
	}
	return out, nil
}

func reviewComments(change *gerrit.Change) []gerrit.Comment {
	return change.ReviewComments
}

func technicalComments(change *gerrit.Change) []gerrit.Comment {
	return change.TechnicalComments
}

func (s *Set) commentRecords(changes []*gerrit.Change, pick func(*gerrit.Change) []gerrit.Comment) []*Comment {
	var out []*Comment
	for _, change := range changes {
		for _, comment := range pick(change) {
			out = append(out, &Comment{
				ChangeID:  change.ID,
				Author:    comment.Reviewer,
				Timestamp: s.withinWindow(comment.Timestamp),
			})
		}
	}
	return out
}

func (s *Set) voteRecords(changes []*gerrit.Change) []*Vote {
	var out []*Vote
	for _, change := range changes {
		for i := range change.PatchSets {
			for _, approval := range change.PatchSets[i].Approvals(gerrit.ApprovalCodeReview) {
				out = append(out, &Vote{
					ChangeID:  change.ID,
					Author:    approval.By,
					Timestamp: s.withinWindow(approval.GrantedOn),
				})
			}
		}
	}
	return out
}
