package gerrit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// maxLineLength bounds a single export line. Commit messages can make
// change entries large, so the limit is generous.
const maxLineLength = 4 * 1024 * 1024

// Options controls parsing of query results.
type Options struct {
	// TechnicalAccounts lists usernames (or e-mail fallbacks) of
	// automated accounts whose activity is not review activity.
	TechnicalAccounts []string
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		TechnicalAccounts: []string{"jenkins"},
	}
}

// Results holds the parsed changes of one query run.
type Results struct {
	authors   map[string]*Author
	technical map[string]struct{}

	changes []*Change
	public  []*Change
	open    []*Change
}

// Parse parses raw `gerrit query --format=JSON` output: one JSON
// object per line, with the trailing statistics entry skipped.
//
// Parameters:
//   - data: Raw query output
//   - opts: Parse options; zero value means DefaultOptions
//
// Returns an error for lines that are not valid JSON and for accounts
// that cannot be identified. Parsing is all-or-nothing; there is no
// partial result.
func Parse(data []byte, opts Options) (*Results, error) {
	if opts.TechnicalAccounts == nil {
		opts = DefaultOptions()
	}

	r := &Results{
		authors:   make(map[string]*Author),
		technical: make(map[string]struct{}, len(opts.TechnicalAccounts)),
	}
	for _, name := range opts.TechnicalAccounts {
		r.technical[name] = struct{}{}
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var entry changeJSON
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedEntry, lineNum, err)
		}
		if entry.Type == "stats" {
			continue
		}

		change, err := r.buildChange(&entry)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		r.changes = append(r.changes, change)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading query results: %w", err)
	}

	for _, change := range r.changes {
		if change.IsDraft() {
			continue
		}
		r.public = append(r.public, change)
		if change.IsOpen() {
			r.open = append(r.open, change)
		}
	}

	return r, nil
}

// PublicChanges returns all non-draft changes.
func (r *Results) PublicChanges() []*Change { return r.public }

// OpenChanges returns all open non-draft changes.
func (r *Results) OpenChanges() []*Change { return r.open }

// Wire format of the query export.

type accountJSON struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type approvalJSON struct {
	Type      string       `json:"type"`
	Value     json.Number  `json:"value"`
	GrantedOn int64        `json:"grantedOn"`
	By        *accountJSON `json:"by"`
}

type commentJSON struct {
	Timestamp int64        `json:"timestamp"`
	Reviewer  *accountJSON `json:"reviewer"`
	Message   string       `json:"message"`
}

type patchSetJSON struct {
	Number         json.Number    `json:"number"`
	Uploader       *accountJSON   `json:"uploader"`
	CreatedOn      int64          `json:"createdOn"`
	Author         *accountJSON   `json:"author"`
	IsDraft        bool           `json:"isDraft"`
	SizeInsertions int            `json:"sizeInsertions"`
	SizeDeletions  int            `json:"sizeDeletions"`
	Approvals      []approvalJSON `json:"approvals"`
}

type changeJSON struct {
	Type          string         `json:"type"`
	Project       string         `json:"project"`
	Branch        string         `json:"branch"`
	ID            string         `json:"id"`
	Number        json.Number    `json:"number"`
	Owner         *accountJSON   `json:"owner"`
	CommitMessage string         `json:"commitMessage"`
	CreatedOn     int64          `json:"createdOn"`
	LastUpdated   int64          `json:"lastUpdated"`
	Status        string         `json:"status"`
	Comments      []commentJSON  `json:"comments"`
	PatchSets     []patchSetJSON `json:"patchSets"`
}

// buildChange converts one decoded entry into the object model.
func (r *Results) buildChange(entry *changeJSON) (*Change, error) {
	owner, err := r.resolveAccount(entry.Owner)
	if err != nil {
		return nil, err
	}

	change := &Change{
		Project:       entry.Project,
		Branch:        entry.Branch,
		ID:            entry.ID,
		Number:        toInt(entry.Number),
		Owner:         owner,
		CommitMessage: entry.CommitMessage,
		CreatedOn:     toTime(entry.CreatedOn),
		LastUpdated:   toTime(entry.LastUpdated),
		Status:        Status(entry.Status),
	}

	for i := range entry.Comments {
		cj := &entry.Comments[i]
		reviewer, err := r.resolveAccount(cj.Reviewer)
		if err != nil {
			return nil, err
		}
		change.Comments = append(change.Comments, Comment{
			Timestamp: toTime(cj.Timestamp),
			Reviewer:  reviewer,
			Message:   cj.Message,
		})
	}

	for i := range entry.PatchSets {
		pj := &entry.PatchSets[i]
		uploader, err := r.resolveAccount(pj.Uploader)
		if err != nil {
			return nil, err
		}
		author, err := r.resolveAccount(pj.Author)
		if err != nil {
			return nil, err
		}
		ps := PatchSet{
			Number:     toInt(pj.Number),
			Uploader:   uploader,
			CreatedOn:  toTime(pj.CreatedOn),
			Author:     author,
			Draft:      pj.IsDraft,
			Insertions: pj.SizeInsertions,
			Deletions:  pj.SizeDeletions,
		}
		for _, aj := range pj.Approvals {
			by, err := r.resolveAccount(aj.By)
			if err != nil {
				return nil, err
			}
			ps.approvals = append(ps.approvals, Approval{
				Kind:      ApprovalKind(aj.Type),
				Value:     toInt(aj.Value),
				GrantedOn: toTime(aj.GrantedOn),
				By:        by,
			})
		}
		change.PatchSets = append(change.PatchSets, ps)
	}

	for i := range change.Comments {
		comment := change.Comments[i]
		if comment.Reviewer == nil || comment.Reviewer == change.Owner ||
			comment.Reviewer.Technical {
			continue
		}
		if comment.Technical() {
			change.TechnicalComments = append(change.TechnicalComments, comment)
		} else {
			change.ReviewComments = append(change.ReviewComments, comment)
		}
	}

	return change, nil
}

// resolveAccount interns an account, keyed by username with e-mail as
// the fallback identity.
//
// The fallback assumes e-mail addresses are unique; duplicate
// identities with differing usernames are not merged. This mirrors the
// upstream export's behavior and is a documented approximation.
func (r *Results) resolveAccount(acct *accountJSON) (*Author, error) {
	if acct == nil {
		return nil, nil
	}
	username := acct.Username
	if username == "" {
		username = acct.Email
	}
	if username == "" {
		return nil, ErrUnknownAccount
	}

	author, exists := r.authors[username]
	if !exists {
		_, technical := r.technical[username]
		author = &Author{
			Username:  username,
			FullName:  acct.Name,
			Technical: technical,
		}
		r.authors[username] = author
	}
	return author, nil
}

// toTime converts Unix seconds to a time.Time, zero for absent.
func toTime(seconds int64) time.Time {
	if seconds == 0 {
		return time.Time{}
	}
	return time.Unix(seconds, 0)
}

// toInt converts a wire number that may arrive quoted or bare.
func toInt(n json.Number) int {
	v, err := n.Int64()
	if err != nil {
		return 0
	}
	return int(v)
}
