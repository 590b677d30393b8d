package domain

import "time"

// Repo identifies one unit of analysis work, owned by an organization.
type Repo struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// Issue is an immutable snapshot of a forge issue. Optional timestamps are
// nil when the forge never reported them.
type Issue struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Author    string     `json:"author"`
	State     string     `json:"state"`
	CreatedAt *time.Time `json:"createdAt"`
	ClosedAt  *time.Time `json:"closedAt"`
	Labels    []string   `json:"labels,omitempty"`
}

type PullRequest struct {
	Number             int        `json:"number"`
	Title              string     `json:"title"`
	Body               string     `json:"body"`
	Author             string     `json:"author"`
	State              string     `json:"state"`
	Draft              bool       `json:"draft"`
	CreatedAt          *time.Time `json:"createdAt"`
	MergedAt           *time.Time `json:"mergedAt"`
	ClosedAt           *time.Time `json:"closedAt"`
	RequestedReviewers []string   `json:"requestedReviewers,omitempty"`
}

type Review struct {
	ID          int64      `json:"id"`
	Author      string     `json:"author"`
	State       string     `json:"state"`
	Body        string     `json:"body"`
	SubmittedAt *time.Time `json:"submittedAt"`
}

// ReviewComment is a single code review comment. ReviewID ties it to the
// review it was left under; InReplyTo is zero unless the comment replies to
// another comment.
type ReviewComment struct {
	ID        int64      `json:"id"`
	ReviewID  int64      `json:"reviewId"`
	InReplyTo int64      `json:"inReplyTo"`
	Author    string     `json:"author"`
	Body      string     `json:"body"`
	CreatedAt *time.Time `json:"createdAt"`
}

type IssueComment struct {
	ID        int64      `json:"id"`
	Author    string     `json:"author"`
	Body      string     `json:"body"`
	CreatedAt *time.Time `json:"createdAt"`
}

// Commit carries per-commit line counts when the forge reports them; both
// counts stay zero otherwise.
type Commit struct {
	SHA         string     `json:"sha"`
	AuthorLogin string     `json:"authorLogin"`
	AuthorName  string     `json:"authorName"`
	AuthoredAt  *time.Time `json:"authoredAt"`
	Additions   int        `json:"additions"`
	Deletions   int        `json:"deletions"`
}

type CommitFile struct {
	Filename  string `json:"filename"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

type IssueEvent struct {
	Event     string     `json:"event"`
	Actor     string     `json:"actor"`
	CreatedAt *time.Time `json:"createdAt"`
}
