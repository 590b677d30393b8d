package analysis

import (
	"time"

	"github.com/ubiquity-os/dao-analytics/internal/domain"
)

// RecordInput is the immutable snapshot set an analytics record is built
// from. Every field may be nil/empty; fetch failures degrade to absence.
type RecordInput struct {
	Issue          *domain.Issue
	PullRequest    *domain.PullRequest
	Reviews        []domain.Review
	ReviewComments []domain.ReviewComment
	IssueComments  []domain.IssueComment
	Commits        []domain.Commit
	Files          []domain.CommitFile
	IssueEvents    []domain.IssueEvent

	// Linkage context for the issue this PR closes.
	LinkedPrs []int          // all PRs the forward pass linked to the issue
	PrAuthors map[int]string // author login by PR number

	Now time.Time
}

// BuildRecord assembles the per-pull-request analytics record: issue
// lifecycle fields, sentiment, and the four embedded aggregates.
func BuildRecord(in RecordInput) *domain.Record {
	rec := &domain.Record{
		HasLinkedPr:          in.PullRequest != nil,
		HasMultipleLinkedPrs: len(in.LinkedPrs) > 1,
		Issue:                in.Issue,
		PullRequest:          in.PullRequest,
	}

	if in.Issue != nil {
		if in.Issue.CreatedAt != nil && in.Issue.ClosedAt != nil {
			ms := spanMillis(*in.Issue.CreatedAt, *in.Issue.ClosedAt)
			rec.TimeFromOpenToClose = &ms
		}
		if in.PullRequest != nil && in.PullRequest.CreatedAt != nil && in.Issue.ClosedAt != nil {
			ms := spanMillis(*in.PullRequest.CreatedAt, *in.Issue.ClosedAt)
			rec.TimeFromPrOpenToIssueClose = &ms
		}
		rec.IssueSentimentScore = SentimentScore(in.Issue.Body)
	}

	// Distinct assignees across the issue timeline; each one attempted the
	// task before the closing PR landed.
	assignees := map[string]struct{}{}
	for _, ev := range in.IssueEvents {
		if ev.Event == "assigned" && ev.Actor != "" { assignees[ev.Actor] = struct{}{} }
	}
	rec.TotalContributorsThatAttempted = len(assignees)

	if in.PullRequest != nil {
		rec.PrSentimentScore = SentimentScore(in.PullRequest.Body)
		author := in.PullRequest.Author
		for _, c := range in.IssueComments {
			if c.Author != "" && c.Author == author { rec.TotalCommentsFromContributorThatClosedIssue++ }
		}
		for _, n := range in.LinkedPrs {
			if in.PrAuthors[n] == author { rec.TotalPrsFromAuthorThatClosedIssue++ }
		}
	}

	rec.PullRequestAnalytics = AnalyzePullRequest(in.PullRequest, in.Reviews, in.ReviewComments, in.IssueComments, in.Commits)
	rec.ReviewAnalytics = AnalyzeReviews(in.PullRequest, in.Reviews, in.ReviewComments, in.IssueComments, in.Now)
	rec.ReviewerStats = AnalyzeReviewers(in.PullRequest, in.Reviews, in.ReviewComments, in.Now)
	rec.CommitAnalytics = AnalyzeCommits(in.PullRequest, in.Commits, in.Now)

	// commit listings sometimes omit line stats; fall back to the file diff
	if rec.CommitAnalytics.LinesAdded == 0 && rec.CommitAnalytics.LinesRemoved == 0 && len(in.Files) > 0 {
		for _, f := range in.Files {
			rec.CommitAnalytics.LinesAdded += f.Additions
			rec.CommitAnalytics.LinesRemoved += f.Deletions
		}
	}

	return rec
}
