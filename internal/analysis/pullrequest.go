package analysis

import (
	"github.com/ubiquity-os/dao-analytics/internal/domain"
)

// AnalyzePullRequest aggregates lifecycle and review-response metrics for
// one pull request. All inputs may be empty; every optional timestamp may be
// nil.
func AnalyzePullRequest(pr *domain.PullRequest, reviews []domain.Review, reviewComments []domain.ReviewComment, issueComments []domain.IssueComment, commits []domain.Commit) *domain.PullRequestAnalytics {
	out := &domain.PullRequestAnalytics{
		TotalCommits:        len(commits),
		TotalComments:       len(issueComments) + len(reviewComments) + len(reviews),
		TotalReviews:        len(reviews),
		TotalReviewComments: len(reviewComments),
	}
	if pr == nil { return out }

	if pr.CreatedAt != nil && pr.ClosedAt != nil {
		ms := spanMillis(*pr.CreatedAt, *pr.ClosedAt)
		out.TimeFromOpenToClose = &ms
	}
	if pr.CreatedAt != nil && pr.MergedAt != nil {
		ms := spanMillis(*pr.CreatedAt, *pr.MergedAt)
		out.TimeFromOpenToMerge = &ms
	}

	out.TotalReviewRequests = len(pr.RequestedReviewers)

	knownReviews := map[int64]domain.Review{}
	reviewers := map[string]struct{}{}
	contributors := map[string]struct{}{}
	for _, r := range reviews {
		knownReviews[r.ID] = r
		if r.Author != "" {
			reviewers[r.Author] = struct{}{}
			contributors[r.Author] = struct{}{}
		}
	}
	for _, c := range reviewComments {
		if c.Author != "" { contributors[c.Author] = struct{}{} }
	}
	for _, c := range issueComments {
		if c.Author != "" { contributors[c.Author] = struct{}{} }
	}
	out.TotalReviewers = len(reviewers)
	out.TotalContributors = len(contributors)

	// A comment only counts as addressed or ignored when its parent review
	// is part of the known review set.
	for _, c := range reviewComments {
		if _, ok := knownReviews[c.ReviewID]; !ok { continue }
		if c.InReplyTo != 0 {
			out.TotalReviewCommentsAddressed++
		} else {
			out.TotalReviewCommentsIgnored++
		}
	}

	if len(reviews) > 0 && pr.CreatedAt != nil {
		var total int64
		for _, r := range reviews {
			if r.SubmittedAt != nil { total += spanMillis(*pr.CreatedAt, *r.SubmittedAt) }
		}
		out.AverageTimeFromReviewRequestToReviewCompletion = total / int64(len(reviews))
	}

	var addressedTotal int64
	var addressedCount int64
	for _, c := range reviewComments {
		r, ok := knownReviews[c.ReviewID]
		if !ok || r.SubmittedAt == nil || c.CreatedAt == nil { continue }
		addressedTotal += spanMillis(*r.SubmittedAt, *c.CreatedAt)
		addressedCount++
	}
	if addressedCount > 0 {
		out.AverageTimeFromReviewCompletionToReviewAddressed = addressedTotal / addressedCount
	}

	return out
}
