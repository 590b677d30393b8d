package analysis

import (
	"sort"
	"time"

	"github.com/ubiquity-os/dao-analytics/internal/domain"
)

// AnalyzeReviews aggregates review behavior across all reviewers of one
// pull request: per-reviewer counts, time spent reviewing, inter-review
// cadence, and calendar buckets for reviews and review comments.
func AnalyzeReviews(pr *domain.PullRequest, reviews []domain.Review, reviewComments []domain.ReviewComment, _ []domain.IssueComment, now time.Time) *domain.ReviewAnalytics {
	out := &domain.ReviewAnalytics{
		TotalReviews:                len(reviews),
		TotalReviewComments:         len(reviewComments),
		TotalReviewsPerDay:          map[string]int{},
		TotalReviewsPerWeek:         map[string]int{},
		TotalReviewsPerMonth:        map[string]int{},
		TotalReviewCommentsPerDay:   map[string]int{},
		TotalReviewCommentsPerWeek:  map[string]int{},
		TotalReviewCommentsPerMonth: map[string]int{},
		RequestToCompletionTimes:    map[string]int64{},
		CompletionToAddressedTimes:  map[string]int64{},
		ReviewsPerReviewer:          map[string]int{},
	}

	var createdAt, closedAt *time.Time
	if pr != nil {
		createdAt, closedAt = pr.CreatedAt, pr.ClosedAt
		out.TotalReviewRequests = len(pr.RequestedReviewers)
	}
	days := durationDays(createdAt, closedAt, now)

	var timestamps []time.Time
	type window struct{ first, last time.Time }
	perReviewer := map[string]*window{}
	for _, r := range reviews {
		login := r.Author
		if login == "" { login = "unknown" }
		out.ReviewsPerReviewer[login]++

		if r.SubmittedAt == nil { continue }
		ts := *r.SubmittedAt
		timestamps = append(timestamps, ts)
		bump(out.TotalReviewsPerDay, dayKey(ts))
		bump(out.TotalReviewsPerWeek, weekKey(ts))
		bump(out.TotalReviewsPerMonth, monthKey(ts))

		if w, ok := perReviewer[login]; ok {
			if ts.Before(w.first) { w.first = ts }
			if ts.After(w.last) { w.last = ts }
		} else {
			perReviewer[login] = &window{first: ts, last: ts}
		}
	}

	for _, c := range reviewComments {
		if c.CreatedAt == nil { continue }
		bump(out.TotalReviewCommentsPerDay, dayKey(*c.CreatedAt))
		bump(out.TotalReviewCommentsPerWeek, weekKey(*c.CreatedAt))
		bump(out.TotalReviewCommentsPerMonth, monthKey(*c.CreatedAt))

		if c.InReplyTo != 0 {
			out.TotalReviewCommentsAddressed++
		} else {
			out.TotalReviewCommentsIgnored++
		}
	}

	// Time spent reviewing: per reviewer, span between their first and last
	// review submission, summed across reviewers.
	for _, w := range perReviewer {
		out.TotalTimeSpentReviewing += spanMillis(w.first, w.last)
	}
	if out.TotalReviews > 0 {
		out.AverageTimeSpentReviewing = out.TotalTimeSpentReviewing / int64(out.TotalReviews)
	}

	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i].Before(timestamps[j]) })
	if len(timestamps) > 1 {
		var total int64
		for i := 1; i < len(timestamps); i++ {
			total += spanMillis(timestamps[i-1], timestamps[i])
		}
		out.AverageTimeBetweenReviews = total / int64(len(timestamps)-1)
	}

	out.AverageReviewsPerDay = float64(out.TotalReviews) / float64(days)
	out.AverageReviewsPerWeek = out.AverageReviewsPerDay * 7
	out.AverageReviewsPerMonth = out.AverageReviewsPerDay * (365.0 / 12.0)

	return out
}
