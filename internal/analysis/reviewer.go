package analysis

import (
	"sort"
	"strconv"
	"time"

	"github.com/ubiquity-os/dao-analytics/internal/domain"
)

func newReviewerStats(login string) *domain.ReviewerStats {
	return &domain.ReviewerStats{
		Login:                       login,
		TotalReviewsPerDay:          map[string]int{},
		TotalReviewsPerWeek:         map[string]int{},
		TotalReviewsPerMonth:        map[string]int{},
		TotalReviewCommentsPerDay:   map[string]int{},
		TotalReviewCommentsPerWeek:  map[string]int{},
		TotalReviewCommentsPerMonth: map[string]int{},
		RequestToCompletionTimes:    map[string]int64{},
		CompletionToAddressedTimes:  map[string]int64{},
	}
}

// AnalyzeReviewers produces one stats record per distinct login appearing in
// the review or review-comment set of a pull request. A login that only
// commented still gets a record with zero reviews. Records are ordered by
// login.
func AnalyzeReviewers(pr *domain.PullRequest, reviews []domain.Review, reviewComments []domain.ReviewComment, now time.Time) []domain.ReviewerStats {
	var createdAt, closedAt *time.Time
	if pr != nil { createdAt, closedAt = pr.CreatedAt, pr.ClosedAt }
	days := durationDays(createdAt, closedAt, now)

	stats := map[string]*domain.ReviewerStats{}
	get := func(login string) *domain.ReviewerStats {
		if login == "" { login = "unknown" }
		s, ok := stats[login]
		if !ok {
			s = newReviewerStats(login)
			stats[login] = s
		}
		return s
	}

	reviewTimes := map[string][]time.Time{}
	for _, r := range reviews {
		s := get(r.Author)
		s.TotalReviews++
		if r.SubmittedAt == nil { continue }
		ts := *r.SubmittedAt
		bump(s.TotalReviewsPerDay, dayKey(ts))
		bump(s.TotalReviewsPerWeek, weekKey(ts))
		bump(s.TotalReviewsPerMonth, monthKey(ts))
		reviewTimes[s.Login] = append(reviewTimes[s.Login], ts)

		// Approximation: the forge does not keep per-request timestamps, so
		// the request-to-completion delta is measured from PR creation.
		if createdAt != nil {
			s.RequestToCompletionTimes[strconv.FormatInt(r.ID, 10)] = spanMillis(*createdAt, ts)
		}
	}

	for _, c := range reviewComments {
		s := get(c.Author)
		s.TotalReviewComments++
		if c.InReplyTo != 0 {
			s.TotalReviewCommentsAddressed++
		} else {
			s.TotalReviewCommentsIgnored++
		}
		if c.CreatedAt == nil { continue }
		ts := *c.CreatedAt
		bump(s.TotalReviewCommentsPerDay, dayKey(ts))
		bump(s.TotalReviewCommentsPerWeek, weekKey(ts))
		bump(s.TotalReviewCommentsPerMonth, monthKey(ts))
		if createdAt != nil {
			s.CompletionToAddressedTimes[strconv.FormatInt(c.ID, 10)] = spanMillis(*createdAt, ts)
		}
	}

	for login, s := range stats {
		s.AverageReviewsPerDay = float64(s.TotalReviews) / float64(days)
		s.AverageReviewsPerWeek = s.AverageReviewsPerDay * 7
		s.AverageReviewsPerMonth = s.AverageReviewsPerDay * (365.0 / 12.0)

		times := reviewTimes[login]
		sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
		if len(times) > 1 {
			var total int64
			for i := 1; i < len(times); i++ {
				total += spanMillis(times[i-1], times[i])
			}
			s.AverageTimeBetweenReviews = total / int64(len(times)-1)
		}
		if len(times) > 0 {
			s.TotalTimeSpentReviewing = spanMillis(times[0], times[len(times)-1])
			if s.TotalReviews > 0 {
				s.AverageTimeSpentReviewing = s.TotalTimeSpentReviewing / int64(s.TotalReviews)
			}
		}
	}

	logins := make([]string, 0, len(stats))
	for login := range stats { logins = append(logins, login) }
	sort.Strings(logins)
	out := make([]domain.ReviewerStats, 0, len(logins))
	for _, login := range logins { out = append(out, *stats[login]) }
	return out
}
