package analysis

import (
	"sort"
	"time"

	"github.com/ubiquity-os/dao-analytics/internal/domain"
)

// AnalyzeCommits aggregates commit activity for one pull request. An empty
// commit list yields the all-zero record. now anchors the duration of PRs
// that are still open.
func AnalyzeCommits(pr *domain.PullRequest, commits []domain.Commit, now time.Time) *domain.CommitAnalytics {
	out := &domain.CommitAnalytics{
		CommitsPerContributor: map[string]int{},
		TotalCommitsPerDay:    map[string]int{},
		TotalCommitsPerWeek:   map[string]int{},
		TotalCommitsPerMonth:  map[string]int{},
	}
	if len(commits) == 0 { return out }

	out.TotalCommits = len(commits)
	var timestamps []time.Time
	for _, c := range commits {
		login := c.AuthorLogin
		if login == "" { login = c.AuthorName }
		if login == "" { login = "unknown" }
		out.CommitsPerContributor[login]++

		out.LinesAdded += c.Additions
		out.LinesRemoved += c.Deletions

		if c.AuthoredAt != nil { timestamps = append(timestamps, *c.AuthoredAt) }
	}

	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i].Before(timestamps[j]) })

	if len(timestamps) > 0 {
		first := timestamps[0]
		last := timestamps[len(timestamps)-1]
		out.TimeFromFirstCommitToLastCommit = spanMillis(first, last)
		if pr != nil && pr.ClosedAt != nil {
			out.TimeFromLastCommitToClose = spanMillis(last, *pr.ClosedAt)
		}
	}

	if len(timestamps) > 1 {
		var total int64
		for i := 1; i < len(timestamps); i++ {
			total += spanMillis(timestamps[i-1], timestamps[i])
		}
		out.AverageTimeBetweenCommits = total / int64(len(timestamps)-1)
	}

	for _, ts := range timestamps {
		bump(out.TotalCommitsPerDay, dayKey(ts))
		bump(out.TotalCommitsPerWeek, weekKey(ts))
		bump(out.TotalCommitsPerMonth, monthKey(ts))
	}

	days := 1
	if pr != nil { days = durationDays(pr.CreatedAt, pr.ClosedAt, now) }
	out.AverageCommitsPerDay = float64(out.TotalCommits) / float64(days)
	out.AverageCommitsPerWeek = out.AverageCommitsPerDay * 7
	out.AverageCommitsPerMonth = out.AverageCommitsPerDay * (365.0 / 12.0)

	return out
}
